// Package script implements the third pipeline stage: it stitches the episode
// summaries into the podcast script read by the narrator.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"newscast/internal/episode"
	"newscast/internal/observability/logging"
)

// Introduction returns the opening lines of episode n.
func Introduction(n int) string {
	return fmt.Sprintf("Welcome to podcast number %d of our AI-generated news summary.\n"+
		"Let's dive into the summaries of our top stories.", n)
}

// Conclusion is the closing of every episode.
const Conclusion = "That concludes our AI-generated news summary for today.\n" +
	"Thanks for listening, and stay tuned for our next episode."

// Stats reports how many summaries made it into the script.
type Stats struct {
	Stories int
	Skipped int
}

// Build reads summaries/summary_1.txt through summary_<limit>.txt and returns the
// script text. With limit <= 0 every summary file present is used. Unreadable or
// missing summaries are skipped with a warning.
func Build(ctx context.Context, layout episode.Layout, limit int) (string, Stats, error) {
	logger := logging.FromContext(ctx)

	numbers, err := summaryNumbers(layout, limit)
	if err != nil {
		return "", Stats{}, err
	}

	var stats Stats
	var b strings.Builder
	b.WriteString(Introduction(layout.Episode))
	b.WriteString("\n\n")

	for _, i := range numbers {
		s, err := episode.ReadSummary(layout.SummaryPath(i))
		if err != nil {
			stats.Skipped++
			logger.WarnContext(ctx, "error processing summary",
				slog.Int("index", i),
				slog.Any("error", err))
			continue
		}
		fmt.Fprintf(&b, "Our next story is titled: %s\n%s\n\n", s.Title, s.Text)
		stats.Stories++
	}

	b.WriteString(Conclusion)
	return b.String(), stats, nil
}

// Write builds the script and writes it to scripts/podcast_script.txt.
func Write(ctx context.Context, layout episode.Layout, limit int) (Stats, error) {
	text, stats, err := Build(ctx, layout, limit)
	if err != nil {
		return stats, err
	}
	if err := episode.WriteScript(layout.ScriptPath(), text); err != nil {
		return stats, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "created podcast script",
		slog.Int("episode", layout.Episode),
		slog.Int("stories", stats.Stories),
		slog.Int("skipped", stats.Skipped))
	return stats, nil
}

func summaryNumbers(layout episode.Layout, limit int) ([]int, error) {
	if limit > 0 {
		numbers := make([]int, limit)
		for i := range numbers {
			numbers[i] = i + 1
		}
		return numbers, nil
	}

	files, err := layout.ListSummaries()
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	numbers := make([]int, len(files))
	for i, f := range files {
		numbers[i] = f.Number
	}
	return numbers, nil
}
