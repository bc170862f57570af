package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"newscast/internal/observability/logging"
	"newscast/internal/utils/text"
)

// storyMarker separates stories in the podcast script.
const storyMarker = "Our next story is titled:"

const (
	titleMaxLength       = 15
	titleMinLength       = 5
	descriptionMaxLength = 300
	descriptionMinLength = 30

	// maxTitleRunes and maxDescriptionRunes are YouTube's limits.
	maxTitleRunes       = 100
	maxDescriptionRunes = 5000

	fallbackDescriptionRunes = 1000
)

// Summarizer condenses text; the summarization endpoints satisfy it.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// Metadata is the title and description of an uploaded episode.
type Metadata struct {
	Title       string
	Description string
	// Generated is false when the defaults were used.
	Generated bool
}

// DefaultMetadata is used when summarization is unavailable.
func DefaultMetadata(channel string, episode int, script string) Metadata {
	return Metadata{
		Title:       fmt.Sprintf("%s Episode %d: AI-Generated News Summary", channel, episode),
		Description: text.TruncateRunes(script, fallbackDescriptionRunes) + "...",
	}
}

// GenerateMetadata titles the episode after a summary of its first story and
// describes it with a summary of all stories. If the description cannot be
// produced the defaults are returned; a missing title summary only drops the
// suffix from the title.
func GenerateMetadata(ctx context.Context, s Summarizer, channel string, episode int, script string) Metadata {
	logger := logging.FromContext(ctx)

	intro, stories := splitStories(script)
	first := intro
	if len(stories) > 0 {
		first = stories[0]
	}

	title := fmt.Sprintf("%s Episode %d", channel, episode)
	titleSummary, err := s.Summarize(ctx, first, titleMaxLength, titleMinLength)
	if err != nil || strings.TrimSpace(titleSummary) == "" {
		logger.WarnContext(ctx, "failed to summarize title", slog.Any("error", err))
	} else {
		title = fmt.Sprintf("%s: %s", title, strings.TrimSpace(titleSummary))
	}

	all := strings.Join(append([]string{intro}, stories...), " ")
	description, err := s.Summarize(ctx, all, descriptionMaxLength, descriptionMinLength)
	if err != nil || strings.TrimSpace(description) == "" {
		logger.WarnContext(ctx, "failed to generate AI title and description, using defaults", slog.Any("error", err))
		return DefaultMetadata(channel, episode, script)
	}

	return Metadata{
		Title:       text.Ellipsize(strings.TrimSpace(title), maxTitleRunes-3),
		Description: text.Ellipsize(strings.TrimSpace(description), maxDescriptionRunes-3),
		Generated:   true,
	}
}

// splitStories separates the introduction from the story sections.
func splitStories(script string) (string, []string) {
	parts := strings.Split(script, storyMarker)
	intro := strings.TrimSpace(parts[0])
	var stories []string
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			stories = append(stories, p)
		}
	}
	return intro, stories
}
