package summarize

import (
	"context"
	"log/slog"
	"strings"

	"newscast/internal/observability/logging"
	"newscast/internal/utils/text"
)

// Combiner merges chunk summaries into one final summary.
type Combiner struct {
	client    *Client
	minLength int
}

// NewCombiner returns a Combiner issuing its optional pass with minLength.
func NewCombiner(client *Client, minLength int) *Combiner {
	return &Combiner{client: client, minLength: minLength}
}

// Combine joins summaries with a single space. When the join is longer than
// maxSummaryLength characters it is summarized once more and that result is
// returned as is, even if it still exceeds the target.
func (c *Combiner) Combine(ctx context.Context, summaries []string, maxSummaryLength int) string {
	joined := strings.Join(summaries, " ")
	joinedLen := text.CountRunes(joined)
	if joinedLen <= maxSummaryLength {
		return joined
	}

	logging.FromContext(ctx).DebugContext(ctx, "combined summary too long, summarizing again",
		slog.Int("combined_length", joinedLen),
		slog.Int("max_summary_length", maxSummaryLength))

	out, _ := c.client.call(ctx, kindCombine, joined, maxSummaryLength, c.minLength)
	return out
}
