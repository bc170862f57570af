package summarize

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"newscast/internal/observability/logging"
	"newscast/internal/observability/metrics"
	"newscast/internal/observability/tracing"
	"newscast/internal/utils/text"
)

// ArticleSummarizer produces the final summary of one article body.
type ArticleSummarizer struct {
	client   *Client
	chunker  Chunker
	combiner *Combiner
	cfg      Config
}

// NewArticleSummarizer wires a chunker and a combiner around client.
func NewArticleSummarizer(client *Client, cfg Config) *ArticleSummarizer {
	return &ArticleSummarizer{
		client:   client,
		chunker:  NewChunker(cfg.MaxChunkLength, cfg.ChunkMode),
		combiner: NewCombiner(client, cfg.CombineMinLength),
		cfg:      cfg,
	}
}

// SummarizeArticle returns the final summary of body.
//
//   - an empty body yields "" without any remote call
//   - a body of at most MaxChunkLength characters is summarized with one call
//     targeting MaxSummaryLength
//   - a longer body is chunked; every chunk targets MaxSummaryLength/len(chunks)
//     and the chunk summaries are combined
func (a *ArticleSummarizer) SummarizeArticle(ctx context.Context, body string) string {
	if body == "" {
		return ""
	}

	logger := logging.FromContext(ctx)
	bodyLen := text.CountRunes(body)
	if bodyLen <= a.cfg.MaxChunkLength {
		metrics.RecordChunks(1)
		out, _ := a.client.call(ctx, kindSingle, body, a.cfg.MaxSummaryLength, a.cfg.MinLength)
		return out
	}

	chunks := a.chunker.Chunk(body)
	metrics.RecordChunks(len(chunks))

	perChunk := a.cfg.MaxSummaryLength / len(chunks)
	if perChunk < a.cfg.MinLength {
		logger.WarnContext(ctx, "per-chunk summary target below minimum length",
			slog.Int("per_chunk_max_length", perChunk),
			slog.Int("min_length", a.cfg.MinLength),
			slog.Int("chunks", len(chunks)))
	}

	ctx, span := tracing.StartSpan(ctx, "summarize.chunks",
		attribute.Int("body.length", bodyLen),
		attribute.Int("chunks", len(chunks)),
		attribute.Int("per_chunk_max_length", perChunk))
	summaries := a.summarizeChunks(ctx, chunks, perChunk)
	tracing.EndSpan(span, nil)

	logger.DebugContext(ctx, "chunks summarized",
		slog.Int("chunks", len(chunks)),
		slog.Int("per_chunk_max_length", perChunk))

	return a.combiner.Combine(ctx, summaries, a.cfg.MaxSummaryLength)
}

// summarizeChunks keeps results in chunk order regardless of completion order.
func (a *ArticleSummarizer) summarizeChunks(ctx context.Context, chunks []string, maxLength int) []string {
	summaries := make([]string, len(chunks))

	if a.cfg.ChunkParallelism <= 1 {
		for i, chunk := range chunks {
			summaries[i], _ = a.client.call(ctx, kindChunk, chunk, maxLength, a.cfg.MinLength)
		}
		return summaries
	}

	var eg errgroup.Group
	eg.SetLimit(a.cfg.ChunkParallelism)
	for i, chunk := range chunks {
		eg.Go(func() error {
			summaries[i], _ = a.client.call(ctx, kindChunk, chunk, maxLength, a.cfg.MinLength)
			return nil
		})
	}
	_ = eg.Wait()
	return summaries
}
