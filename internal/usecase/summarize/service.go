package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"newscast/internal/domain/entity"
	"newscast/internal/episode"
	"newscast/internal/observability/logging"
	"newscast/internal/observability/metrics"
	"newscast/internal/observability/tracing"
)

// Service summarizes every collected article of an episode.
type Service struct {
	articles    *ArticleSummarizer
	parallelism int
}

// NewService creates the episode summarization service.
func NewService(endpoint Endpoint, cfg Config, opts ...ClientOption) *Service {
	parallelism := cfg.ArticleParallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &Service{
		articles:    NewArticleSummarizer(NewClient(endpoint, cfg, opts...), cfg),
		parallelism: parallelism,
	}
}

// Stats contains statistics about one episode summarization.
type Stats struct {
	Articles   int
	Summarized int64
	Failed     int64
	Duration   time.Duration
}

// SummarizeEpisode reads articles/article_<n>.txt in numeric order, keeps at most
// limit of them (0 keeps all) and writes summaries/summary_<i>.txt, where i is the
// 1-based position in that order.
//
// Failures to read, parse or write a single article are logged and counted; only a
// missing articles folder or a canceled context is returned as an error.
func (s *Service) SummarizeEpisode(ctx context.Context, layout episode.Layout, limit int) (*Stats, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	files, err := layout.ListArticles()
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if err := os.MkdirAll(layout.SummariesDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create summaries folder: %w", err)
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	stats := &Stats{Articles: len(files)}
	ctx, span := tracing.StartSpan(ctx, "summarize.episode",
		attribute.Int("episode", layout.Episode),
		attribute.Int("articles", len(files)))

	var eg errgroup.Group
	eg.SetLimit(s.parallelism)
	for i, f := range files {
		index := i + 1
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := s.summarizeFile(ctx, f.Path, layout.SummaryPath(index), index); err != nil {
				atomic.AddInt64(&stats.Failed, 1)
				logger.WarnContext(ctx, "failed to summarize article",
					slog.Int("index", index),
					slog.String("path", f.Path),
					slog.Any("error", err))
				return nil
			}
			atomic.AddInt64(&stats.Summarized, 1)
			return nil
		})
	}
	_ = eg.Wait()

	stats.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		tracing.EndSpan(span, err)
		return stats, fmt.Errorf("summarize episode %d: %w", layout.Episode, err)
	}
	tracing.EndSpan(span, nil)

	logger.InfoContext(ctx, "episode summarization completed",
		slog.Int("episode", layout.Episode),
		slog.Int("articles", stats.Articles),
		slog.Int64("summarized", stats.Summarized),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

func (s *Service) summarizeFile(ctx context.Context, in, out string, index int) error {
	start := time.Now()

	article, err := episode.ReadArticle(in)
	if err != nil {
		metrics.RecordArticleSummarized(false, time.Since(start))
		return err
	}

	ctx, span := tracing.StartSpan(ctx, "summarize.article", attribute.Int("article.index", index))
	summary := s.articles.SummarizeArticle(ctx, article.Body)
	tracing.EndSpan(span, nil)

	if err := episode.WriteSummary(out, entity.Summary{Title: article.Title, Text: summary}); err != nil {
		metrics.RecordArticleSummarized(false, time.Since(start))
		return err
	}

	metrics.RecordArticleSummarized(true, time.Since(start))
	logging.FromContext(ctx).InfoContext(ctx, "article summarized",
		slog.Int("index", index),
		slog.String("title", article.Title),
		slog.Duration("duration", time.Since(start)))
	return nil
}
