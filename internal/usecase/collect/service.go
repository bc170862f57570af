// Package collect implements the first pipeline stage: it asks a headline
// source for the day's stories, downloads each story's full text and writes
// it into the episode's articles folder.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"newscast/internal/domain/entity"
	"newscast/internal/episode"
	"newscast/internal/infra/fetcher"
	"newscast/internal/observability/logging"
	"newscast/internal/observability/metrics"
	"newscast/internal/observability/tracing"
)

// DefaultParallelism is the number of article pages downloaded at once.
const DefaultParallelism = 5

// ErrNoArticles is returned when no headline produced an article file.
var ErrNoArticles = errors.New("no articles collected")

// HeadlineSource lists candidate stories.
type HeadlineSource interface {
	Name() string
	Headlines(ctx context.Context, limit int) ([]entity.Headline, error)
}

// ContentFetcher downloads the full text behind a headline URL.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Service collects the articles of an episode.
type Service struct {
	source      HeadlineSource
	fetcher     ContentFetcher
	parallelism int
}

// NewService creates a collect Service. parallelism < 1 uses DefaultParallelism.
func NewService(source HeadlineSource, fetcher ContentFetcher, parallelism int) *Service {
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}
	return &Service{source: source, fetcher: fetcher, parallelism: parallelism}
}

// Stats contains statistics about one collection run.
type Stats struct {
	Headlines int
	Written   int64
	Skipped   int64
	Failed    int64
	Duration  time.Duration
}

// CollectEpisode fetches up to limit headlines and writes articles/article_<i>.txt,
// where i is the 1-based headline position. Headlines whose page has no readable
// text are skipped and leave a gap in the numbering; download failures are logged.
func (s *Service) CollectEpisode(ctx context.Context, layout episode.Layout, limit int) (*Stats, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "collect.episode",
		attribute.Int("episode", layout.Episode),
		attribute.String("source", s.source.Name()))

	headlines, err := s.source.Headlines(ctx, limit)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, fmt.Errorf("fetch headlines from %s: %w", s.source.Name(), err)
	}
	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}

	logger.InfoContext(ctx, "headlines fetched",
		slog.String("source", s.source.Name()),
		slog.Int("count", len(headlines)))

	stats := &Stats{Headlines: len(headlines)}

	var eg errgroup.Group
	eg.SetLimit(s.parallelism)
	for i, h := range headlines {
		index := i + 1
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			result := s.collectOne(ctx, layout, index, h)
			metrics.RecordArticleCollected(result)
			switch result {
			case resultWritten:
				atomic.AddInt64(&stats.Written, 1)
			case resultSkipped:
				atomic.AddInt64(&stats.Skipped, 1)
			default:
				atomic.AddInt64(&stats.Failed, 1)
			}
			return nil
		})
	}
	_ = eg.Wait()
	stats.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		tracing.EndSpan(span, err)
		return stats, fmt.Errorf("collect episode %d: %w", layout.Episode, err)
	}
	if stats.Written == 0 {
		tracing.EndSpan(span, ErrNoArticles)
		return stats, fmt.Errorf("collect episode %d: %w", layout.Episode, ErrNoArticles)
	}
	tracing.EndSpan(span, nil)

	logger.InfoContext(ctx, "episode collection completed",
		slog.Int("episode", layout.Episode),
		slog.Int("headlines", stats.Headlines),
		slog.Int64("written", stats.Written),
		slog.Int64("skipped", stats.Skipped),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

const (
	resultWritten = "written"
	resultSkipped = "skipped"
	resultFailed  = "failed"
)

func (s *Service) collectOne(ctx context.Context, layout episode.Layout, index int, h entity.Headline) string {
	logger := logging.FromContext(ctx).With(slog.Int("index", index), slog.String("url", h.URL))

	if err := entity.ValidateHeadline(h); err != nil {
		logger.WarnContext(ctx, "skipping unusable headline", slog.Any("error", err))
		return resultSkipped
	}
	title := strings.Join(strings.Fields(h.Title), " ")

	body, err := s.fetcher.FetchContent(ctx, h.URL)
	if err != nil {
		if errors.Is(err, fetcher.ErrNoContent) {
			logger.WarnContext(ctx, "content not found, skipping article")
			return resultSkipped
		}
		logger.ErrorContext(ctx, "failed to fetch article content", slog.Any("error", err))
		return resultFailed
	}

	article := entity.Article{Title: title, Body: body, Source: h.Source, URL: h.URL}
	if err := article.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid article, skipping", slog.Any("error", err))
		return resultSkipped
	}
	if err := episode.WriteArticle(layout.ArticlePath(index), article); err != nil {
		logger.ErrorContext(ctx, "failed to write article", slog.Any("error", err))
		return resultFailed
	}

	logger.InfoContext(ctx, "article saved", slog.String("title", title))
	return resultWritten
}
