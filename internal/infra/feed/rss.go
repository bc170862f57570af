// Package feed provides headline sources backed by RSS/Atom feeds and news
// homepages. Both wrap their requests in retry and circuit breaker logic.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"newscast/internal/domain/entity"
	"newscast/internal/observability/metrics"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/retry"
)

// userAgent identifies feed requests.
const userAgent = "NewscastBot/1.0"

// Option customizes a headline source.
type Option func(*options)

type options struct {
	retryConfig retry.Config
	clock       retry.Clock
}

// WithRetryConfig replaces the default retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(o *options) { o.retryConfig = cfg }
}

// WithClock sets the clock used between retries.
func WithClock(clock retry.Clock) Option {
	return func(o *options) { o.clock = clock }
}

func buildOptions(opts []Option) options {
	o := options{
		retryConfig: retry.FeedFetchConfig(),
		clock:       retry.RealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RSS reads headlines from a single RSS or Atom feed.
type RSS struct {
	feedURL        string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	opts           options
}

// NewRSS creates an RSS source for feedURL. A nil client uses a 30s timeout client.
func NewRSS(feedURL string, client *http.Client, opts ...Option) *RSS {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RSS{
		feedURL:        feedURL,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		opts:           buildOptions(opts),
	}
}

// Name implements the headline source contract.
func (f *RSS) Name() string {
	return "rss"
}

// Headlines returns up to limit feed entries in feed order. limit <= 0 means all.
func (f *RSS) Headlines(ctx context.Context, limit int) ([]entity.Headline, error) {
	var headlines []entity.Headline

	_, err := retry.Run(ctx, f.opts.retryConfig, f.opts.clock, isRetryableFeedError, func(int) error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", f.feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		headlines = result.([]entity.Headline)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.feedURL, err)
	}

	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	metrics.RecordHeadlinesFetched(f.Name(), len(headlines))
	return headlines, nil
}

func (f *RSS) doFetch(ctx context.Context) ([]entity.Headline, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	parsed, err := fp.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
		}
		return nil, err
	}

	source := strings.TrimSpace(parsed.Title)
	headlines := make([]entity.Headline, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if strings.TrimSpace(it.Title) == "" || it.Link == "" {
			continue
		}
		pubAt := time.Now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			pubAt = *it.UpdatedParsed
		}

		headlines = append(headlines, entity.Headline{
			Title:       strings.TrimSpace(it.Title),
			Description: strings.TrimSpace(it.Description),
			Source:      source,
			URL:         it.Link,
			PublishedAt: pubAt,
		})
	}
	return headlines, nil
}

// isRetryableFeedError extends retry.IsRetryable with a breaker that is not
// yet open (too many half-open probes), which clears on its own.
func isRetryableFeedError(err error) bool {
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	return retry.IsRetryable(err)
}
