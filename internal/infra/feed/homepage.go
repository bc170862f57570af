package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"newscast/internal/domain/entity"
	"newscast/internal/observability/metrics"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/retry"
)

const maxBodySize = 10 * 1024 * 1024

// ErrNoHeadlines is returned when the item selector matched nothing usable.
var ErrNoHeadlines = errors.New("no headlines found")

// HomepageConfig describes where headlines live on a news front page.
type HomepageConfig struct {
	// URL is the page listing the headlines.
	URL string

	// ItemSelector matches one element per story.
	ItemSelector string

	// TitleSelector is evaluated inside each item; empty means the item text.
	TitleSelector string

	// LinkSelector is evaluated inside each item; empty means the item itself.
	LinkSelector string

	// DescriptionSelector is optional.
	DescriptionSelector string

	// AllowPrivateHosts disables the SSRF check on URL.
	AllowPrivateHosts bool
}

// DefaultHomepageConfig matches the common "h2 headline with a link" layout.
func DefaultHomepageConfig(pageURL string) HomepageConfig {
	return HomepageConfig{
		URL:          pageURL,
		ItemSelector: "h2",
		LinkSelector: "a",
	}
}

// Homepage scrapes headlines from a news front page with CSS selectors.
type Homepage struct {
	config         HomepageConfig
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	opts           options
}

// NewHomepage creates a homepage source. A nil client uses a 30s timeout client.
func NewHomepage(config HomepageConfig, client *http.Client, opts ...Option) *Homepage {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Homepage{
		config:         config,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DefaultConfig("homepage-scrape")),
		opts:           buildOptions(opts),
	}
}

// Name implements the headline source contract.
func (h *Homepage) Name() string {
	return "homepage"
}

// Headlines returns up to limit headlines in page order. limit <= 0 means all.
func (h *Homepage) Headlines(ctx context.Context, limit int) ([]entity.Headline, error) {
	if !h.config.AllowPrivateHosts {
		if err := entity.ValidateURL(h.config.URL); err != nil {
			return nil, fmt.Errorf("URL validation failed: %w", err)
		}
	}

	var headlines []entity.Headline
	_, err := retry.Run(ctx, h.opts.retryConfig, h.opts.clock, isRetryableFeedError, func(int) error {
		result, err := h.circuitBreaker.Execute(func() (interface{}, error) {
			return h.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("homepage circuit breaker open, request rejected",
					slog.String("service", "homepage-scrape"),
					slog.String("url", h.config.URL),
					slog.String("state", h.circuitBreaker.State().String()))
			}
			return err
		}
		headlines = result.([]entity.Headline)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", h.config.URL, err)
	}

	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	metrics.RecordHeadlinesFetched(h.Name(), len(headlines))
	return headlines, nil
}

func (h *Homepage) doFetch(ctx context.Context) ([]entity.Headline, error) {
	doc, base, err := h.fetchHTML(ctx)
	if err != nil {
		return nil, err
	}

	headlines := h.extractHeadlines(doc, base)
	if len(headlines) == 0 {
		return nil, fmt.Errorf("%w with selector %q", ErrNoHeadlines, h.config.ItemSelector)
	}
	return headlines, nil
}

func (h *Homepage) fetchHTML(ctx context.Context) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.config.URL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, resp.Request.URL, nil
}

func (h *Homepage) extractHeadlines(doc *goquery.Document, base *url.URL) []entity.Headline {
	var headlines []entity.Headline
	seen := make(map[string]bool)
	source := base.Hostname()

	doc.Find(h.config.ItemSelector).Each(func(i int, item *goquery.Selection) {
		titleEl := item
		if h.config.TitleSelector != "" {
			titleEl = item.Find(h.config.TitleSelector).First()
		}
		title := strings.Join(strings.Fields(titleEl.Text()), " ")
		if title == "" {
			slog.Debug("skipping item with empty title", slog.Int("index", i))
			return
		}

		linkEl := item
		if h.config.LinkSelector != "" {
			linkEl = item.Find(h.config.LinkSelector).First()
		}
		href, ok := linkEl.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			slog.Debug("skipping item with empty URL", slog.Int("index", i), slog.String("title", title))
			return
		}
		link, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			slog.Debug("skipping item with invalid URL", slog.Int("index", i), slog.String("href", href))
			return
		}
		if seen[link.String()] {
			return
		}
		seen[link.String()] = true

		var description string
		if h.config.DescriptionSelector != "" {
			description = strings.TrimSpace(item.Find(h.config.DescriptionSelector).First().Text())
		}

		headlines = append(headlines, entity.Headline{
			Title:       title,
			Description: description,
			Source:      source,
			URL:         link.String(),
			PublishedAt: time.Now(),
		})
	})
	return headlines
}
