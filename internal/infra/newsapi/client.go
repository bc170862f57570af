// Package newsapi is a headline source backed by the NewsAPI /v2/everything search.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"newscast/internal/domain/entity"
	"newscast/internal/observability/metrics"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/retry"
)

const (
	// DefaultBaseURL is the public NewsAPI endpoint.
	DefaultBaseURL = "https://newsapi.org"

	// DefaultQuery is searched when Config.Query is empty.
	DefaultQuery = "bitcoin"

	// maxPageSize is the largest page NewsAPI serves.
	maxPageSize = 100

	dateLayout = "2006-01-02"
)

// ErrMissingAPIKey is returned by Validate when no key is configured.
var ErrMissingAPIKey = errors.New("newsapi: API key is required")

// APIError is a {"status":"error"} response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("newsapi %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// Config holds the NewsAPI search parameters.
type Config struct {
	APIKey   string
	BaseURL  string
	Query    string
	Language string
	SortBy   string
	Timeout  time.Duration
}

// DefaultConfig returns an English relevancy search for DefaultQuery.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:   apiKey,
		BaseURL:  DefaultBaseURL,
		Query:    DefaultQuery,
		Language: "en",
		SortBy:   "relevancy",
		Timeout:  30 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("newsapi: invalid base URL: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("newsapi: timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// Client searches NewsAPI for the day's headlines.
type Client struct {
	config         Config
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	clock          retry.Clock
	now            func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithRetry replaces the retry policy and the clock used between attempts.
func WithRetry(cfg retry.Config, clock retry.Clock) Option {
	return func(cl *Client) {
		cl.retryConfig = cfg
		cl.clock = clock
	}
}

// WithNow fixes the time used to compute the search window.
func WithNow(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

// New creates a NewsAPI client.
func New(config Config, opts ...Option) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Query == "" {
		config.Query = DefaultQuery
	}
	c := &Client{
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsAPIConfig()),
		retryConfig:    retry.HeadlineAPIConfig(),
		clock:          retry.RealClock(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements the headline source contract.
func (c *Client) Name() string {
	return "newsapi"
}

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Headlines returns up to limit headlines published between yesterday and today,
// in the order NewsAPI ranks them. Entries without a title or URL, and removed
// entries, are dropped.
func (c *Client) Headlines(ctx context.Context, limit int) ([]entity.Headline, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	endpoint, err := c.searchURL(limit)
	if err != nil {
		return nil, err
	}

	slog.Info("fetching headlines from NewsAPI",
		slog.String("query", c.config.Query),
		slog.Int("page_size", limit))

	var headlines []entity.Headline
	_, err = retry.Run(ctx, c.retryConfig, c.clock, nil, func(int) error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doSearch(ctx, endpoint)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("newsapi circuit breaker open, request rejected",
					slog.String("service", "newsapi"),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}
		headlines = result.([]entity.Headline)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("newsapi search: %w", err)
	}

	if len(headlines) > limit {
		headlines = headlines[:limit]
	}
	metrics.RecordHeadlinesFetched(c.Name(), len(headlines))
	return headlines, nil
}

func (c *Client) searchURL(pageSize int) (string, error) {
	base, err := url.Parse(strings.TrimRight(c.config.BaseURL, "/") + "/v2/everything")
	if err != nil {
		return "", fmt.Errorf("newsapi: invalid base URL: %w", err)
	}

	today := c.now()
	yesterday := today.AddDate(0, 0, -1)

	q := url.Values{}
	q.Set("q", c.config.Query)
	if c.config.Language != "" {
		q.Set("language", c.config.Language)
	}
	if c.config.SortBy != "" {
		q.Set("sortBy", c.config.SortBy)
	}
	q.Set("from", yesterday.Format(dateLayout))
	q.Set("to", today.Format(dateLayout))
	q.Set("pageSize", strconv.Itoa(pageSize))
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (c *Client) doSearch(ctx context.Context, endpoint string) ([]entity.Headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload everythingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: payload.Code, Message: payload.Message}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %w", apiErr, &retry.HTTPError{StatusCode: resp.StatusCode, Message: payload.Message})
		}
		return nil, apiErr
	}

	headlines := make([]entity.Headline, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || a.URL == "" || title == "[Removed]" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			publishedAt = c.now()
		}
		headlines = append(headlines, entity.Headline{
			Title:       title,
			Description: strings.TrimSpace(a.Description),
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: publishedAt,
		})
	}
	return headlines, nil
}
