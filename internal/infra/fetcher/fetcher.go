package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"newscast/internal/observability/metrics"
	"newscast/internal/resilience/circuitbreaker"
)

// Fetcher downloads article pages and extracts their text.
//
// Extraction first looks for an article, main or div.content container and
// joins its paragraphs; pages without one go through go-readability.
// Fetcher is safe for concurrent use.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// New creates a Fetcher. Every redirect target is checked against the same
// URL rules as the original request.
func New(config Config) *Fetcher {
	cbConfig := circuitbreaker.ContentFetchConfig()
	cbConfig.IsSuccessful = isHealthyOutcome

	f := &Fetcher{
		circuitBreaker: circuitbreaker.New(cbConfig),
		config:         config,
	}

	f.client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return f
}

// FetchContent downloads urlStr and returns the extracted article text.
// It returns ErrNoContent when the page holds no readable text.
func (f *Fetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	start := time.Now()
	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return "", err
	}

	text := result.(string)
	metrics.RecordContentFetchSuccess(time.Since(start), len(text))
	return text, nil
}

func (f *Fetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, context.Canceled) {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			ErrBodyTooLarge, len(htmlBytes), f.config.MaxBodySize)
	}

	text, err := extractParagraphs(bytes.NewReader(htmlBytes))
	if err != nil {
		slog.Debug("selector extraction failed",
			slog.String("url", urlStr),
			slog.Any("error", err))
	}
	if text != "" {
		return text, nil
	}

	pageURL, _ := url.Parse(urlStr)
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}
	text, err = extractReadable(htmlBytes, pageURL)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoContent
	}

	slog.Debug("used readability extraction",
		slog.String("url", urlStr),
		slog.Int("content_length", len(text)))
	return text, nil
}

// isHealthyOutcome keeps page-level problems from opening the breaker; only
// transport and server failures count.
func isHealthyOutcome(err error) bool {
	return err == nil ||
		errors.Is(err, ErrNoContent) ||
		errors.Is(err, ErrReadabilityFailed) ||
		errors.Is(err, ErrBodyTooLarge)
}
