package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"newscast/internal/observability/logging"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/retry"
)

const (
	maxAttempts      = 2
	baseDelay        = 5 * time.Second
	defaultRetryWait = 5 * time.Second
)

// RateLimitError represents a 429 from a webhook.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a non-429 4xx from a webhook.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError represents a 5xx from a webhook.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// isRetryableError reports whether another delivery attempt may succeed.
// Client errors are final; everything else, including network errors, is retried.
func isRetryableError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// truncate shortens text to maxLength bytes including suffix.
func truncate(text string, maxLength int, suffix string) string {
	if len(text) <= maxLength {
		return text
	}
	cut := maxLength - len(suffix)
	if cut < 0 {
		cut = 0
	}
	return text[:cut] + suffix
}

// retryAfter reads retry_after (seconds) from a JSON body, then the Retry-After header.
func retryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryWait
}

// webhook posts JSON payloads to one URL behind a rate limiter and a circuit breaker.
type webhook struct {
	name           string
	url            string
	httpClient     *http.Client
	rateLimiter    *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	clock          retry.Clock
}

func newWebhook(name, url string, timeout time.Duration, rps float64, burst int) *webhook {
	cb := circuitbreaker.DefaultConfig(name + "-webhook")
	cb.IsSuccessful = func(err error) bool {
		var clientErr *ClientError
		return err == nil || errors.As(err, &clientErr)
	}
	return &webhook{
		name:           name,
		url:            url,
		httpClient:     &http.Client{Timeout: timeout},
		rateLimiter:    NewRateLimiter(rps, burst),
		circuitBreaker: circuitbreaker.New(cb),
		clock:          retry.RealClock(),
	}
}

func (w *webhook) post(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Message: w.name + " rate limit exceeded", RetryAfter: retryAfter(resp, body)}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s webhook client error %d: %s", w.name, resp.StatusCode, body)}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s webhook server error %d: %s", w.name, resp.StatusCode, body)}
	default:
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}
}

// deliver sends payload with up to maxAttempts tries.
// A 429 waits for the advertised retry-after; other retryable errors back off linearly.
func (w *webhook) deliver(ctx context.Context, episode int, payload any) error {
	requestID := uuid.New().String()
	logger := logging.FromContext(ctx).With(
		slog.String("notifier", w.name),
		slog.String("request_id", requestID),
		slog.Int("episode", episode))

	if err := w.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		_, err := w.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, w.post(ctx, payload)
		})
		if err == nil {
			logger.InfoContext(ctx, "episode announcement sent", slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		if !isRetryableError(err) || attempt == maxAttempts {
			break
		}

		delay := baseDelay * time.Duration(attempt)
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			delay = rateLimitErr.RetryAfter
		}
		logger.WarnContext(ctx, "episode announcement failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err))
		if err := w.clock.Sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s notification aborted: %w", w.name, err)
		}
	}

	logger.ErrorContext(ctx, "episode announcement failed", slog.Any("error", lastErr))
	return fmt.Errorf("%s notification failed: %w", w.name, lastErr)
}
