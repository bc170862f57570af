package summarize

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newscast/internal/domain/entity"
	"newscast/internal/observability/logging"
	"newscast/internal/observability/metrics"
	"newscast/internal/observability/tracing"
	"newscast/internal/resilience/retry"
	"newscast/internal/utils/text"
)

// Endpoint performs one remote summarization attempt.
// Implementations report failures with the entity error taxonomy.
type Endpoint interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// Call kinds used in logs, spans and metrics.
const (
	kindSingle  = "single"
	kindChunk   = "chunk"
	kindCombine = "combine"
)

// Client wraps an Endpoint with a bounded retry state machine and a passthrough
// fallback. It holds no state between calls and is safe for concurrent use.
type Client struct {
	endpoint         Endpoint
	backoff          retry.Config
	retryRequestErrs bool
	callTimeout      time.Duration
	fallbackMaxChars int
	clock            retry.Clock
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithClock replaces the clock used for backoff delays.
func WithClock(clock retry.Clock) ClientOption {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewClient builds a Client from the retry, timeout and fallback settings of cfg.
func NewClient(endpoint Endpoint, cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:         endpoint,
		backoff:          cfg.Retry.backoff(),
		retryRequestErrs: cfg.Retry.RetryRequestErrors,
		callTimeout:      cfg.CallTimeout,
		fallbackMaxChars: cfg.FallbackMaxChars,
		clock:            retry.RealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summarize returns a summary of input, or the fallback passthrough when every
// attempt failed. It never returns an error; a give-up is only visible in logs
// and in the newscast_summarize_fallback_total counter.
func (c *Client) Summarize(ctx context.Context, input string, maxLength, minLength int) string {
	out, _ := c.call(ctx, kindSingle, input, maxLength, minLength)
	return out
}

// call runs the state machine and reports whether the fallback was taken.
func (c *Client) call(ctx context.Context, kind, input string, maxLength, minLength int) (string, bool) {
	ctx, span := tracing.StartSpan(ctx, "summarize."+kind,
		attribute.Int("input.length", text.CountRunes(input)),
		attribute.Int("max_length", maxLength),
		attribute.Int("min_length", minLength))

	var result string
	attempts, err := retry.Run(ctx, c.backoff, c.clock, c.retryable(ctx), func(int) error {
		attemptCtx := ctx
		if c.callTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
			defer cancel()
		}
		s, err := c.endpoint.Summarize(attemptCtx, input, maxLength, minLength)
		if err != nil {
			return err
		}
		result = s
		return nil
	})

	span.SetAttributes(attribute.Int("attempts", attempts), attribute.Bool("fallback", err != nil))
	metrics.RecordSummarizeCall(kind, attempts, err != nil)

	if err == nil {
		tracing.EndSpan(span, nil)
		return result, false
	}

	reason := fallbackReason(ctx, err)
	logging.FromContext(ctx).WarnContext(ctx, "summarize call gave up, passing input through",
		slog.String("kind", kind),
		slog.String("reason", reason),
		slog.Int("attempts", attempts),
		slog.Any("error", err))
	metrics.RecordSummarizeFallback(reason)
	tracing.EndSpan(span, err)

	return text.TruncateRunes(input, c.fallbackMaxChars), true
}

// retryable classifies one failed attempt. Cancellation of the caller's context is
// never retried; a per-attempt timeout is.
func (c *Client) retryable(ctx context.Context) func(error) bool {
	return func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		switch {
		case entity.IsTransient(err):
			return true
		case errors.Is(err, context.DeadlineExceeded):
			return true
		case errors.Is(err, context.Canceled):
			return false
		default:
			return c.retryRequestErrs
		}
	}
}

func fallbackReason(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return "canceled"
	case errors.Is(err, ErrExhaustedRetries):
		return "exhausted"
	default:
		return "request_error"
	}
}
