package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"newscast/internal/domain/entity"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/ratelimit"
)

// Type selects a summarization endpoint implementation.
type Type string

const (
	TypeHuggingFace Type = "huggingface"
	TypeOpenAI      Type = "openai"
	TypeClaude      Type = "claude"
	TypeNoOp        Type = "noop"
)

// ParseType validates a SUMMARIZER_TYPE value. Empty selects Hugging Face.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeHuggingFace, nil
	case TypeHuggingFace, TypeOpenAI, TypeClaude, TypeNoOp:
		return t, nil
	default:
		return "", fmt.Errorf("unknown summarizer type %q (want huggingface, openai, claude or noop)", s)
	}
}

// Limits holds the per-endpoint request shaping shared by all remote endpoints.
type Limits struct {
	// Timeout bounds one remote request.
	Timeout time.Duration

	// RateLimitRPS is the sustained request rate; 0 disables limiting.
	RateLimitRPS float64

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		Timeout:        60 * time.Second,
		RateLimitRPS:   0,
		RateLimitBurst: 1,
	}
}

// Validate checks the limits.
func (l Limits) Validate() error {
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", l.Timeout)
	}
	if l.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must be non-negative, got %v", l.RateLimitRPS)
	}
	return nil
}

// classifyStatus maps a non-success HTTP status of a summarization API to the
// domain error taxonomy.
func classifyStatus(status int, body string) error {
	msg := strings.TrimSpace(body)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	switch {
	case status == http.StatusServiceUnavailable,
		status == http.StatusTooManyRequests,
		strings.Contains(strings.ToLower(body), "currently loading"):
		return fmt.Errorf("HTTP %d: %s: %w", status, msg, entity.ErrTransientUnavailable)
	default:
		return &entity.RequestError{StatusCode: status, Message: msg}
	}
}

// guard runs one request through the rate limiter and the circuit breaker.
// An open breaker is reported as a transient unavailability.
func guard(ctx context.Context, cb *circuitbreaker.CircuitBreaker, limiter *ratelimit.Limiter,
	metrics SummaryMetricsRecorder, fn func() (string, error)) (string, error) {
	if err := limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.WarnContext(ctx, "summarizer circuit breaker open, request rejected",
				slog.String("service", cb.Name()),
				slog.String("state", cb.State().String()))
			metrics.RecordRequest(cb.Name(), "breaker_open")
			return "", fmt.Errorf("%s: circuit breaker open: %w", cb.Name(), entity.ErrTransientUnavailable)
		}
		metrics.RecordRequest(cb.Name(), resultLabel(err))
		return "", err
	}

	metrics.RecordRequest(cb.Name(), "success")
	return result.(string), nil
}

func resultLabel(err error) string {
	switch {
	case entity.IsTransient(err):
		return "transient"
	case entity.IsRequestError(err):
		return "request_error"
	default:
		return "error"
	}
}
