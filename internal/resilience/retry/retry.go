// Package retry provides a bounded retry state machine with exponential backoff.
// Delays are applied through a Clock so callers (and tests) control how time passes.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrExhausted is wrapped into the error returned by Run when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first one
	MaxAttempts int

	// InitialDelay is the delay before the second attempt
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts (0 means no cap)
	MaxDelay time.Duration

	// Multiplier is the multiplier for exponential backoff
	Multiplier float64

	// JitterFraction is the fraction of delay to add as random jitter (0.0 to 1.0)
	JitterFraction float64
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// SummarizeConfig returns the configuration used around remote summarization calls.
// The delay after attempt n (0-based) is exactly 2^n seconds; no jitter is added so the
// schedule is reproducible.
func SummarizeConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       0,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

// FeedFetchConfig returns configuration optimized for RSS feed fetching.
// Aggressive retry for transient network issues.
func FeedFetchConfig() Config {
	return Config{
		MaxAttempts:    5,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// HeadlineAPIConfig returns configuration for headline search APIs such as NewsAPI.
func HeadlineAPIConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// Validate checks that the configuration can drive a Machine.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial delay must be non-negative, got %v", c.InitialDelay)
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1, got %v", c.Multiplier)
	}
	if c.JitterFraction < 0 || c.JitterFraction > 1 {
		return fmt.Errorf("jitter fraction must be within [0, 1], got %v", c.JitterFraction)
	}
	return nil
}

// Delay returns the backoff applied after the given failed attempt (0-based), before jitter.
func (c Config) Delay(attempt int) time.Duration {
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Clock sleeps on behalf of the retry loop.
type Clock interface {
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns a Clock backed by the runtime timer.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outcome is the result of feeding one attempt into a Machine.
type Outcome int

const (
	// OutcomeSuccess is terminal: the attempt succeeded.
	OutcomeSuccess Outcome = iota
	// OutcomeRetry means another attempt follows after Transition.Delay.
	OutcomeRetry
	// OutcomeGiveUp is terminal: the budget is spent or the error is not retryable.
	OutcomeGiveUp
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetry:
		return "retry"
	case OutcomeGiveUp:
		return "give_up"
	default:
		return "unknown"
	}
}

// Transition describes how a Machine moved after an attempt.
type Transition struct {
	Outcome Outcome
	// Attempt is the 0-based attempt that just completed.
	Attempt int
	// Delay is the wait before the next attempt; zero unless Outcome is OutcomeRetry.
	Delay time.Duration
}

// Machine tracks the Attempting(n) state of a bounded retry loop.
//
//	Attempting(n) -> Success            on nil error
//	Attempting(n) -> Retry(n+1, delay)  on retryable error with budget left
//	Attempting(n) -> GiveUp             otherwise
//
// A Machine is not safe for concurrent use; create one per logical call.
type Machine struct {
	cfg      Config
	attempt  int
	terminal bool
}

// NewMachine returns a machine in state Attempting(0).
func NewMachine(cfg Config) *Machine {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Machine{cfg: cfg}
}

// Attempt returns the current 0-based attempt number.
func (m *Machine) Attempt() int {
	return m.attempt
}

// Done reports whether the machine reached a terminal state.
func (m *Machine) Done() bool {
	return m.terminal
}

// Next records the result of the current attempt and returns the transition taken.
// Calling Next on a terminal machine returns OutcomeGiveUp.
func (m *Machine) Next(err error, retryable bool) Transition {
	current := m.attempt
	if m.terminal {
		return Transition{Outcome: OutcomeGiveUp, Attempt: current}
	}
	if err == nil {
		m.terminal = true
		return Transition{Outcome: OutcomeSuccess, Attempt: current}
	}
	if !retryable || current+1 >= m.cfg.MaxAttempts {
		m.terminal = true
		return Transition{Outcome: OutcomeGiveUp, Attempt: current}
	}
	m.attempt++
	return Transition{
		Outcome: OutcomeRetry,
		Attempt: current,
		Delay:   addJitter(m.cfg.Delay(current), m.cfg.JitterFraction),
	}
}

// Run drives fn through a Machine. fn receives the 0-based attempt number.
// classify decides whether an error is worth another attempt; nil means IsRetryable.
//
// It returns the number of attempts made and:
//   - nil on success
//   - the last error unchanged when it was not retryable
//   - an error wrapping ErrExhausted and the last error when the budget ran out
//   - an error wrapping ctx.Err() when the context ended during a backoff
func Run(ctx context.Context, cfg Config, clock Clock, classify func(error) bool, fn func(attempt int) error) (int, error) {
	if clock == nil {
		clock = RealClock()
	}
	if classify == nil {
		classify = IsRetryable
	}

	m := NewMachine(cfg)
	for {
		attempt := m.Attempt()
		err := fn(attempt)

		retryable := err != nil && classify(err)
		tr := m.Next(err, retryable)

		switch tr.Outcome {
		case OutcomeSuccess:
			if attempt > 0 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt+1))
			}
			return attempt + 1, nil
		case OutcomeGiveUp:
			if !retryable {
				slog.Warn("non-retryable error, aborting",
					slog.Int("attempt", attempt+1),
					slog.Any("error", err))
				return attempt + 1, err
			}
			return attempt + 1, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt+1, err)
		case OutcomeRetry:
			slog.Warn("operation failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", cfg.MaxAttempts),
				slog.Duration("delay", tr.Delay),
				slog.Any("error", err))
			if ctx.Err() != nil {
				return attempt + 1, fmt.Errorf("retry aborted: %w", ctx.Err())
			}
			if sleepErr := clock.Sleep(ctx, tr.Delay); sleepErr != nil {
				return attempt + 1, fmt.Errorf("retry aborted: %w", sleepErr)
			}
		}
	}
}

// IsRetryable determines if an error is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Network errors (timeout)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Syscall errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	// HTTP status codes
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		// 5xx server errors are retryable
		if httpErr.StatusCode >= 500 && httpErr.StatusCode < 600 {
			return true
		}
		// 429 Too Many Requests is retryable
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		// 408 Request Timeout is retryable
		if httpErr.StatusCode == http.StatusRequestTimeout {
			return true
		}
	}

	return false
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// addJitter adds random jitter to a duration to prevent thundering herd.
func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- Using math/rand is acceptable for jitter calculation.
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	return duration + jitter
}
