// Package ratelimit provides a token bucket limiter for outbound API calls.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter implements token bucket algorithm for rate limiting.
// It keeps the pipeline within the request quotas of hosted model APIs.
type Limiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// New creates a Limiter with the specified rate and burst capacity.
// A non-positive requestsPerSecond disables limiting.
//
// Example:
//
//	limiter := ratelimit.New(2.0, 5)  // 2 req/s with burst of 5
func New(requestsPerSecond float64, burst int) *Limiter {
	r := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		r = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		rate:    r,
		burst:   burst,
		limiter: rate.NewLimiter(r, burst),
	}
}

// Wait blocks until a token is available or the context is canceled.
// A nil Limiter never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Limit returns the configured sustained rate.
func (l *Limiter) Limit() rate.Limit {
	return l.rate
}

// Burst returns the configured burst size.
func (l *Limiter) Burst() int {
	return l.burst
}
