package summarize

import (
	"context"
	"sync"
	"time"
)

type endpointCall struct {
	Text      string
	MaxLength int
	MinLength int
}

// fakeEndpoint records every attempt and answers through respond.
type fakeEndpoint struct {
	mu      sync.Mutex
	calls   []endpointCall
	respond func(call endpointCall, n int) (string, error)
}

func (f *fakeEndpoint) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	f.mu.Lock()
	call := endpointCall{Text: text, MaxLength: maxLength, MinLength: minLength}
	f.calls = append(f.calls, call)
	n := len(f.calls)
	f.mu.Unlock()

	if f.respond == nil {
		return "summary", nil
	}
	return f.respond(call, n)
}

func (f *fakeEndpoint) Calls() []endpointCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]endpointCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// fakeClock records requested backoff delays without sleeping.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CallTimeout = 5 * time.Second
	return cfg
}
