// Package resilience groups the fault tolerance building blocks used around every remote
// capability the pipeline depends on (summarization models, news APIs, article pages).
//
// Subpackages:
//   - retry: bounded Attempting(n) state machine with exponential backoff and a pluggable Clock
//   - circuitbreaker: gobreaker wrapper with one preset per remote capability
//   - ratelimit: token bucket limiter placed in front of paid or quota-bound APIs
//
// Usage Example:
//
//	attempts, err := retry.Run(ctx, retry.SummarizeConfig(), retry.RealClock(), classify, func(n int) error {
//	    _, err := cb.Execute(func() (interface{}, error) { return endpoint.Call(ctx) })
//	    return err
//	})
package resilience
