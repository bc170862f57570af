// Package summarize implements the chunked summarization protocol: bodies are split
// into chunks, each chunk is summarized through a retrying Client that never fails,
// and the chunk summaries are combined into one final summary per article.
package summarize

import (
	"newscast/internal/domain/entity"
	"newscast/internal/resilience/retry"
)

// Error taxonomy of a remote summarization attempt.
var (
	// ErrTransientUnavailable marks a temporary unavailability (HTTP 503, model loading).
	ErrTransientUnavailable = entity.ErrTransientUnavailable

	// ErrExhaustedRetries is the terminal state reached when every attempt failed.
	ErrExhaustedRetries = retry.ErrExhausted
)

// RequestError is a non-transient failure of a single attempt.
type RequestError = entity.RequestError
