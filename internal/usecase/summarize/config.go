package summarize

import (
	"errors"
	"fmt"
	"time"

	"newscast/internal/resilience/retry"
)

// ChunkMode selects how an article body is split.
type ChunkMode string

const (
	// ChunkModeFixed cuts the body every MaxChunkLength characters.
	ChunkModeFixed ChunkMode = "fixed"

	// ChunkModeSentence packs whole ". "-delimited sentences up to MaxChunkLength.
	ChunkModeSentence ChunkMode = "sentence"
)

// ParseChunkMode validates a chunk mode name. Empty selects fixed mode.
func ParseChunkMode(s string) (ChunkMode, error) {
	switch m := ChunkMode(s); m {
	case "":
		return ChunkModeFixed, nil
	case ChunkModeFixed, ChunkModeSentence:
		return m, nil
	default:
		return "", fmt.Errorf("unknown chunk mode %q (want fixed or sentence)", s)
	}
}

// RetryConfig is the attempt policy of the Client.
type RetryConfig struct {
	// MaxAttempts is the total number of remote attempts per call.
	MaxAttempts int

	// InitialDelay is the wait after the first failed attempt.
	InitialDelay time.Duration

	// Multiplier grows the delay after every further failure.
	Multiplier float64

	// RetryRequestErrors retries non-transient request errors within the attempt
	// budget. When false the client gives up on the first RequestError.
	RetryRequestErrors bool
}

func (r RetryConfig) backoff() retry.Config {
	cfg := retry.SummarizeConfig()
	cfg.MaxAttempts = r.MaxAttempts
	cfg.InitialDelay = r.InitialDelay
	cfg.Multiplier = r.Multiplier
	return cfg
}

// Config holds every tunable of the summarization protocol.
type Config struct {
	// MaxChunkLength is the chunk size in characters; bodies up to this size are
	// summarized with a single call.
	MaxChunkLength int

	// MaxSummaryLength is the target length passed to the model for a whole article.
	MaxSummaryLength int

	// MinLength is the minimum length passed with chunk and single calls.
	MinLength int

	// CombineMinLength is the minimum length passed with the combine call.
	CombineMinLength int

	ChunkMode ChunkMode

	// ChunkParallelism bounds concurrent chunk calls within one article.
	ChunkParallelism int

	// ArticleParallelism bounds concurrently summarized articles within an episode.
	ArticleParallelism int

	// FallbackMaxChars truncates the passthrough returned on give-up; 0 keeps the full text.
	FallbackMaxChars int

	// CallTimeout bounds one remote attempt.
	CallTimeout time.Duration

	Retry RetryConfig
}

// DefaultConfig returns the reference protocol parameters.
func DefaultConfig() Config {
	return Config{
		MaxChunkLength:     1000,
		MaxSummaryLength:   500,
		MinLength:          30,
		CombineMinLength:   30,
		ChunkMode:          ChunkModeFixed,
		ChunkParallelism:   1,
		ArticleParallelism: 3,
		FallbackMaxChars:   0,
		CallTimeout:        60 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:        3,
			InitialDelay:       1 * time.Second,
			Multiplier:         2.0,
			RetryRequestErrors: true,
		},
	}
}

// Validate aggregates every invalid field into one error.
func (c Config) Validate() error {
	var errs []error
	if c.MaxChunkLength < 1 {
		errs = append(errs, fmt.Errorf("max chunk length must be positive, got %d", c.MaxChunkLength))
	}
	if c.MaxSummaryLength < 1 {
		errs = append(errs, fmt.Errorf("max summary length must be positive, got %d", c.MaxSummaryLength))
	}
	if c.MinLength < 0 {
		errs = append(errs, fmt.Errorf("min length must be non-negative, got %d", c.MinLength))
	}
	if c.CombineMinLength < 0 {
		errs = append(errs, fmt.Errorf("combine min length must be non-negative, got %d", c.CombineMinLength))
	}
	if _, err := ParseChunkMode(string(c.ChunkMode)); err != nil {
		errs = append(errs, err)
	}
	if c.ChunkParallelism < 1 {
		errs = append(errs, fmt.Errorf("chunk parallelism must be at least 1, got %d", c.ChunkParallelism))
	}
	if c.ArticleParallelism < 1 {
		errs = append(errs, fmt.Errorf("article parallelism must be at least 1, got %d", c.ArticleParallelism))
	}
	if c.FallbackMaxChars < 0 {
		errs = append(errs, fmt.Errorf("fallback max chars must be non-negative, got %d", c.FallbackMaxChars))
	}
	if c.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("call timeout must be positive, got %v", c.CallTimeout))
	}
	if err := c.Retry.backoff().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry: %w", err))
	}
	return errors.Join(errs...)
}
