package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"newscast/internal/domain/entity"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/ratelimit"
	"newscast/internal/utils/text"
)

// ClaudeConfig holds configuration parameters for the Claude endpoint.
type ClaudeConfig struct {
	APIKey string

	// BaseURL overrides the API root (tests, proxies). Empty uses the public API.
	BaseURL string

	// Model is the Claude API model identifier.
	Model string

	// MaxInputChars truncates oversized inputs before they reach the API.
	MaxInputChars int

	Limits Limits
}

// DefaultClaudeConfig returns the Claude configuration used when none is given.
func DefaultClaudeConfig(apiKey string) ClaudeConfig {
	return ClaudeConfig{
		APIKey:        apiKey,
		Model:         string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxInputChars: 10000,
		Limits:        DefaultLimits(),
	}
}

// Validate checks the configuration.
func (c ClaudeConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("anthropic api key cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxInputChars <= 0 {
		return fmt.Errorf("max input chars must be positive, got %d", c.MaxInputChars)
	}
	return c.Limits.Validate()
}

// Claude implements the summarization endpoint with Anthropic's Messages API.
type Claude struct {
	client          anthropic.Client
	config          ClaudeConfig
	circuitBreaker  *circuitbreaker.CircuitBreaker
	limiter         *ratelimit.Limiter
	metricsRecorder SummaryMetricsRecorder
}

// NewClaude creates a new Claude endpoint. SDK level retries are disabled
// because the summarize client owns the retry policy.
func NewClaude(cfg ClaudeConfig) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("Initialized Claude summarizer", slog.String("model", cfg.Model))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		config:          cfg,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		limiter:         ratelimit.New(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst),
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize requests one English summary of inputText.
func (c *Claude) Summarize(ctx context.Context, inputText string, maxLength, minLength int) (string, error) {
	return guard(ctx, c.circuitBreaker, c.limiter, c.metricsRecorder, func() (string, error) {
		return c.doSummarize(ctx, inputText, maxLength, minLength)
	})
}

func (c *Claude) doSummarize(ctx context.Context, inputText string, maxLength, minLength int) (string, error) {
	requestID := uuid.New().String()
	ctx, cancel := context.WithTimeout(ctx, c.config.Limits.Timeout)
	defer cancel()

	truncated := text.TruncateRunes(inputText, c.config.MaxInputChars)
	if len(truncated) < len(inputText) {
		slog.WarnContext(ctx, "text truncated for claude api",
			slog.String("request_id", requestID),
			slog.Int("original_length", text.CountRunes(inputText)),
			slog.Int("truncated_length", c.config.MaxInputChars))
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(maxLength * 2),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(truncated, maxLength, minLength)),
			),
		},
	})
	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(duration)

	if err != nil {
		slog.WarnContext(ctx, "Summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.StatusCode, apiErr.Error())
		}
		return "", &entity.RequestError{Message: "claude api error", Err: err}
	}

	if len(message.Content) == 0 {
		return "", &entity.RequestError{StatusCode: 200, Message: "claude api returned empty response"}
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", &entity.RequestError{StatusCode: 200, Message: "claude api returned unexpected response type"}
	}

	summary := textBlock.Text
	c.metricsRecorder.RecordLength(text.CountRunes(summary))

	slog.DebugContext(ctx, "Summarization completed",
		slog.String("request_id", requestID),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}
