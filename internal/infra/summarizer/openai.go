package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"newscast/internal/domain/entity"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/ratelimit"
	"newscast/internal/utils/text"
)

// OpenAIConfig holds configuration parameters for the OpenAI endpoint.
type OpenAIConfig struct {
	APIKey string

	// BaseURL overrides the API root (tests, proxies). Empty uses the public API.
	BaseURL string

	// Model is the chat completion model identifier.
	Model string

	// MaxInputChars truncates oversized inputs before they reach the API.
	MaxInputChars int

	Limits Limits
}

// DefaultOpenAIConfig returns the OpenAI configuration used when none is given.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:        apiKey,
		Model:         openai.GPT4oMini,
		MaxInputChars: 10000,
		Limits:        DefaultLimits(),
	}
}

// Validate checks the configuration.
func (c OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("openai api key cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxInputChars <= 0 {
		return fmt.Errorf("max input chars must be positive, got %d", c.MaxInputChars)
	}
	return c.Limits.Validate()
}

// OpenAI implements the summarization endpoint with OpenAI chat completions.
type OpenAI struct {
	client          *openai.Client
	config          OpenAIConfig
	circuitBreaker  *circuitbreaker.CircuitBreaker
	limiter         *ratelimit.Limiter
	metricsRecorder SummaryMetricsRecorder
}

// NewOpenAI creates a new OpenAI endpoint.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized OpenAI summarizer", slog.String("model", cfg.Model))

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientConfig),
		config:          cfg,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		limiter:         ratelimit.New(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst),
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize requests one English summary of inputText.
// maxLength and minLength are passed to the model as word bounds.
func (o *OpenAI) Summarize(ctx context.Context, inputText string, maxLength, minLength int) (string, error) {
	return guard(ctx, o.circuitBreaker, o.limiter, o.metricsRecorder, func() (string, error) {
		return o.doSummarize(ctx, inputText, maxLength, minLength)
	})
}

// buildPrompt constructs the summarization instruction.
func buildPrompt(inputText string, maxLength, minLength int) string {
	return fmt.Sprintf("Summarize the following news text in English in %d to %d words. "+
		"Reply with the summary only.\n\n%s", minLength, maxLength, inputText)
}

func (o *OpenAI) doSummarize(ctx context.Context, inputText string, maxLength, minLength int) (string, error) {
	requestID := uuid.New().String()
	ctx, cancel := context.WithTimeout(ctx, o.config.Limits.Timeout)
	defer cancel()

	truncated := text.TruncateRunes(inputText, o.config.MaxInputChars)
	if len(truncated) < len(inputText) {
		slog.WarnContext(ctx, "text truncated for openai api",
			slog.String("request_id", requestID),
			slog.Int("original_length", text.CountRunes(inputText)),
			slog.Int("truncated_length", o.config.MaxInputChars))
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		MaxTokens:   maxLength * 2,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(truncated, maxLength, minLength),
		}},
	})
	duration := time.Since(start)
	o.metricsRecorder.RecordDuration(duration)

	if err != nil {
		slog.WarnContext(ctx, "Summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &entity.RequestError{StatusCode: 200, Message: "openai api returned empty response"}
	}

	summary := resp.Choices[0].Message.Content
	o.metricsRecorder.RecordLength(text.CountRunes(summary))

	slog.DebugContext(ctx, "Summarization completed",
		slog.String("request_id", requestID),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return &entity.RequestError{Message: "openai api error", Err: err}
}
