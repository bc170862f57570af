package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"newscast/internal/domain/entity"
	"newscast/internal/resilience/circuitbreaker"
	"newscast/internal/resilience/ratelimit"
	"newscast/internal/utils/text"
)

const (
	// DefaultHuggingFaceBaseURL is the hosted inference API root.
	DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models"

	// DefaultHuggingFaceModel is the abstractive news summarization model.
	DefaultHuggingFaceModel = "facebook/bart-large-cnn"

	// maxResponseBytes bounds the inference response body.
	maxResponseBytes = 1 << 20
)

// HuggingFaceConfig holds configuration for the Hugging Face inference endpoint.
type HuggingFaceConfig struct {
	// BaseURL is the models root; the model name is appended.
	BaseURL string

	// Model is the model identifier, e.g. facebook/bart-large-cnn.
	Model string

	// APIKey is the bearer token. Empty sends anonymous requests.
	APIKey string

	Limits Limits
}

// DefaultHuggingFaceConfig returns the reference endpoint configuration.
func DefaultHuggingFaceConfig(apiKey string) HuggingFaceConfig {
	return HuggingFaceConfig{
		BaseURL: DefaultHuggingFaceBaseURL,
		Model:   DefaultHuggingFaceModel,
		APIKey:  apiKey,
		Limits:  DefaultLimits(),
	}
}

// Validate checks the configuration.
func (c HuggingFaceConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	return c.Limits.Validate()
}

// URL returns the inference URL of the configured model.
func (c HuggingFaceConfig) URL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.Model, "/")
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// HuggingFace summarizes text with a hosted seq2seq model through the inference API.
// Each call is exactly one HTTP request; retrying is left to the caller.
type HuggingFace struct {
	httpClient      *http.Client
	config          HuggingFaceConfig
	circuitBreaker  *circuitbreaker.CircuitBreaker
	limiter         *ratelimit.Limiter
	metricsRecorder SummaryMetricsRecorder
}

// NewHuggingFace creates a Hugging Face endpoint.
func NewHuggingFace(cfg HuggingFaceConfig) *HuggingFace {
	slog.Info("Initialized Hugging Face summarizer",
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Limits.Timeout))

	return &HuggingFace{
		httpClient:      &http.Client{Timeout: cfg.Limits.Timeout},
		config:          cfg,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.HuggingFaceConfig()),
		limiter:         ratelimit.New(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst),
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize requests one summary of inputText bounded by maxLength and minLength tokens.
// Sampling is disabled so the result is deterministic for the model.
//
// Errors:
//   - wraps entity.ErrTransientUnavailable for 503, 429, "currently loading" and an open breaker
//   - *entity.RequestError for other statuses, transport failures and malformed responses
func (h *HuggingFace) Summarize(ctx context.Context, inputText string, maxLength, minLength int) (string, error) {
	return guard(ctx, h.circuitBreaker, h.limiter, h.metricsRecorder, func() (string, error) {
		return h.doSummarize(ctx, inputText, maxLength, minLength)
	})
}

func (h *HuggingFace) doSummarize(ctx context.Context, inputText string, maxLength, minLength int) (string, error) {
	requestID := uuid.New().String()

	payload, err := json.Marshal(hfRequest{
		Inputs: inputText,
		Parameters: hfParameters{
			MaxLength: maxLength,
			MinLength: minLength,
			DoSample:  false,
		},
	})
	if err != nil {
		return "", &entity.RequestError{Message: "encode payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.URL(), bytes.NewReader(payload))
	if err != nil {
		return "", &entity.RequestError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if h.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
	}

	slog.DebugContext(ctx, "Starting summarization",
		slog.String("request_id", requestID),
		slog.String("model", h.config.Model),
		slog.Int("input_length", text.CountRunes(inputText)),
		slog.Int("max_length", maxLength),
		slog.Int("min_length", minLength))

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	duration := time.Since(start)
	h.metricsRecorder.RecordDuration(duration)

	if err != nil {
		slog.WarnContext(ctx, "Summarization request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", &entity.RequestError{Message: "post inference request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &entity.RequestError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		msg := string(body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		slog.WarnContext(ctx, "Summarization request rejected",
			slog.String("request_id", requestID),
			slog.Int("status", resp.StatusCode),
			slog.Float64("estimated_time", apiErr.EstimatedTime),
			slog.String("message", msg))
		return "", classifyStatus(resp.StatusCode, msg)
	}

	var summaries []hfSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return "", &entity.RequestError{StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	if len(summaries) == 0 {
		return "", &entity.RequestError{StatusCode: resp.StatusCode, Message: "empty response"}
	}

	summary := summaries[0].SummaryText
	summaryLength := text.CountRunes(summary)
	h.metricsRecorder.RecordLength(summaryLength)

	slog.DebugContext(ctx, "Summarization completed",
		slog.String("request_id", requestID),
		slog.Int("summary_length", summaryLength),
		slog.Duration("duration", duration))

	return summary, nil
}
