package summarizer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/domain/entity"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "", want: TypeHuggingFace},
		{in: "huggingface", want: TypeHuggingFace},
		{in: " OpenAI ", want: TypeOpenAI},
		{in: "claude", want: TypeClaude},
		{in: "noop", want: TypeNoOp},
		{in: "gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	assert.ErrorIs(t, classifyStatus(http.StatusServiceUnavailable, "busy"), entity.ErrTransientUnavailable)
	assert.ErrorIs(t, classifyStatus(http.StatusInternalServerError, "Model is currently loading"), entity.ErrTransientUnavailable)

	err := classifyStatus(http.StatusUnauthorized, "invalid token")
	var reqErr *entity.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "invalid token", reqErr.Message)
}

func TestNoOp_Summarize(t *testing.T) {
	n := NewNoOp()

	got, err := n.Summarize(context.Background(), "one two  three\nfour five", 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "one two three", got)

	got, err = n.Summarize(context.Background(), "short text", 10, 1)
	require.NoError(t, err)
	assert.Equal(t, "short text", got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = n.Summarize(ctx, "text", 3, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAI_Summarize(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Short summary."},"finish_reason":"stop"}]}`))
		}))
		defer server.Close()

		cfg := DefaultOpenAIConfig("sk-test")
		cfg.BaseURL = server.URL + "/v1"
		got, err := NewOpenAI(cfg).Summarize(context.Background(), "article", 100, 30)

		require.NoError(t, err)
		assert.Equal(t, "Short summary.", got)
	})

	t.Run("503 is transient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
		}))
		defer server.Close()

		cfg := DefaultOpenAIConfig("sk-test")
		cfg.BaseURL = server.URL + "/v1"
		_, err := NewOpenAI(cfg).Summarize(context.Background(), "article", 100, 30)

		assert.ErrorIs(t, err, entity.ErrTransientUnavailable)
	})

	t.Run("401 is a request error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		}))
		defer server.Close()

		cfg := DefaultOpenAIConfig("sk-test")
		cfg.BaseURL = server.URL + "/v1"
		_, err := NewOpenAI(cfg).Summarize(context.Background(), "article", 100, 30)

		var reqErr *entity.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	})
}

func TestOpenAIConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultOpenAIConfig("sk").Validate())
	assert.Error(t, DefaultOpenAIConfig("").Validate())
}

func TestClaudeConfig_Validate(t *testing.T) {
	cfg := DefaultClaudeConfig("key")
	assert.NoError(t, cfg.Validate())

	cfg.MaxInputChars = 0
	assert.Error(t, cfg.Validate())
	assert.Error(t, DefaultClaudeConfig("").Validate())
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("Body text", 120, 30)
	assert.Contains(t, p, "30 to 120 words")
	assert.Contains(t, p, "Body text")
}

func TestPrometheusSummaryMetrics(t *testing.T) {
	m := NewPrometheusSummaryMetrics()
	assert.Same(t, m, NewPrometheusSummaryMetrics())

	before := testutil.ToFloat64(m.requestsCounter.WithLabelValues("test-endpoint", "success"))
	m.RecordRequest("test-endpoint", "success")
	m.RecordLength(120)
	m.RecordDuration(time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(m.requestsCounter.WithLabelValues("test-endpoint", "success")))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "transient", resultLabel(entity.ErrTransientUnavailable))
	assert.Equal(t, "request_error", resultLabel(&entity.RequestError{StatusCode: 400}))
	assert.Equal(t, "error", resultLabel(errors.New("x")))
}
