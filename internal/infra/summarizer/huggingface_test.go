package summarizer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/domain/entity"
)

func newTestHuggingFace(t *testing.T, handler http.HandlerFunc) *HuggingFace {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultHuggingFaceConfig("hf_test_token")
	cfg.BaseURL = server.URL + "/models"
	cfg.Limits.Timeout = 5 * time.Second
	return NewHuggingFace(cfg)
}

func TestHuggingFace_Summarize_Success(t *testing.T) {
	var got hfRequest
	var gotPath, gotAuth string

	hf := newTestHuggingFace(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"summary_text":"Bitcoin climbed to a record."}]`))
	})

	summary, err := hf.Summarize(context.Background(), "Long article text", 166, 30)

	require.NoError(t, err)
	assert.Equal(t, "Bitcoin climbed to a record.", summary)
	assert.Equal(t, "/models/facebook/bart-large-cnn", gotPath)
	assert.Equal(t, "Bearer hf_test_token", gotAuth)
	assert.Equal(t, "Long article text", got.Inputs)
	assert.Equal(t, 166, got.Parameters.MaxLength)
	assert.Equal(t, 30, got.Parameters.MinLength)
	assert.False(t, got.Parameters.DoSample)
}

func TestHuggingFace_Summarize_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
		wantStatus    int
	}{
		{
			name:          "503 model loading",
			status:        http.StatusServiceUnavailable,
			body:          `{"error":"Model facebook/bart-large-cnn is currently loading","estimated_time":20.0}`,
			wantTransient: true,
		},
		{
			name:          "429 rate limited",
			status:        http.StatusTooManyRequests,
			body:          `{"error":"Rate limit reached"}`,
			wantTransient: true,
		},
		{
			name:       "400 bad request",
			status:     http.StatusBadRequest,
			body:       `{"error":"bad inputs"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "500 internal error",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "malformed success body",
			status:     http.StatusOK,
			body:       `{"summary_text":"not an array"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty success array",
			status:     http.StatusOK,
			body:       `[]`,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hf := newTestHuggingFace(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			summary, err := hf.Summarize(context.Background(), "text", 100, 30)

			require.Error(t, err)
			assert.Empty(t, summary)
			if tt.wantTransient {
				assert.ErrorIs(t, err, entity.ErrTransientUnavailable)
				return
			}
			var reqErr *entity.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.wantStatus, reqErr.StatusCode)
			assert.False(t, entity.IsTransient(err))
		})
	}
}

func TestHuggingFace_Summarize_TransportError(t *testing.T) {
	cfg := DefaultHuggingFaceConfig("")
	cfg.BaseURL = "http://127.0.0.1:1/models"
	cfg.Limits.Timeout = time.Second
	hf := NewHuggingFace(cfg)

	_, err := hf.Summarize(context.Background(), "text", 100, 30)

	var reqErr *entity.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.StatusCode)
}

func TestHuggingFace_Summarize_AnonymousRequest(t *testing.T) {
	var sawAuth atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth.Store(r.Header.Get("Authorization") != "")
		_, _ = w.Write([]byte(`[{"summary_text":"ok"}]`))
	}))
	defer server.Close()

	cfg := DefaultHuggingFaceConfig("")
	cfg.BaseURL = server.URL
	_, err := NewHuggingFace(cfg).Summarize(context.Background(), "text", 10, 1)

	require.NoError(t, err)
	assert.False(t, sawAuth.Load())
}

func TestHuggingFace_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	hf := newTestHuggingFace(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 10; i++ {
		_, _ = hf.Summarize(context.Background(), "text", 10, 1)
	}
	require.Equal(t, int32(10), calls.Load())

	_, err := hf.Summarize(context.Background(), "text", 10, 1)

	assert.ErrorIs(t, err, entity.ErrTransientUnavailable)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(10), calls.Load())
}

func TestHuggingFaceConfig(t *testing.T) {
	cfg := DefaultHuggingFaceConfig("")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://api-inference.huggingface.co/models/facebook/bart-large-cnn", cfg.URL())

	cfg.Model = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultHuggingFaceConfig("")
	cfg.Limits.Timeout = 0
	assert.Error(t, cfg.Validate())
}
