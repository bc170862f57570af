package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })
	return recorder
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	recorder := setupRecorder(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /health", spans[0].Name())

	status, ok := attrValue(spans[0].Attributes(), "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())

	assert.Equal(t, spans[0].SpanContext().TraceID().String(), rr.Header().Get("X-Trace-Id"))
}

func TestMiddleware_PropagatesTraceContext(t *testing.T) {
	recorder := setupRecorder(t)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	parentCtx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	otel.GetTextMapPropagator().Inject(parentCtx, propagation.HeaderCarrier(req.Header))
	parent.End()

	Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, parent.SpanContext().TraceID(), spans[1].SpanContext().TraceID())
}

func TestMiddleware_MarksErrorSpansFor5xx(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
	}{
		{name: "server error", status: http.StatusServiceUnavailable, wantStatus: codes.Error},
		{name: "client error", status: http.StatusNotFound, wantStatus: codes.Unset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := setupRecorder(t)
			handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)
		})
	}
}

func TestStartSpan_EndSpan(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartSpan(context.Background(), "summarize.chunk", attribute.Int("chunk.index", 2))
	EndSpan(span, errors.New("boom"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "summarize.chunk", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	v, ok := attrValue(spans[0].Attributes(), "chunk.index")
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsInt64())
	require.Len(t, spans[0].Events(), 1)
}
