package summarize

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newArticleSummarizer(endpoint Endpoint, cfg Config) *ArticleSummarizer {
	return NewArticleSummarizer(NewClient(endpoint, cfg, WithClock(&fakeClock{})), cfg)
}

func TestSummarizeArticle_EmptyBody(t *testing.T) {
	endpoint := &fakeEndpoint{}
	a := newArticleSummarizer(endpoint, testConfig())

	assert.Equal(t, "", a.SummarizeArticle(context.Background(), ""))
	assert.Empty(t, endpoint.Calls())
}

func TestSummarizeArticle_WhitespaceBodyIsSent(t *testing.T) {
	endpoint := &fakeEndpoint{respond: func(endpointCall, int) (string, error) {
		return "nothing to report", nil
	}}
	a := newArticleSummarizer(endpoint, testConfig())

	got := a.SummarizeArticle(context.Background(), "   ")

	assert.Equal(t, "nothing to report", got)
	require.Len(t, endpoint.Calls(), 1)
	assert.Equal(t, endpointCall{Text: "   ", MaxLength: 500, MinLength: 30}, endpoint.Calls()[0])
}

func TestSummarizeArticle_ShortBodySingleCall(t *testing.T) {
	endpoint := &fakeEndpoint{respond: func(endpointCall, int) (string, error) {
		return "the summary", nil
	}}
	a := newArticleSummarizer(endpoint, testConfig())
	body := strings.Repeat("s", 1000)

	got := a.SummarizeArticle(context.Background(), body)

	assert.Equal(t, "the summary", got)
	require.Len(t, endpoint.Calls(), 1)
	assert.Equal(t, endpointCall{Text: body, MaxLength: 500, MinLength: 30}, endpoint.Calls()[0])
}

func TestSummarizeArticle_ChunksWithoutCombine(t *testing.T) {
	endpoint := &fakeEndpoint{respond: func(call endpointCall, _ int) (string, error) {
		return "S" + call.Text[:1], nil
	}}
	a := newArticleSummarizer(endpoint, testConfig())
	body := strings.Repeat("a", 1000) + strings.Repeat("b", 1000) + strings.Repeat("c", 200)

	got := a.SummarizeArticle(context.Background(), body)

	assert.Equal(t, "Sa Sb Sc", got)
	calls := endpoint.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, 166, c.MaxLength)
		assert.Equal(t, 30, c.MinLength)
	}
	assert.Equal(t, []int{1000, 1000, 200}, []int{len(calls[0].Text), len(calls[1].Text), len(calls[2].Text)})
}

func TestSummarizeArticle_ChunksWithCombine(t *testing.T) {
	endpoint := &fakeEndpoint{respond: func(call endpointCall, n int) (string, error) {
		if call.MaxLength == 500 {
			return "final", nil
		}
		return strings.Repeat("x", 200), nil
	}}
	a := newArticleSummarizer(endpoint, testConfig())
	body := strings.Repeat("w", 2200)

	got := a.SummarizeArticle(context.Background(), body)

	assert.Equal(t, "final", got)
	calls := endpoint.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, 500, calls[3].MaxLength)
	assert.Equal(t, 30, calls[3].MinLength)
	assert.Equal(t, 602, len(calls[3].Text))
}

func TestSummarizeArticle_PerChunkTargetBelowMinimumIsNotCorrected(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSummaryLength = 50
	cfg.MaxChunkLength = 100
	endpoint := &fakeEndpoint{respond: func(endpointCall, int) (string, error) {
		return "s", nil
	}}
	a := newArticleSummarizer(endpoint, cfg)

	a.SummarizeArticle(context.Background(), strings.Repeat("q", 300))

	calls := endpoint.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, 16, c.MaxLength)
		assert.Equal(t, 30, c.MinLength)
	}
}

func TestSummarizeArticle_FailedChunkPassesThrough(t *testing.T) {
	endpoint := &fakeEndpoint{respond: func(call endpointCall, _ int) (string, error) {
		if strings.HasPrefix(call.Text, "b") {
			return "", transientErr()
		}
		return "ok", nil
	}}
	cfg := testConfig()
	cfg.MaxChunkLength = 3
	cfg.MaxSummaryLength = 100
	a := newArticleSummarizer(endpoint, cfg)

	got := a.SummarizeArticle(context.Background(), "aaabbbccc")

	assert.Equal(t, "ok bbb ok", got)
	assert.Len(t, endpoint.Calls(), 5)
}

func TestSummarizeArticle_ParallelChunksKeepOrder(t *testing.T) {
	cfg := testConfig()
	cfg.MaxChunkLength = 2
	cfg.MaxSummaryLength = 1000
	cfg.ChunkParallelism = 4
	endpoint := &fakeEndpoint{respond: func(call endpointCall, _ int) (string, error) {
		return strings.ToUpper(call.Text), nil
	}}
	a := newArticleSummarizer(endpoint, cfg)

	got := a.SummarizeArticle(context.Background(), "abcdefghijklmnop")

	assert.Equal(t, "AB CD EF GH IJ KL MN OP", got)
	assert.Len(t, endpoint.Calls(), 8)
}

func TestSummarizeArticle_SentenceMode(t *testing.T) {
	cfg := testConfig()
	cfg.MaxChunkLength = 12
	cfg.ChunkMode = ChunkModeSentence
	endpoint := &fakeEndpoint{respond: func(call endpointCall, _ int) (string, error) {
		return fmt.Sprintf("[%s]", strings.TrimSpace(call.Text)), nil
	}}
	a := newArticleSummarizer(endpoint, cfg)

	got := a.SummarizeArticle(context.Background(), "One. Two. Three. Four.")

	assert.Equal(t, "[One. Two.] [Three. Four.]", got)
}

func TestSummarizeArticle_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })

	endpoint := &fakeEndpoint{respond: func(endpointCall, int) (string, error) {
		return strings.Repeat("y", 300), nil
	}}
	a := newArticleSummarizer(endpoint, testConfig())

	a.SummarizeArticle(context.Background(), strings.Repeat("v", 2500))

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	want := []string{"summarize.chunk", "summarize.chunk", "summarize.chunk", "summarize.chunks", "summarize.combine"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("span names mismatch (-want +got):\n%s", diff)
	}
}
