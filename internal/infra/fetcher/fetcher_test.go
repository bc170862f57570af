package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/infra/fetcher"
)

func testConfig() fetcher.Config {
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false
	return cfg
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchContent_ArticleParagraphs(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body>
<nav><p>Home | Markets</p></nav>
<article>
  <header><p>Breaking</p></header>
  <p>  Bitcoin rose 5% on Monday. </p>
  <script>track()</script>
  <p>Analysts expect volatility.</p>
  <p>   </p>
  <footer><p>Copyright</p></footer>
</article>
</body></html>`))
	}))
	defer server.Close()

	content, err := fetcher.New(testConfig()).FetchContent(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Bitcoin rose 5% on Monday.\n\nAnalysts expect volatility.", content)
	assert.Equal(t, fetcher.DefaultUserAgent, gotAgent)
}

func TestFetchContent_ReadabilityFallback(t *testing.T) {
	paragraph := "The central bank held interest rates steady on Thursday, citing persistent inflation " +
		"and a labour market that remains tight despite months of restrictive policy. "
	server := serveHTML(t, `<html><head><title>Rates</title></head><body>
<div id="story"><p>`+strings.Repeat(paragraph, 8)+`</p><p>`+strings.Repeat(paragraph, 8)+`</p></div>
</body></html>`)

	content, err := fetcher.New(testConfig()).FetchContent(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, content, "The central bank held interest rates steady")
}

func TestFetchContent_NoContent(t *testing.T) {
	server := serveHTML(t, `<html><body></body></html>`)

	_, err := fetcher.New(testConfig()).FetchContent(context.Background(), server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcher.ErrNoContent) || errors.Is(err, fetcher.ErrReadabilityFailed),
		"unexpected error: %v", err)
}

func TestFetchContent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		mutate  func(*fetcher.Config)
		wantErr error
		wantMsg string
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			wantMsg: "HTTP 404",
		},
		{
			name: "body too large",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<article><p>" + strings.Repeat("x", 4096) + "</p></article>"))
			},
			mutate:  func(c *fetcher.Config) { c.MaxBodySize = 1024 },
			wantErr: fetcher.ErrBodyTooLarge,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(500 * time.Millisecond):
				case <-r.Context().Done():
				}
			},
			mutate:  func(c *fetcher.Config) { c.Timeout = 50 * time.Millisecond },
			wantErr: fetcher.ErrTimeout,
		},
		{
			name: "too many redirects",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/next"+r.URL.Path, http.StatusFound)
			},
			mutate:  func(c *fetcher.Config) { c.MaxRedirects = 1 },
			wantErr: fetcher.ErrTooManyRedirects,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			cfg := testConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			_, err := fetcher.New(cfg).FetchContent(context.Background(), server.URL)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestFetchContent_RejectsUnsafeURLs(t *testing.T) {
	f := fetcher.New(fetcher.DefaultConfig())

	_, err := f.FetchContent(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, fetcher.ErrInvalidURL)

	_, err = f.FetchContent(context.Background(), "http://127.0.0.1:8080/admin")
	assert.ErrorIs(t, err, fetcher.ErrPrivateIP)

	_, err = f.FetchContent(context.Background(), "http://169.254.169.254/latest/meta-data")
	assert.ErrorIs(t, err, fetcher.ErrPrivateIP)
}

func TestFetchContent_ContextCanceled(t *testing.T) {
	server := serveHTML(t, `<article><p>never read</p></article>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.New(testConfig()).FetchContent(ctx, server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
