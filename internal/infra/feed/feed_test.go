package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/infra/feed"
	"newscast/internal/resilience/retry"
)

type instantClock struct {
	sleeps []time.Duration
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

func fastRetry(clock *instantClock) []feed.Option {
	cfg := retry.FeedFetchConfig()
	cfg.JitterFraction = 0
	return []feed.Option{feed.WithRetryConfig(cfg), feed.WithClock(clock)}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Crypto Wire</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>Description 1</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>  </title>
      <link>https://example.com/untitled</link>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Description 2</description>
      <pubDate>Tue, 02 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Article 3</title>
      <link>https://example.com/article3</link>
    </item>
  </channel>
</rss>`

func TestRSS_Headlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer server.Close()

	src := feed.NewRSS(server.URL, nil)
	headlines, err := src.Headlines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, headlines, 3)
	assert.Equal(t, "Article 1", headlines[0].Title)
	assert.Equal(t, "https://example.com/article1", headlines[0].URL)
	assert.Equal(t, "Description 1", headlines[0].Description)
	assert.Equal(t, "Crypto Wire", headlines[0].Source)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), headlines[0].PublishedAt.UTC())
	assert.Equal(t, "Article 2", headlines[1].Title)
	assert.Equal(t, "rss", src.Name())
}

func TestRSS_Headlines_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssBody))
	}))
	defer server.Close()

	headlines, err := feed.NewRSS(server.URL, nil).Headlines(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, headlines, 2)
	assert.Equal(t, "Article 2", headlines[1].Title)
}

func TestRSS_Headlines_Atom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Wire</title>
  <entry>
    <title>Atom Story</title>
    <link href="https://example.com/atom1"/>
    <updated>2024-03-01T10:00:00Z</updated>
    <summary>Atom summary</summary>
  </entry>
</feed>`))
	}))
	defer server.Close()

	headlines, err := feed.NewRSS(server.URL, nil).Headlines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, headlines, 1)
	assert.Equal(t, "Atom Story", headlines[0].Title)
	assert.Equal(t, "https://example.com/atom1", headlines[0].URL)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), headlines[0].PublishedAt.UTC())
}

func TestRSS_Headlines_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(rssBody))
	}))
	defer server.Close()

	clock := &instantClock{}
	headlines, err := feed.NewRSS(server.URL, nil, fastRetry(clock)...).Headlines(context.Background(), 0)

	require.NoError(t, err)
	assert.Len(t, headlines, 3)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.sleeps)
}

func TestRSS_Headlines_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	clock := &instantClock{}
	_, err := feed.NewRSS(server.URL, nil, fastRetry(clock)...).Headlines(context.Background(), 0)

	require.Error(t, err)
	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, clock.sleeps)
}

func TestRSS_Headlines_InvalidXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	_, err := feed.NewRSS(server.URL, nil, fastRetry(&instantClock{})...).Headlines(context.Background(), 0)
	assert.Error(t, err)
}

func TestRSS_Headlines_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssBody))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := feed.NewRSS(server.URL, nil, fastRetry(&instantClock{})...).Headlines(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
