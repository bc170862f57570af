package collect

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/domain/entity"
	"newscast/internal/episode"
	"newscast/internal/infra/fetcher"
)

type fakeSource struct {
	headlines []entity.Headline
	err       error
	gotLimit  int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Headlines(_ context.Context, limit int) ([]entity.Headline, error) {
	f.gotLimit = limit
	return f.headlines, f.err
}

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	fetched []string
}

func (f *fakeFetcher) FetchContent(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	return f.pages[url], nil
}

func headline(title, url string) entity.Headline {
	return entity.Headline{Title: title, URL: url, Source: "Wire"}
}

func TestService_CollectEpisode(t *testing.T) {
	layout := episode.NewLayout(t.TempDir(), 7)
	require.NoError(t, layout.Create())

	src := &fakeSource{headlines: []entity.Headline{
		headline("First story", "https://a.example/1"),
		headline("No content", "https://a.example/2"),
		headline("Broken\nsite", "https://a.example/3"),
		headline("Fourth  story", "https://a.example/4"),
	}}
	f := &fakeFetcher{
		pages: map[string]string{
			"https://a.example/1": "Body one.",
			"https://a.example/4": "Body four.",
		},
		errs: map[string]error{
			"https://a.example/2": fetcher.ErrNoContent,
			"https://a.example/3": errors.New("HTTP 500"),
		},
	}

	stats, err := NewService(src, f, 2).CollectEpisode(context.Background(), layout, 4)

	require.NoError(t, err)
	assert.Equal(t, 4, src.gotLimit)
	assert.Equal(t, 4, stats.Headlines)
	assert.Equal(t, int64(2), stats.Written)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Len(t, f.fetched, 4)

	files, err := layout.ListArticles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 1, files[0].Number)
	assert.Equal(t, 4, files[1].Number)

	a, err := episode.ReadArticle(layout.ArticlePath(4))
	require.NoError(t, err)
	assert.Equal(t, entity.Article{
		Title:  "Fourth story",
		Body:   "Body four.",
		Source: "Wire",
		URL:    "https://a.example/4",
	}, a)
}

func TestService_CollectEpisode_TrimsToLimit(t *testing.T) {
	layout := episode.NewLayout(t.TempDir(), 1)
	require.NoError(t, layout.Create())

	src := &fakeSource{headlines: []entity.Headline{
		headline("One", "https://a.example/1"),
		headline("Two", "https://a.example/2"),
		headline("Three", "https://a.example/3"),
	}}
	f := &fakeFetcher{pages: map[string]string{
		"https://a.example/1": "x",
		"https://a.example/2": "y",
		"https://a.example/3": "z",
	}}

	stats, err := NewService(src, f, 0).CollectEpisode(context.Background(), layout, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Headlines)
	assert.Equal(t, int64(2), stats.Written)
}

func TestService_CollectEpisode_HeadlineError(t *testing.T) {
	layout := episode.NewLayout(t.TempDir(), 1)
	require.NoError(t, layout.Create())

	boom := errors.New("quota exceeded")
	_, err := NewService(&fakeSource{err: boom}, &fakeFetcher{}, 1).CollectEpisode(context.Background(), layout, 3)

	assert.ErrorIs(t, err, boom)
}

func TestService_CollectEpisode_NothingWritten(t *testing.T) {
	layout := episode.NewLayout(t.TempDir(), 1)
	require.NoError(t, layout.Create())

	src := &fakeSource{headlines: []entity.Headline{headline("Empty", "https://a.example/1")}}
	f := &fakeFetcher{pages: map[string]string{"https://a.example/1": "   "}}

	stats, err := NewService(src, f, 1).CollectEpisode(context.Background(), layout, 1)

	assert.ErrorIs(t, err, ErrNoArticles)
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Skipped)
}

func TestService_CollectEpisode_Canceled(t *testing.T) {
	layout := episode.NewLayout(t.TempDir(), 1)
	require.NoError(t, layout.Create())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{headlines: []entity.Headline{headline("One", "https://a.example/1")}}
	f := &fakeFetcher{pages: map[string]string{"https://a.example/1": "x"}}
	_, err := NewService(src, f, 1).CollectEpisode(ctx, layout, 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.fetched)
}

func TestService_CollectEpisode_SkipsUnusableHeadlines(t *testing.T) {
	layout := episode.NewLayout(t.TempDir(), 1)
	require.NoError(t, layout.Create())

	src := &fakeSource{headlines: []entity.Headline{
		headline("  ", "https://a.example/1"),
		headline("Relative link", "/news/2"),
		headline("Good", "https://a.example/3"),
	}}
	f := &fakeFetcher{pages: map[string]string{"https://a.example/3": "Body."}}

	stats, err := NewService(src, f, 2).CollectEpisode(context.Background(), layout, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Skipped)
	assert.Equal(t, int64(1), stats.Written)
	assert.Equal(t, []string{"https://a.example/3"}, f.fetched)
}
