package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/config"
	"newscast/internal/infra/summarizer"
	"newscast/internal/pipeline"
	"newscast/internal/usecase/summarize"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.News.Source = config.SourceRSS
	cfg.News.RSSFeedURL = "https://example.com/feed.xml"
	cfg.Summarizer.Type = config.SummarizerNoOp
	cfg.YouTube.ClientSecretFile = filepath.Join(t.TempDir(), "missing_secret.json")
	require.NoError(t, cfg.Validate())
	return &cfg
}

func TestNewEndpoint(t *testing.T) {
	base := config.Default().Summarizer

	tests := []struct {
		name    string
		mutate  func(*config.SummarizerConfig)
		want    any
		wantErr string
	}{
		{name: "huggingface", mutate: func(c *config.SummarizerConfig) {}, want: &summarizer.HuggingFace{}},
		{name: "noop", mutate: func(c *config.SummarizerConfig) { c.Type = config.SummarizerNoOp }, want: &summarizer.NoOp{}},
		{name: "openai", mutate: func(c *config.SummarizerConfig) {
			c.Type = config.SummarizerOpenAI
			c.OpenAIAPIKey = "sk-test"
		}, want: &summarizer.OpenAI{}},
		{name: "claude", mutate: func(c *config.SummarizerConfig) {
			c.Type = config.SummarizerClaude
			c.AnthropicAPIKey = "sk-ant-test"
		}, want: &summarizer.Claude{}},
		{name: "openai without key", mutate: func(c *config.SummarizerConfig) { c.Type = config.SummarizerOpenAI }, wantErr: "openai"},
		{name: "unknown", mutate: func(c *config.SummarizerConfig) { c.Type = "gpt2" }, wantErr: "unknown summarizer type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			ep, err := NewEndpoint(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, ep)
		})
	}
}

func TestSummarizeConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Summary.MaxChunkLength = 800
	cfg.Summary.MaxLength = 300
	cfg.Summary.MinLength = 20
	cfg.Summary.ChunkMode = "sentence"
	cfg.Summary.MaxAttempts = 5
	cfg.Summarizer.Timeout = 15 * time.Second

	sc, err := SummarizeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 800, sc.MaxChunkLength)
	assert.Equal(t, 300, sc.MaxSummaryLength)
	assert.Equal(t, 20, sc.MinLength)
	assert.Equal(t, 20, sc.CombineMinLength)
	assert.Equal(t, summarize.ChunkModeSentence, sc.ChunkMode)
	assert.Equal(t, 5, sc.Retry.MaxAttempts)
	assert.Equal(t, 15*time.Second, sc.CallTimeout)
	assert.True(t, sc.Retry.RetryRequestErrors)

	cfg.Summary.ChunkMode = "paragraph"
	_, err = SummarizeConfig(cfg)
	assert.Error(t, err)
}

func TestNewHeadlineSource(t *testing.T) {
	news := config.Default().News

	news.APIKey = "key"
	src, err := NewHeadlineSource(news)
	require.NoError(t, err)
	assert.Equal(t, "newsapi", src.Name())

	news.Source = config.SourceRSS
	news.RSSFeedURL = "https://example.com/rss"
	src, err = NewHeadlineSource(news)
	require.NoError(t, err)
	assert.Equal(t, "rss", src.Name())

	news.Source = config.SourceHTML
	news.HomepageURL = "https://example.com/"
	src, err = NewHeadlineSource(news)
	require.NoError(t, err)
	assert.Equal(t, "homepage", src.Name())

	news.Source = config.SourceNewsAPI
	news.APIKey = ""
	_, err = NewHeadlineSource(news)
	assert.Error(t, err)
}

func TestUploadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChannelName = "Crypto Daily"
	cfg.YouTube.PlaylistID = "PL1"
	cfg.YouTube.Privacy = "unlisted"

	uc := UploadConfig(cfg)
	assert.Equal(t, "Crypto Daily", uc.Channel)
	assert.Equal(t, "PL1", uc.PlaylistID)
	assert.Equal(t, "unlisted", uc.Privacy)
	assert.Equal(t, "22", uc.CategoryID)
}

func TestBuildPipeline_RegistersEveryStage(t *testing.T) {
	cfg := testConfig(t)

	p, err := BuildPipeline(cfg)
	require.NoError(t, err)

	// the script stage needs no remote services; with no summaries it writes
	// the introduction and the conclusion only
	res, err := p.Run(context.Background(), 1, 5, []string{pipeline.StageScript})
	require.NoError(t, err)
	assert.Equal(t, []string{pipeline.StageScript}, res.Completed)
}

func TestBuildPipeline_UploadNeedsCredentials(t *testing.T) {
	cfg := testConfig(t)

	p, err := BuildPipeline(cfg)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), 1, 5, []string{pipeline.StageUpload})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read client secret")
	assert.Equal(t, pipeline.StageUpload, res.Failed)
}
