// Package app assembles the episode pipeline from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"newscast/internal/config"
	"newscast/internal/episode"
	"newscast/internal/infra/feed"
	"newscast/internal/infra/fetcher"
	"newscast/internal/infra/newsapi"
	"newscast/internal/infra/notifier"
	"newscast/internal/infra/summarizer"
	"newscast/internal/infra/tts"
	"newscast/internal/infra/video"
	"newscast/internal/infra/youtube"
	"newscast/internal/pipeline"
	"newscast/internal/usecase/collect"
	"newscast/internal/usecase/summarize"
)

// NewEndpoint creates the configured summarization endpoint.
func NewEndpoint(cfg config.SummarizerConfig) (summarize.Endpoint, error) {
	limits := summarizer.Limits{
		Timeout:        cfg.Timeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}

	typ, err := summarizer.ParseType(cfg.Type)
	if err != nil {
		return nil, err
	}

	switch typ {
	case summarizer.TypeHuggingFace:
		c := summarizer.DefaultHuggingFaceConfig(cfg.HFAPIKey)
		if cfg.HFModel != "" {
			c.Model = cfg.HFModel
		}
		if cfg.HFBaseURL != "" {
			c.BaseURL = cfg.HFBaseURL
		}
		c.Limits = limits
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("huggingface: %w", err)
		}
		return summarizer.NewHuggingFace(c), nil

	case summarizer.TypeOpenAI:
		c := summarizer.DefaultOpenAIConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIModel != "" {
			c.Model = cfg.OpenAIModel
		}
		c.Limits = limits
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		return summarizer.NewOpenAI(c), nil

	case summarizer.TypeClaude:
		c := summarizer.DefaultClaudeConfig(cfg.AnthropicAPIKey)
		if cfg.ClaudeModel != "" {
			c.Model = cfg.ClaudeModel
		}
		c.Limits = limits
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("claude: %w", err)
		}
		return summarizer.NewClaude(c), nil

	default:
		return summarizer.NewNoOp(), nil
	}
}

// SummarizeConfig maps the summary settings onto the summarization protocol.
func SummarizeConfig(cfg *config.Config) (summarize.Config, error) {
	mode, err := summarize.ParseChunkMode(cfg.Summary.ChunkMode)
	if err != nil {
		return summarize.Config{}, err
	}

	sc := summarize.DefaultConfig()
	sc.MaxChunkLength = cfg.Summary.MaxChunkLength
	sc.MaxSummaryLength = cfg.Summary.MaxLength
	sc.MinLength = cfg.Summary.MinLength
	sc.CombineMinLength = cfg.Summary.MinLength
	sc.ChunkMode = mode
	sc.ArticleParallelism = cfg.Summary.ArticleParallelism
	sc.ChunkParallelism = cfg.Summary.ChunkParallelism
	sc.FallbackMaxChars = cfg.Summary.FallbackMaxChars
	sc.CallTimeout = cfg.Summarizer.Timeout
	sc.Retry.MaxAttempts = cfg.Summary.MaxAttempts

	if err := sc.Validate(); err != nil {
		return summarize.Config{}, err
	}
	return sc, nil
}

// NewHeadlineSource creates the configured headline source.
func NewHeadlineSource(cfg config.NewsConfig) (collect.HeadlineSource, error) {
	switch cfg.Source {
	case config.SourceNewsAPI, "":
		c := newsapi.DefaultConfig(cfg.APIKey)
		if cfg.Query != "" {
			c.Query = cfg.Query
		}
		if cfg.Language != "" {
			c.Language = cfg.Language
		}
		if cfg.SortBy != "" {
			c.SortBy = cfg.SortBy
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return newsapi.New(c), nil

	case config.SourceRSS:
		if cfg.RSSFeedURL == "" {
			return nil, fmt.Errorf("rss source requires a feed URL")
		}
		return feed.NewRSS(cfg.RSSFeedURL, nil), nil

	case config.SourceHTML:
		if cfg.HomepageURL == "" {
			return nil, fmt.Errorf("html source requires a homepage URL")
		}
		hc := feed.DefaultHomepageConfig(cfg.HomepageURL)
		if cfg.HomepageItemSelector != "" {
			hc.ItemSelector = cfg.HomepageItemSelector
		}
		hc.TitleSelector = cfg.HomepageTitleSelector
		if cfg.HomepageLinkSelector != "" {
			hc.LinkSelector = cfg.HomepageLinkSelector
		}
		hc.AllowPrivateHosts = !cfg.DenyPrivateIPs
		return feed.NewHomepage(hc, nil), nil

	default:
		return nil, fmt.Errorf("unknown news source %q", cfg.Source)
	}
}

// NewFetcher creates the article content fetcher.
func NewFetcher(cfg config.NewsConfig) (*fetcher.Fetcher, error) {
	fc := fetcher.DefaultConfig()
	fc.Timeout = cfg.FetchTimeout
	fc.DenyPrivateIPs = cfg.DenyPrivateIPs
	if err := fc.Validate(); err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	return fetcher.New(fc), nil
}

// BuildPipeline wires every stage. YouTube credentials are read when the
// upload stage runs, so they are only required for uploads.
func BuildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	endpoint, err := NewEndpoint(cfg.Summarizer)
	if err != nil {
		return nil, err
	}
	sc, err := SummarizeConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("summary config: %w", err)
	}
	source, err := NewHeadlineSource(cfg.News)
	if err != nil {
		return nil, fmt.Errorf("headline source: %w", err)
	}
	pageFetcher, err := NewFetcher(cfg.News)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(cfg.OutputDir)
	stages := map[string]pipeline.StageFunc{
		pipeline.StageCollect:   pipeline.CollectStage(collect.NewService(source, pageFetcher, cfg.News.Parallelism)),
		pipeline.StageSummarize: pipeline.SummarizeStage(summarize.NewService(endpoint, sc)),
		pipeline.StageScript:    pipeline.ScriptStage(),
		pipeline.StageAudio: pipeline.AudioStage(tts.New(tts.Config{
			Command: cfg.TTS.Command,
			Lang:    cfg.TTS.Lang,
			Voice:   cfg.TTS.Voice,
			Timeout: cfg.TTS.Timeout,
		})),
		pipeline.StageVideo: pipeline.VideoStage(video.New(video.Config{
			FFmpegPath:  cfg.Video.FFmpegPath,
			FFprobePath: cfg.Video.FFprobePath,
			Slides:      cfg.Video.Slides,
			Keywords:    cfg.Video.Keywords,
		})),
		pipeline.StageUpload: pipeline.UploadStage(&lazyPublisher{
			auth:       AuthConfig(cfg),
			upload:     UploadConfig(cfg),
			summarizer: endpoint,
		}, NewNotifier(cfg.Notify), cfg.ChannelName),
	}
	for name, fn := range stages {
		if err := p.Register(name, fn); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewNotifier returns the episode announcer for the configured webhooks.
func NewNotifier(n config.NotifyConfig) notifier.Notifier {
	return notifier.New(notifier.Config{
		SlackWebhookURL:   n.SlackWebhookURL,
		DiscordWebhookURL: n.DiscordWebhookURL,
		Timeout:           n.Timeout,
	})
}

// AuthConfig returns the YouTube OAuth file locations.
func AuthConfig(cfg *config.Config) youtube.AuthConfig {
	return youtube.AuthConfig{
		ClientSecretFile: cfg.YouTube.ClientSecretFile,
		TokenFile:        cfg.YouTube.TokenFile,
	}
}

// UploadConfig returns the YouTube upload settings.
func UploadConfig(cfg *config.Config) youtube.UploadConfig {
	uc := youtube.DefaultUploadConfig(cfg.ChannelName)
	uc.PlaylistID = cfg.YouTube.PlaylistID
	if cfg.YouTube.Privacy != "" {
		uc.Privacy = cfg.YouTube.Privacy
	}
	if cfg.YouTube.CategoryID != "" {
		uc.CategoryID = cfg.YouTube.CategoryID
	}
	return uc
}

// lazyPublisher authenticates on every upload; the OAuth client is bound to
// the context it was created with.
type lazyPublisher struct {
	auth       youtube.AuthConfig
	upload     youtube.UploadConfig
	summarizer youtube.Summarizer
}

func (l *lazyPublisher) Publish(ctx context.Context, layout episode.Layout) (*youtube.Result, error) {
	svc, err := youtube.NewService(ctx, l.auth)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "youtube service ready", slog.String("channel", l.upload.Channel))
	return youtube.NewUploader(svc, l.summarizer, l.upload).Publish(ctx, layout)
}
