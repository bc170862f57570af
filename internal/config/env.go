package config

import (
	"strings"
	"time"

	pkgconfig "newscast/internal/pkg/config"
)

func positiveInt(v int) error { return pkgconfig.ValidateIntRange(v, 1, 1<<20) }
func nonNegativeInt(v int) error { return pkgconfig.ValidateIntRange(v, 0, 1<<30) }

func parallelism(v int) error { return pkgconfig.ValidateIntRange(v, 1, 50) }

// applyEnv overrides c with the process environment.
func (c *Config) applyEnv(l *pkgconfig.Loader) {
	c.OutputDir = pkgconfig.LoadEnvString("OUTPUT_DIR", c.OutputDir)
	c.ChannelName = pkgconfig.LoadEnvString("CHANNEL_NAME", c.ChannelName)
	c.Articles = pkgconfig.Apply(l, "articles", pkgconfig.LoadEnvInt("ARTICLES", c.Articles, positiveInt))

	n := &c.News
	n.Source = strings.ToLower(pkgconfig.Apply(l, "news_source", pkgconfig.LoadEnvWithFallback("NEWS_SOURCE", n.Source,
		pkgconfig.ValidateOneOf(SourceNewsAPI, SourceRSS, SourceHTML))))
	n.APIKey = pkgconfig.LoadFirstEnv(n.APIKey, "NEWSAPI_KEY", "newsapi")
	n.Query = pkgconfig.LoadEnvString("NEWS_QUERY", n.Query)
	n.Language = pkgconfig.LoadEnvString("NEWS_LANGUAGE", n.Language)
	n.SortBy = pkgconfig.Apply(l, "news_sort_by", pkgconfig.LoadEnvWithFallback("NEWS_SORT_BY", n.SortBy,
		pkgconfig.ValidateOneOf("relevancy", "popularity", "publishedat")))
	n.RSSFeedURL = pkgconfig.Apply(l, "rss_feed_url", pkgconfig.LoadEnvWithFallback("RSS_FEED_URL", n.RSSFeedURL, pkgconfig.ValidateHTTPURL))
	n.HomepageURL = pkgconfig.Apply(l, "homepage_url", pkgconfig.LoadEnvWithFallback("HOMEPAGE_URL", n.HomepageURL, pkgconfig.ValidateHTTPURL))
	n.HomepageItemSelector = pkgconfig.LoadEnvString("HOMEPAGE_ITEM_SELECTOR", n.HomepageItemSelector)
	n.HomepageTitleSelector = pkgconfig.LoadEnvString("HOMEPAGE_TITLE_SELECTOR", n.HomepageTitleSelector)
	n.HomepageLinkSelector = pkgconfig.LoadEnvString("HOMEPAGE_LINK_SELECTOR", n.HomepageLinkSelector)
	n.Parallelism = pkgconfig.Apply(l, "collect_parallelism", pkgconfig.LoadEnvInt("COLLECT_PARALLELISM", n.Parallelism, parallelism))
	n.FetchTimeout = pkgconfig.Apply(l, "fetch_timeout", pkgconfig.LoadEnvDuration("FETCH_TIMEOUT", n.FetchTimeout, pkgconfig.ValidatePositiveDuration))
	n.DenyPrivateIPs = pkgconfig.Apply(l, "deny_private_ips", pkgconfig.LoadEnvBool("FETCH_DENY_PRIVATE_IPS", n.DenyPrivateIPs))

	s := &c.Summarizer
	s.Type = strings.ToLower(pkgconfig.Apply(l, "summarizer_type", pkgconfig.LoadEnvWithFallback("SUMMARIZER_TYPE", s.Type,
		pkgconfig.ValidateOneOf(SummarizerHuggingFace, SummarizerOpenAI, SummarizerClaude, SummarizerNoOp))))
	s.HFAPIKey = pkgconfig.LoadFirstEnv(s.HFAPIKey, "HF_API_KEY", "HF")
	s.HFModel = pkgconfig.LoadEnvString("HF_MODEL", s.HFModel)
	s.HFBaseURL = pkgconfig.Apply(l, "hf_base_url", pkgconfig.LoadEnvWithFallback("HF_BASE_URL", s.HFBaseURL, pkgconfig.ValidateHTTPURL))
	s.OpenAIAPIKey = pkgconfig.LoadEnvString("OPENAI_API_KEY", s.OpenAIAPIKey)
	s.OpenAIModel = pkgconfig.LoadEnvString("OPENAI_MODEL", s.OpenAIModel)
	s.AnthropicAPIKey = pkgconfig.LoadEnvString("ANTHROPIC_API_KEY", s.AnthropicAPIKey)
	s.ClaudeModel = pkgconfig.LoadEnvString("CLAUDE_MODEL", s.ClaudeModel)
	s.Timeout = pkgconfig.Apply(l, "summarizer_timeout", pkgconfig.LoadEnvDuration("SUMMARIZER_TIMEOUT", s.Timeout, pkgconfig.ValidatePositiveDuration))
	s.RateLimitRPS = pkgconfig.Apply(l, "summary_rate_limit_rps", pkgconfig.LoadEnvFloat("SUMMARY_RATE_LIMIT_RPS", s.RateLimitRPS,
		func(v float64) error { return pkgconfig.ValidateFloatRange(v, 0, 1000) }))
	s.RateLimitBurst = pkgconfig.Apply(l, "summary_rate_limit_burst", pkgconfig.LoadEnvInt("SUMMARY_RATE_LIMIT_BURST", s.RateLimitBurst, positiveInt))

	m := &c.Summary
	m.MaxChunkLength = pkgconfig.Apply(l, "summary_max_chunk_length", pkgconfig.LoadEnvInt("SUMMARY_MAX_CHUNK_LENGTH", m.MaxChunkLength, positiveInt))
	m.MaxLength = pkgconfig.Apply(l, "summary_max_length", pkgconfig.LoadEnvInt("SUMMARY_MAX_LENGTH", m.MaxLength, positiveInt))
	m.MinLength = pkgconfig.Apply(l, "summary_min_length", pkgconfig.LoadEnvInt("SUMMARY_MIN_LENGTH", m.MinLength, nonNegativeInt))
	m.ChunkMode = strings.ToLower(pkgconfig.Apply(l, "summary_chunk_mode", pkgconfig.LoadEnvWithFallback("SUMMARY_CHUNK_MODE", m.ChunkMode,
		pkgconfig.ValidateOneOf("fixed", "sentence"))))
	m.ArticleParallelism = pkgconfig.Apply(l, "summary_article_parallelism", pkgconfig.LoadEnvInt("SUMMARY_ARTICLE_PARALLELISM", m.ArticleParallelism, parallelism))
	m.ChunkParallelism = pkgconfig.Apply(l, "summary_chunk_parallelism", pkgconfig.LoadEnvInt("SUMMARY_CHUNK_PARALLELISM", m.ChunkParallelism, parallelism))
	m.MaxAttempts = pkgconfig.Apply(l, "summary_max_attempts", pkgconfig.LoadEnvInt("SUMMARY_MAX_ATTEMPTS", m.MaxAttempts,
		func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 10) }))
	m.FallbackMaxChars = pkgconfig.Apply(l, "summary_fallback_max_chars", pkgconfig.LoadEnvInt("SUMMARY_FALLBACK_MAX_CHARS", m.FallbackMaxChars, nonNegativeInt))

	t := &c.TTS
	t.Command = pkgconfig.LoadEnvString("TTS_COMMAND", t.Command)
	t.Lang = pkgconfig.LoadEnvString("TTS_LANG", t.Lang)
	t.Voice = pkgconfig.LoadEnvString("TTS_VOICE", t.Voice)
	t.Timeout = pkgconfig.Apply(l, "tts_timeout", pkgconfig.LoadEnvDuration("TTS_TIMEOUT", t.Timeout,
		func(d time.Duration) error { return pkgconfig.ValidateDuration(d, time.Second, 2*time.Hour) }))

	v := &c.Video
	v.FFmpegPath = pkgconfig.LoadEnvString("FFMPEG_PATH", v.FFmpegPath)
	v.FFprobePath = pkgconfig.LoadEnvString("FFPROBE_PATH", v.FFprobePath)
	v.Slides = pkgconfig.Apply(l, "video_slides", pkgconfig.LoadEnvInt("VIDEO_SLIDES", v.Slides,
		func(n int) error { return pkgconfig.ValidateIntRange(n, 1, 100) }))
	v.Keywords = pkgconfig.Apply(l, "video_keywords", pkgconfig.LoadEnvInt("VIDEO_KEYWORDS", v.Keywords,
		func(n int) error { return pkgconfig.ValidateIntRange(n, 1, 50) }))

	y := &c.YouTube
	y.ClientSecretFile = pkgconfig.LoadEnvString("YOUTUBE_CLIENT_SECRET", y.ClientSecretFile)
	y.TokenFile = pkgconfig.LoadEnvString("YOUTUBE_TOKEN_FILE", y.TokenFile)
	y.PlaylistID = pkgconfig.LoadEnvString("YOUTUBE_PLAYLIST_ID", y.PlaylistID)
	y.Privacy = strings.ToLower(pkgconfig.Apply(l, "youtube_privacy", pkgconfig.LoadEnvWithFallback("YOUTUBE_PRIVACY", y.Privacy,
		pkgconfig.ValidateOneOf("public", "unlisted", "private"))))
	y.CategoryID = pkgconfig.LoadEnvString("YOUTUBE_CATEGORY", y.CategoryID)

	nt := &c.Notify
	nt.SlackWebhookURL = pkgconfig.Apply(l, "slack_webhook_url", pkgconfig.LoadEnvWithFallback("SLACK_WEBHOOK_URL", nt.SlackWebhookURL, pkgconfig.ValidateHTTPURL))
	nt.DiscordWebhookURL = pkgconfig.Apply(l, "discord_webhook_url", pkgconfig.LoadEnvWithFallback("DISCORD_WEBHOOK_URL", nt.DiscordWebhookURL, pkgconfig.ValidateHTTPURL))
	nt.Timeout = pkgconfig.Apply(l, "notify_timeout", pkgconfig.LoadEnvDuration("NOTIFY_TIMEOUT", nt.Timeout, pkgconfig.ValidatePositiveDuration))
}
