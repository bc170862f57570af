// Package config loads the newscast configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then a
// .env file and the process environment. Environment values that cannot be
// parsed fall back to the layer below with a logged warning.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	pkgconfig "newscast/internal/pkg/config"
)

// News sources.
const (
	SourceNewsAPI = "newsapi"
	SourceRSS     = "rss"
	SourceHTML    = "html"
)

// Summarizer endpoints.
const (
	SummarizerHuggingFace = "huggingface"
	SummarizerOpenAI      = "openai"
	SummarizerClaude      = "claude"
	SummarizerNoOp        = "noop"
)

// Config is the complete newscast configuration.
type Config struct {
	OutputDir   string `yaml:"output_dir"`
	ChannelName string `yaml:"channel_name"`
	// Articles is the default number of stories per episode.
	Articles int `yaml:"articles"`

	News       NewsConfig       `yaml:"news"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Summary    SummaryConfig    `yaml:"summary"`
	TTS        TTSConfig        `yaml:"tts"`
	Video      VideoConfig      `yaml:"video"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// NewsConfig selects where headlines come from and how pages are fetched.
type NewsConfig struct {
	Source   string `yaml:"source"`
	APIKey   string `yaml:"api_key"`
	Query    string `yaml:"query"`
	Language string `yaml:"language"`
	SortBy   string `yaml:"sort_by"`

	RSSFeedURL string `yaml:"rss_feed_url"`

	HomepageURL           string `yaml:"homepage_url"`
	HomepageItemSelector  string `yaml:"homepage_item_selector"`
	HomepageTitleSelector string `yaml:"homepage_title_selector"`
	HomepageLinkSelector  string `yaml:"homepage_link_selector"`

	Parallelism    int           `yaml:"parallelism"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	DenyPrivateIPs bool          `yaml:"deny_private_ips"`
}

// SummarizerConfig selects the summarization endpoint and its credentials.
type SummarizerConfig struct {
	Type string `yaml:"type"`

	HFAPIKey  string `yaml:"hf_api_key"`
	HFModel   string `yaml:"hf_model"`
	HFBaseURL string `yaml:"hf_base_url"`

	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	ClaudeModel     string `yaml:"claude_model"`

	Timeout        time.Duration `yaml:"timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

// SummaryConfig holds the chunked summarization parameters.
type SummaryConfig struct {
	MaxChunkLength     int    `yaml:"max_chunk_length"`
	MaxLength          int    `yaml:"max_length"`
	MinLength          int    `yaml:"min_length"`
	ChunkMode          string `yaml:"chunk_mode"`
	ArticleParallelism int    `yaml:"article_parallelism"`
	ChunkParallelism   int    `yaml:"chunk_parallelism"`
	MaxAttempts        int    `yaml:"max_attempts"`
	FallbackMaxChars   int    `yaml:"fallback_max_chars"`
}

// TTSConfig selects the speech synthesis program.
type TTSConfig struct {
	Command string        `yaml:"command"`
	Lang    string        `yaml:"lang"`
	Voice   string        `yaml:"voice"`
	Timeout time.Duration `yaml:"timeout"`
}

// VideoConfig locates ffmpeg and shapes the slideshow.
type VideoConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Slides      int    `yaml:"slides"`
	Keywords    int    `yaml:"keywords"`
}

// NotifyConfig holds the webhooks announcing a published episode.
// Empty URLs disable the corresponding channel.
type NotifyConfig struct {
	SlackWebhookURL   string        `yaml:"slack_webhook_url"`
	DiscordWebhookURL string        `yaml:"discord_webhook_url"`
	Timeout           time.Duration `yaml:"timeout"`
}

// YouTubeConfig holds the upload credentials and target.
type YouTubeConfig struct {
	ClientSecretFile string `yaml:"client_secret_file"`
	TokenFile        string `yaml:"token_file"`
	PlaylistID       string `yaml:"playlist_id"`
	Privacy          string `yaml:"privacy"`
	CategoryID       string `yaml:"category_id"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		OutputDir:   "output",
		ChannelName: "AI News Summary",
		Articles:    5,
		News: NewsConfig{
			Source:                SourceNewsAPI,
			Query:                 "bitcoin",
			Language:              "en",
			SortBy:                "relevancy",
			HomepageItemSelector:  "h2",
			HomepageTitleSelector: "",
			HomepageLinkSelector:  "a",
			Parallelism:           5,
			FetchTimeout:          10 * time.Second,
			DenyPrivateIPs:        true,
		},
		Summarizer: SummarizerConfig{
			Type:           SummarizerHuggingFace,
			HFModel:        "facebook/bart-large-cnn",
			HFBaseURL:      "https://api-inference.huggingface.co/models",
			OpenAIModel:    "gpt-4o-mini",
			ClaudeModel:    "claude-sonnet-4-5-20250929",
			Timeout:        60 * time.Second,
			RateLimitRPS:   0,
			RateLimitBurst: 1,
		},
		Summary: SummaryConfig{
			MaxChunkLength:     1000,
			MaxLength:          500,
			MinLength:          30,
			ChunkMode:          "fixed",
			ArticleParallelism: 3,
			ChunkParallelism:   1,
			MaxAttempts:        3,
		},
		TTS: TTSConfig{
			Command: "gtts-cli",
			Lang:    "en",
			Voice:   "en-US-GuyNeural",
			Timeout: 10 * time.Minute,
		},
		Video: VideoConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Slides:      10,
			Keywords:    5,
		},
		YouTube: YouTubeConfig{
			ClientSecretFile: "client_secret.json",
			TokenFile:        "youtube_token.json",
			Privacy:          "public",
			CategoryID:       "22",
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
		},
	}
}

var loadMetrics = sync.OnceValue(func() *pkgconfig.ConfigMetrics {
	return pkgconfig.NewConfigMetrics("")
})

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it. A missing .env file in the working directory is not an error.
func Load(path string, logger *slog.Logger) (*Config, error) {
	return load(path, ".env", logger, loadMetrics(), (*Config).Validate)
}

// LoadForSummarization is Load with only the summarization settings validated.
func LoadForSummarization(path string, logger *slog.Logger) (*Config, error) {
	return load(path, ".env", logger, loadMetrics(), (*Config).ValidateSummarization)
}

func load(path, envFile string, logger *slog.Logger, metrics *pkgconfig.ConfigMetrics, validate func(*Config) error) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := Default()
	if path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	l := pkgconfig.NewLoader(logger, metrics)
	cfg.applyEnv(l)
	l.Finish()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	// #nosec G304 -- path comes from a command line flag
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
