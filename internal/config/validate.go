package config

import (
	"errors"
	"fmt"
	"strings"

	pkgconfig "newscast/internal/pkg/config"
)

// Validate aggregates every invalid or missing setting into one error.
func (c *Config) Validate() error {
	return errors.Join(c.validateCommon(), c.validateNews(), c.ValidateSummarization(), c.validateMedia())
}

type errList []error

func (l *errList) add(format string, args ...any) {
	*l = append(*l, fmt.Errorf(format, args...))
}

func (c *Config) validateCommon() error {
	if c.Articles < 1 {
		return fmt.Errorf("articles must be positive, got %d", c.Articles)
	}
	return nil
}

func (c *Config) validateNews() error {
	var errs errList
	add := errs.add

	switch c.News.Source {
	case SourceNewsAPI:
		if c.News.APIKey == "" {
			add("news source newsapi requires NEWSAPI_KEY")
		}
	case SourceRSS:
		if err := pkgconfig.ValidateHTTPURL(c.News.RSSFeedURL); err != nil {
			add("news source rss requires RSS_FEED_URL: %w", err)
		}
	case SourceHTML:
		if err := pkgconfig.ValidateHTTPURL(c.News.HomepageURL); err != nil {
			add("news source html requires HOMEPAGE_URL: %w", err)
		}
		if c.News.HomepageItemSelector == "" {
			add("news source html requires HOMEPAGE_ITEM_SELECTOR")
		}
	default:
		add("unknown news source %q", c.News.Source)
	}
	if err := pkgconfig.ValidateIntRange(c.News.Parallelism, 1, 50); err != nil {
		add("collect parallelism: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.News.FetchTimeout); err != nil {
		add("fetch timeout: %w", err)
	}
	return errors.Join(errs...)
}

// ValidateSummarization checks only the settings used by the summarize stage.
func (c *Config) ValidateSummarization() error {
	var errs errList
	add := errs.add

	if strings.TrimSpace(c.OutputDir) == "" {
		add("output dir cannot be empty")
	}

	switch c.Summarizer.Type {
	case SummarizerHuggingFace:
		if c.Summarizer.HFModel == "" {
			add("summarizer huggingface requires HF_MODEL")
		}
	case SummarizerOpenAI:
		if c.Summarizer.OpenAIAPIKey == "" {
			add("summarizer openai requires OPENAI_API_KEY")
		}
	case SummarizerClaude:
		if c.Summarizer.AnthropicAPIKey == "" {
			add("summarizer claude requires ANTHROPIC_API_KEY")
		}
	case SummarizerNoOp:
	default:
		add("unknown summarizer type %q", c.Summarizer.Type)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Summarizer.Timeout); err != nil {
		add("summarizer timeout: %w", err)
	}
	if c.Summarizer.RateLimitRPS < 0 {
		add("summary rate limit must be non-negative, got %v", c.Summarizer.RateLimitRPS)
	}

	if c.Summary.MaxChunkLength < 1 {
		add("summary max chunk length must be positive, got %d", c.Summary.MaxChunkLength)
	}
	if c.Summary.MaxLength < 1 {
		add("summary max length must be positive, got %d", c.Summary.MaxLength)
	}
	if c.Summary.MinLength < 0 {
		add("summary min length must be non-negative, got %d", c.Summary.MinLength)
	}
	if c.Summary.MaxAttempts < 1 {
		add("summary max attempts must be at least 1, got %d", c.Summary.MaxAttempts)
	}
	return errors.Join(errs...)
}

func (c *Config) validateMedia() error {
	var errs errList
	add := errs.add

	if c.TTS.Command == "" {
		add("tts command cannot be empty")
	}
	if c.Video.Slides < 1 {
		add("video slides must be positive, got %d", c.Video.Slides)
	}
	for name, u := range map[string]string{"slack": c.Notify.SlackWebhookURL, "discord": c.Notify.DiscordWebhookURL} {
		if u == "" {
			continue
		}
		if err := pkgconfig.ValidateHTTPURL(u); err != nil {
			add("%s webhook: %w", name, err)
		}
	}

	return errors.Join(errs...)
}
