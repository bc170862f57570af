package notifier

import (
	"context"
	"fmt"
	"time"
)

const (
	maxEmbedDescriptionLength = 4096
	maxEmbedTitleLength       = 256
	embedColor                = 0xFF0000
)

// DiscordConfig configures a Discord webhook.
type DiscordConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// DiscordNotifier posts embeds.
type DiscordNotifier struct {
	hook *webhook
}

// NewDiscordNotifier returns a Discord notifier limited to 2 requests per second.
func NewDiscordNotifier(cfg DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{hook: newWebhook("discord", cfg.WebhookURL, cfg.Timeout, 2.0, 2)}
}

// DiscordWebhookPayload is the JSON body of a Discord webhook call.
type DiscordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed is a rich embed.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	URL         string             `json:"url,omitempty"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Timestamp   string             `json:"timestamp"`
	Footer      DiscordEmbedFooter `json:"footer"`
}

// DiscordEmbedFooter is the footer of an embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

func buildDiscordPayload(a Announcement) DiscordWebhookPayload {
	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:       truncate(a.Title, maxEmbedTitleLength, truncationSuffix),
			URL:         a.URL,
			Description: truncate(a.Description, maxEmbedDescriptionLength, truncationSuffix),
			Color:       embedColor,
			Timestamp:   a.PublishedAt.Format(time.RFC3339),
			Footer:      DiscordEmbedFooter{Text: fmt.Sprintf("%s • episode %d", a.Channel, a.Episode)},
		}},
	}
}

// NotifyEpisode implements Notifier.
func (d *DiscordNotifier) NotifyEpisode(ctx context.Context, a Announcement) error {
	return d.hook.deliver(ctx, a.Episode, buildDiscordPayload(a))
}
