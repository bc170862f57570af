// Package notifier announces published episodes on chat webhooks.
// Slack and Discord are supported; Multi fans an announcement out to several
// channels and NoOp stands in when none is configured.
package notifier

import (
	"context"
	"errors"
	"time"
)

// Announcement describes a published episode.
type Announcement struct {
	Episode     int
	Title       string
	URL         string
	Description string
	Channel     string
	PublishedAt time.Time
}

// Notifier sends an announcement.
// Implementations handle rate limiting and retries internally.
type Notifier interface {
	NotifyEpisode(ctx context.Context, a Announcement) error
}

// Config selects the enabled webhooks.
type Config struct {
	SlackWebhookURL   string
	DiscordWebhookURL string
	Timeout           time.Duration
}

// New returns a notifier for every configured webhook, or NoOp when none is set.
func New(cfg Config) Notifier {
	var ns Multi
	if cfg.SlackWebhookURL != "" {
		ns = append(ns, NewSlackNotifier(SlackConfig{WebhookURL: cfg.SlackWebhookURL, Timeout: cfg.Timeout}))
	}
	if cfg.DiscordWebhookURL != "" {
		ns = append(ns, NewDiscordNotifier(DiscordConfig{WebhookURL: cfg.DiscordWebhookURL, Timeout: cfg.Timeout}))
	}
	switch len(ns) {
	case 0:
		return NoOp{}
	case 1:
		return ns[0]
	default:
		return ns
	}
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

// NotifyEpisode implements Notifier.
func (m Multi) NotifyEpisode(ctx context.Context, a Announcement) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyEpisode(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoOp discards announcements.
type NoOp struct{}

// NotifyEpisode implements Notifier.
func (NoOp) NotifyEpisode(context.Context, Announcement) error { return nil }
