package notifier

import (
	"context"
	"fmt"
	"time"
)

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
	truncationSuffix     = "..."
)

// SlackConfig configures a Slack Incoming Webhook.
type SlackConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// SlackNotifier posts Block Kit messages.
// Slack accepts about one webhook message per second.
type SlackNotifier struct {
	hook *webhook
}

// NewSlackNotifier returns a Slack notifier limited to 1 request per second.
func NewSlackNotifier(cfg SlackConfig) *SlackNotifier {
	return &SlackNotifier{hook: newWebhook("slack", cfg.WebhookURL, cfg.Timeout, 1.0, 1)}
}

// SlackWebhookPayload is the JSON body of a Slack webhook call.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is a Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject is a Block Kit text object.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func buildSlackPayload(a Announcement) SlackWebhookPayload {
	fallback := truncate(fmt.Sprintf("Episode %d: %s", a.Episode, a.Title), maxFallbackLength, truncationSuffix)
	section := truncate(fmt.Sprintf("*<%s|%s>*\n\n%s", a.URL, a.Title, a.Description), maxSectionTextLength, truncationSuffix)
	footer := fmt.Sprintf("%s • episode %d • %s", a.Channel, a.Episode, a.PublishedAt.Format(time.RFC3339))

	return SlackWebhookPayload{
		Text: fallback,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: footer}}},
		},
	}
}

// NotifyEpisode implements Notifier.
func (s *SlackNotifier) NotifyEpisode(ctx context.Context, a Announcement) error {
	return s.hook.deliver(ctx, a.Episode, buildSlackPayload(a))
}
