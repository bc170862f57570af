package pipeline

import (
	"context"
	"log/slog"

	"newscast/internal/episode"
	"newscast/internal/infra/notifier"
	"newscast/internal/infra/youtube"
	"newscast/internal/observability/logging"
	"newscast/internal/usecase/collect"
	"newscast/internal/usecase/script"
	"newscast/internal/usecase/summarize"
)

// Collector writes the articles of an episode.
type Collector interface {
	CollectEpisode(ctx context.Context, layout episode.Layout, limit int) (*collect.Stats, error)
}

// Summarizer writes the summaries of an episode.
type Summarizer interface {
	SummarizeEpisode(ctx context.Context, layout episode.Layout, limit int) (*summarize.Stats, error)
}

// AudioGenerator narrates the episode script.
type AudioGenerator interface {
	Generate(ctx context.Context, layout episode.Layout) (string, error)
}

// VideoRenderer combines the narration with slides.
type VideoRenderer interface {
	Render(ctx context.Context, layout episode.Layout) (string, error)
}

// Publisher uploads the rendered video.
type Publisher interface {
	Publish(ctx context.Context, layout episode.Layout) (*youtube.Result, error)
}

// CollectStage adapts a Collector.
func CollectStage(c Collector) StageFunc {
	return func(ctx context.Context, layout episode.Layout, articles int) error {
		_, err := c.CollectEpisode(ctx, layout, articles)
		return err
	}
}

// SummarizeStage adapts a Summarizer.
func SummarizeStage(s Summarizer) StageFunc {
	return func(ctx context.Context, layout episode.Layout, articles int) error {
		_, err := s.SummarizeEpisode(ctx, layout, articles)
		return err
	}
}

// ScriptStage assembles the narration script from the summaries.
func ScriptStage() StageFunc {
	return func(ctx context.Context, layout episode.Layout, articles int) error {
		_, err := script.Write(ctx, layout, articles)
		return err
	}
}

// AudioStage adapts an AudioGenerator.
func AudioStage(g AudioGenerator) StageFunc {
	return func(ctx context.Context, layout episode.Layout, _ int) error {
		path, err := g.Generate(ctx, layout)
		if err != nil {
			return err
		}
		logging.FromContext(ctx).InfoContext(ctx, "audio written", slog.String("path", path))
		return nil
	}
}

// VideoStage adapts a VideoRenderer.
func VideoStage(r VideoRenderer) StageFunc {
	return func(ctx context.Context, layout episode.Layout, _ int) error {
		path, err := r.Render(ctx, layout)
		if err != nil {
			return err
		}
		logging.FromContext(ctx).InfoContext(ctx, "video written", slog.String("path", path))
		return nil
	}
}

// UploadStage adapts a Publisher and announces the published video.
// A failed announcement is logged; the episode is already public.
func UploadStage(p Publisher, n notifier.Notifier, channel string) StageFunc {
	return func(ctx context.Context, layout episode.Layout, _ int) error {
		logger := logging.FromContext(ctx)
		res, err := p.Publish(ctx, layout)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "episode published",
			slog.String("video_id", res.VideoID),
			slog.String("title", res.Title))

		if n == nil {
			return nil
		}
		err = n.NotifyEpisode(ctx, notifier.Announcement{
			Episode:     layout.Episode,
			Title:       res.Title,
			URL:         res.URL,
			Description: res.Summary,
			Channel:     channel,
			PublishedAt: res.UploadedAt,
		})
		if err != nil {
			logger.WarnContext(ctx, "episode announcement failed", slog.Any("error", err))
		}
		return nil
	}
}
