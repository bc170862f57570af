// Package youtube publishes finished episodes to a YouTube channel through the
// Data API v3 and generates their titles and descriptions.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"newscast/internal/episode"
	"newscast/internal/observability/logging"
)

// ErrQuotaExceeded is returned when the project has used its daily API quota.
var ErrQuotaExceeded = errors.New("youtube API quota exceeded")

// ErrVideoNotFound is returned when the episode video has not been rendered.
var ErrVideoNotFound = errors.New("video file not found")

// UploadConfig holds the per-channel upload settings.
type UploadConfig struct {
	Channel    string
	PlaylistID string
	CategoryID string
	Privacy    string
}

// DefaultUploadConfig returns public uploads in the People & Blogs category.
func DefaultUploadConfig(channel string) UploadConfig {
	return UploadConfig{
		Channel:    channel,
		CategoryID: "22",
		Privacy:    "public",
	}
}

// Result describes a finished upload.
type Result struct {
	VideoID    string    `json:"video_id"`
	URL        string    `json:"video_url"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	Playlist   string    `json:"playlist_id,omitempty"`
	VideoFile  string    `json:"video_file"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Uploader publishes episodes.
type Uploader struct {
	service    *youtube.Service
	summarizer Summarizer
	config     UploadConfig
}

// NewUploader creates an Uploader on an authenticated service.
func NewUploader(service *youtube.Service, summarizer Summarizer, config UploadConfig) *Uploader {
	if config.CategoryID == "" {
		config.CategoryID = "22"
	}
	if config.Privacy == "" {
		config.Privacy = "public"
	}
	return &Uploader{service: service, summarizer: summarizer, config: config}
}

// Publish generates the metadata from the episode script, uploads
// video/episode<N>.mp4, adds it to the configured playlist and writes
// video/upload.json.
func (u *Uploader) Publish(ctx context.Context, layout episode.Layout) (*Result, error) {
	logger := logging.FromContext(ctx)

	script, err := episode.ReadScript(layout.ScriptPath())
	if err != nil {
		return nil, err
	}

	videoPath := layout.VideoPath()
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("%w at %s: %v", ErrVideoNotFound, videoPath, err)
	}

	meta := GenerateMetadata(ctx, u.summarizer, u.config.Channel, layout.Episode, script)
	logger.InfoContext(ctx, "generated video metadata",
		slog.String("title", meta.Title),
		slog.Bool("generated", meta.Generated))

	videoID, err := u.upload(ctx, meta, videoPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		VideoID:    videoID,
		URL:        "https://youtu.be/" + videoID,
		Title:      meta.Title,
		Summary:    meta.Description,
		VideoFile:  videoPath,
		UploadedAt: time.Now().UTC(),
	}
	logger.InfoContext(ctx, "video uploaded successfully",
		slog.String("video_id", videoID),
		slog.String("url", result.URL))

	if u.config.PlaylistID != "" {
		if err := u.addToPlaylist(ctx, videoID); err != nil {
			logger.ErrorContext(ctx, "failed to add video to playlist",
				slog.String("playlist_id", u.config.PlaylistID),
				slog.Any("error", err))
		} else {
			result.Playlist = u.config.PlaylistID
		}
	}

	if err := writeUploadLog(filepath.Join(layout.VideoDir(), "upload.json"), result); err != nil {
		logger.WarnContext(ctx, "failed to write upload log", slog.Any("error", err))
	}
	return result, nil
}

func (u *Uploader) upload(ctx context.Context, meta Metadata, videoPath string) (string, error) {
	f, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			CategoryId:  u.config.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: u.config.Privacy,
		},
	}

	uploaded, err := u.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		if isQuotaExceeded(err) {
			logging.FromContext(ctx).ErrorContext(ctx,
				"YouTube API quota exceeded, wait for the daily reset or use a different project")
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("youtube upload: %w", err)
	}
	return uploaded.Id, nil
}

func (u *Uploader) addToPlaylist(ctx context.Context, videoID string) error {
	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: u.config.PlaylistID,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}
	_, err := u.service.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	return err
}

func isQuotaExceeded(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != 403 {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "quotaExceeded" {
			return true
		}
	}
	return strings.Contains(apiErr.Error(), "quotaExceeded")
}

func writeUploadLog(path string, r *Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
