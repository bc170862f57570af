// Package video renders the episode slideshow: keyword slides over the
// narration audio, encoded by ffmpeg.
package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"newscast/internal/episode"
	"newscast/internal/infra/command"
	"newscast/internal/observability/logging"
)

// ErrNoAudio is returned when the narration has no measurable duration.
var ErrNoAudio = errors.New("audio duration is zero")

// Config controls the slideshow.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	// Slides is the number of images shown, each for an equal share of the audio.
	Slides int
	// Keywords is how many of the most frequent script words are candidates.
	Keywords int
	FPS      int
	// Seed fixes the slide colours and keyword picks; zero uses a time seed.
	Seed uint64
}

// DefaultConfig returns ten slides picked from five keywords at 24 fps.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Slides:      10,
		Keywords:    5,
		FPS:         24,
	}
}

// Renderer produces video/episode<N>.mp4.
type Renderer struct {
	config Config
	runner command.Runner
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithRunner replaces the command runner.
func WithRunner(r command.Runner) Option {
	return func(v *Renderer) { v.runner = r }
}

// New creates a Renderer.
func New(config Config, opts ...Option) *Renderer {
	def := DefaultConfig()
	if config.FFmpegPath == "" {
		config.FFmpegPath = def.FFmpegPath
	}
	if config.FFprobePath == "" {
		config.FFprobePath = def.FFprobePath
	}
	if config.Slides < 1 {
		config.Slides = def.Slides
	}
	if config.Keywords < 1 {
		config.Keywords = def.Keywords
	}
	if config.FPS < 1 {
		config.FPS = def.FPS
	}
	r := &Renderer{config: config, runner: command.ExecRunner{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the slideshow for the episode from its script and audio.
func (r *Renderer) Render(ctx context.Context, layout episode.Layout) (string, error) {
	logger := logging.FromContext(ctx)

	script, err := episode.ReadScript(layout.ScriptPath())
	if err != nil {
		return "", err
	}
	audio := layout.AudioPath()
	if _, err := os.Stat(audio); err != nil {
		return "", fmt.Errorf("audio file: %w", err)
	}

	duration, err := r.audioDuration(ctx, audio)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(layout.VideoDir(), 0o755); err != nil {
		return "", fmt.Errorf("create video folder: %w", err)
	}

	keywords := Keywords(script, r.config.Keywords)
	logger.InfoContext(ctx, "extracted keywords", slog.Any("keywords", keywords))

	slides, err := generateSlides(keywords, r.config.Slides, r.rng(), layout.SlidePath)
	if err != nil {
		return "", err
	}

	perSlide := duration / time.Duration(len(slides))
	listPath := filepath.Join(layout.VideoDir(), "slides.txt")
	if err := writeConcatList(listPath, slides, perSlide); err != nil {
		return "", err
	}

	out := layout.VideoPath()
	args := []string{
		"-y",
		"-f", "concat", "-safe", "0", "-i", listPath,
		"-i", audio,
		"-c:v", "libx264", "-r", strconv.Itoa(r.config.FPS), "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		out,
	}
	if _, err := r.runner.Run(ctx, r.config.FFmpegPath, args...); err != nil {
		return "", fmt.Errorf("ffmpeg slideshow: %w", err)
	}

	logger.InfoContext(ctx, "converted audio to video",
		slog.String("audio", audio),
		slog.String("video", out),
		slog.Int("slides", len(slides)),
		slog.Duration("duration", duration))
	return out, nil
}

func (r *Renderer) rng() *rand.Rand {
	seed := r.config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// audioDuration asks ffprobe for the container duration.
func (r *Renderer) audioDuration(ctx context.Context, path string) (time.Duration, error) {
	out, err := r.runner.Run(ctx, r.config.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse audio duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	if seconds <= 0 {
		return 0, ErrNoAudio
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// writeConcatList writes an ffmpeg concat demuxer script showing each slide for
// perSlide. The last entry is repeated so its duration is honoured.
func writeConcatList(path string, slides []Slide, perSlide time.Duration) error {
	var b strings.Builder
	for _, s := range slides {
		abs, err := filepath.Abs(s.Path)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "file '%s'\nduration %.3f\n", escapeQuote(abs), perSlide.Seconds())
	}
	if n := len(slides); n > 0 {
		abs, err := filepath.Abs(slides[n-1].Path)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "file '%s'\n", escapeQuote(abs))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

func escapeQuote(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}
