// Package tts turns the podcast script into narration audio by calling an
// external text-to-speech program.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newscast/internal/episode"
	"newscast/internal/infra/command"
	"newscast/internal/observability/logging"
	"newscast/internal/resilience/retry"
)

// DefaultCommand is the gTTS command line tool.
const DefaultCommand = "gtts-cli"

// ErrEmptyScript is returned when the script holds no text to narrate.
var ErrEmptyScript = errors.New("podcast script is empty")

// Config selects the TTS program.
type Config struct {
	// Command is gtts-cli, edge-tts or any program accepting --file and --output.
	Command string
	// Lang is the gtts-cli language code.
	Lang string
	// Voice is the edge-tts voice name.
	Voice string
	// Timeout bounds a single synthesis attempt.
	Timeout time.Duration
}

// DefaultConfig returns gtts-cli in English.
func DefaultConfig() Config {
	return Config{
		Command: DefaultCommand,
		Lang:    "en",
		Voice:   "en-US-GuyNeural",
		Timeout: 10 * time.Minute,
	}
}

// Generator synthesizes episode audio.
type Generator struct {
	config Config
	runner command.Runner
	retry  retry.Config
	clock  retry.Clock
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRunner replaces the command runner.
func WithRunner(r command.Runner) Option {
	return func(g *Generator) { g.runner = r }
}

// WithClock sets the clock used between attempts.
func WithClock(c retry.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// New creates a Generator.
func New(config Config, opts ...Option) *Generator {
	if config.Command == "" {
		config.Command = DefaultCommand
	}
	if config.Lang == "" {
		config.Lang = "en"
	}
	g := &Generator{
		config: config,
		runner: command.ExecRunner{},
		retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			Multiplier:   2.0,
		},
		clock: retry.RealClock(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate reads scripts/podcast_script.txt and writes audio/episode<N>.mp3.
// A failed synthesis is retried twice before the error is returned.
func (g *Generator) Generate(ctx context.Context, layout episode.Layout) (string, error) {
	logger := logging.FromContext(ctx)
	scriptPath := layout.ScriptPath()

	text, err := episode.ReadScript(scriptPath)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyScript
	}

	out := layout.AudioPath()
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create audio folder: %w", err)
	}

	name, args := g.commandLine(scriptPath, out)
	logger.InfoContext(ctx, "generating audio",
		slog.String("command", name),
		slog.String("output", out))

	attempts, err := retry.Run(ctx, g.retry, g.clock, isRetryable, func(int) error {
		runCtx := ctx
		if g.config.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, g.config.Timeout)
			defer cancel()
		}
		_, err := g.runner.Run(runCtx, name, args...)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("text to speech: %w", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return "", fmt.Errorf("audio file missing after %s: %w", name, err)
	}
	logger.InfoContext(ctx, "audio file saved",
		slog.String("path", out),
		slog.Int64("bytes", info.Size()),
		slog.Int("attempts", attempts))
	return out, nil
}

func (g *Generator) commandLine(scriptPath, out string) (string, []string) {
	name := strings.TrimSpace(g.config.Command)
	switch filepath.Base(name) {
	case "gtts-cli":
		return name, []string{"--file", scriptPath, "--lang", g.config.Lang, "--output", out}
	case "edge-tts":
		args := []string{"--file", scriptPath, "--write-media", out}
		if g.config.Voice != "" {
			args = append(args, "--voice", g.config.Voice)
		}
		return name, args
	}
	if strings.HasSuffix(name, ".py") {
		return "python3", []string{name, "--file", scriptPath, "--output", out}
	}
	return name, []string{"--file", scriptPath, "--output", out}
}

// isRetryable retries every failure except a canceled context.
func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled)
}
