// Package pipeline runs the episode stages in order: collect, summarize,
// script, audio, video and upload. A run stops at the first failing stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newscast/internal/episode"
	"newscast/internal/observability/logging"
	"newscast/internal/observability/metrics"
	"newscast/internal/observability/tracing"
)

// Stage names, in execution order.
const (
	StageCollect   = "collect"
	StageSummarize = "summarize"
	StageScript    = "script"
	StageAudio     = "audio"
	StageVideo     = "video"
	StageUpload    = "upload"
)

// Order is the fixed execution order of all stages.
var Order = []string{StageCollect, StageSummarize, StageScript, StageAudio, StageVideo, StageUpload}

// ErrUnknownStage is returned for a stage name outside Order.
var ErrUnknownStage = errors.New("unknown stage")

// ErrStageNotConfigured is returned when a selected stage has no implementation.
var ErrStageNotConfigured = errors.New("stage not configured")

// StageFunc runs one stage for an episode. articles is the article count
// requested on the command line.
type StageFunc func(ctx context.Context, layout episode.Layout, articles int) error

// Pipeline holds the stage implementations.
type Pipeline struct {
	outputDir string
	stages    map[string]StageFunc
}

// New creates a pipeline writing episodes under outputDir.
func New(outputDir string) *Pipeline {
	return &Pipeline{outputDir: outputDir, stages: make(map[string]StageFunc)}
}

// Register sets the implementation of a stage.
func (p *Pipeline) Register(name string, fn StageFunc) error {
	if !isKnown(name) {
		return fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	p.stages[name] = fn
	return nil
}

// ParseStages turns a comma separated list into stage names in execution order.
// An empty list or "all" selects every stage.
func ParseStages(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return append([]string(nil), Order...), nil
	}

	selected := make(map[string]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !isKnown(name) {
			return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownStage, name, strings.Join(Order, ", "))
		}
		selected[name] = true
	}

	var stages []string
	for _, name := range Order {
		if selected[name] {
			stages = append(stages, name)
		}
	}
	return stages, nil
}

// Result reports the outcome of a run.
type Result struct {
	Episode   int
	RunID     string
	Completed []string
	Failed    string
	Duration  time.Duration
}

// Run creates the episode folders and executes the selected stages in order.
// It returns at the first stage error, wrapped with the stage name.
func (p *Pipeline) Run(ctx context.Context, episodeNumber, articles int, stages []string) (*Result, error) {
	if len(stages) == 0 {
		stages = Order
	}
	for _, name := range stages {
		if !isKnown(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
		}
		if p.stages[name] == nil {
			return nil, fmt.Errorf("%w: %s", ErrStageNotConfigured, name)
		}
	}

	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.FromContext(ctx).With(slog.Int("episode", episodeNumber))
	ctx = logging.WithLogger(ctx, logger)

	layout := episode.NewLayout(p.outputDir, episodeNumber)
	create := layout.CreateOutputs
	if slices.Contains(stages, StageCollect) {
		create = layout.Create
	}
	if err := create(); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "pipeline.run",
		attribute.Int("episode", episodeNumber),
		attribute.Int("articles", articles),
		attribute.StringSlice("stages", stages))

	start := time.Now()
	result := &Result{Episode: episodeNumber, RunID: runID}
	logger.InfoContext(ctx, "starting episode",
		slog.Int("articles", articles),
		slog.String("stages", strings.Join(stages, ",")),
		slog.String("folder", layout.Dir()))

	for _, name := range stages {
		stageStart := time.Now()
		logger.InfoContext(ctx, "stage started", slog.String("stage", name))

		stageCtx, stageSpan := tracing.StartSpan(ctx, "stage."+name)
		err := p.stages[name](stageCtx, layout, articles)
		tracing.EndSpan(stageSpan, err)
		metrics.RecordStage(name, time.Since(stageStart), err)

		if err != nil {
			result.Failed = name
			result.Duration = time.Since(start)
			metrics.RecordEpisode(false)
			tracing.EndSpan(span, err)
			logger.ErrorContext(ctx, "stage failed, stopping",
				slog.String("stage", name),
				slog.Duration("duration", time.Since(stageStart)),
				slog.Any("error", err))
			return result, fmt.Errorf("stage %s: %w", name, err)
		}

		result.Completed = append(result.Completed, name)
		logger.InfoContext(ctx, "stage completed",
			slog.String("stage", name),
			slog.Duration("duration", time.Since(stageStart)))
	}

	result.Duration = time.Since(start)
	metrics.RecordEpisode(true)
	tracing.EndSpan(span, nil)
	logger.InfoContext(ctx, "episode completed", slog.Duration("duration", result.Duration))
	return result, nil
}

func isKnown(name string) bool {
	return slices.Contains(Order, name)
}
