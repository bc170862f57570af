// Command worker produces an episode on a cron schedule and exposes
// Prometheus metrics and health probes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"newscast/internal/app"
	"newscast/internal/config"
	"newscast/internal/episode"
	workerPkg "newscast/internal/infra/worker"
	"newscast/internal/observability/logging"
	"newscast/internal/observability/tracing"
	"newscast/internal/pipeline"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("episode_timeout", workerConfig.EpisodeTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	cfg, err := config.Load(os.Getenv("NEWSCAST_CONFIG"), logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	p, err := app.BuildPipeline(cfg)
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	var serversDone sync.WaitGroup
	serve := func(name string, fn func() error) {
		serversDone.Add(1)
		go func() {
			defer serversDone.Done()
			if err := fn(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(name+" server failed", slog.Any("error", err))
			}
		}()
	}

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	serve("metrics", func() error { return serveMetrics(ctx, logger, fmt.Sprintf(":%d", workerConfig.MetricsPort)) })
	serve("health", func() error { return healthServer.Start(ctx, tracing.Middleware) })

	job := &episodeJob{
		logger:   logger,
		pipeline: p,
		cfg:      cfg,
		timeout:  workerConfig.EpisodeTimeout,
		metrics:  workerMetrics,
		health:   healthServer,
		baseCtx:  ctx,
	}

	if err := runCronWorker(ctx, logger, workerConfig, job, healthServer); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		stop()
		serversDone.Wait()
		os.Exit(1)
	}
	serversDone.Wait()
}

// runCronWorker schedules the episode job and blocks until ctx is canceled.
// Overlapping runs are skipped.
func runCronWorker(ctx context.Context, logger *slog.Logger, cfg *workerPkg.WorkerConfig, job *episodeJob, health *workerPkg.HealthServer) error {
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddJob(cfg.CronSchedule, job); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()

	health.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", loc.String()))

	if cfg.RunOnStart {
		go job.Run()
	}

	<-ctx.Done()
	health.SetReady(false)
	logger.Info("worker shutting down, waiting for the running episode")
	<-c.Stop().Done()
	return nil
}

// episodeJob produces the next episode with every stage.
type episodeJob struct {
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	cfg      *config.Config
	timeout  time.Duration
	metrics  *workerPkg.WorkerMetrics
	health   *workerPkg.HealthServer
	baseCtx  context.Context

	mu sync.Mutex
}

// Run implements cron.Job.
func (j *episodeJob) Run() {
	j.mu.Lock()
	defer j.mu.Unlock()

	start := time.Now()
	number, err := episode.NextEpisode(j.cfg.OutputDir)
	if err != nil {
		j.logger.Error("cannot determine next episode", slog.Any("error", err))
		j.metrics.RecordJob(0, time.Since(start), err)
		return
	}

	ctx, cancel := context.WithTimeout(j.baseCtx, j.timeout)
	defer cancel()
	ctx = logging.WithRunID(logging.WithLogger(ctx, j.logger), logging.NewRunID())

	j.logger.Info("episode job started", slog.Int("episode", number))
	res, err := j.pipeline.Run(ctx, number, j.cfg.Articles, nil)
	duration := time.Since(start)

	j.metrics.RecordJob(number, duration, err)
	j.health.RecordRun(number, duration, err)
	if err != nil {
		j.logger.Error("episode job failed",
			slog.Int("episode", number),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}
	j.logger.Info("episode job completed",
		slog.Int("episode", number),
		slog.Int("stages", len(res.Completed)),
		slog.Duration("duration", duration))
}
