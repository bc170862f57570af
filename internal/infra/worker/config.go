// Package worker holds the scheduling configuration, metrics and health probes
// of the episode worker.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newscast/internal/pkg/config"
)

// WorkerConfig controls when episodes are produced and how the worker is probed.
type WorkerConfig struct {
	// CronSchedule is a five field cron expression. Default: "0 6 * * *".
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in. Default: "UTC".
	Timezone string

	// EpisodeTimeout bounds one full pipeline run (1m to 6h). Default: 2h.
	EpisodeTimeout time.Duration

	// HealthPort serves /health and /health/ready (1024 to 65535). Default: 9091.
	HealthPort int

	// MetricsPort serves /metrics (1024 to 65535). Default: 9090.
	MetricsPort int

	// RunOnStart produces one episode immediately after startup.
	RunOnStart bool
}

// DefaultConfig returns a daily 06:00 UTC schedule.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:   "0 6 * * *",
		Timezone:       "UTC",
		EpisodeTimeout: 2 * time.Hour,
		HealthPort:     9091,
		MetricsPort:    9090,
		RunOnStart:     false,
	}
}

// Validate aggregates every invalid field.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validateEpisodeTimeout(c.EpisodeTimeout); err != nil {
		errs = append(errs, fmt.Errorf("episode timeout: %w", err))
	}
	if err := validatePort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := validatePort(c.MetricsPort); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort))
	}

	return errors.Join(errs...)
}

// Location loads the configured timezone.
func (c *WorkerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func validateEpisodeTimeout(d time.Duration) error {
	return config.ValidateDuration(d, time.Minute, 6*time.Hour)
}

func validatePort(p int) error {
	return config.ValidateIntRange(p, 1024, 65535)
}

// LoadConfigFromEnv reads CRON_SCHEDULE, WORKER_TIMEZONE, EPISODE_TIMEOUT,
// WORKER_HEALTH_PORT, METRICS_PORT and WORKER_RUN_ON_START. Invalid values
// fall back to their defaults with a warning, so the returned configuration
// is always usable.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()

	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	l := config.NewLoader(logger, cm)

	cfg.CronSchedule = config.Apply(l, "cron_schedule",
		config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.Timezone = config.Apply(l, "timezone",
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.EpisodeTimeout = config.Apply(l, "episode_timeout",
		config.LoadEnvDuration("EPISODE_TIMEOUT", cfg.EpisodeTimeout, validateEpisodeTimeout))
	cfg.HealthPort = config.Apply(l, "health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, validatePort))
	cfg.MetricsPort = config.Apply(l, "metrics_port",
		config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, validatePort))
	cfg.RunOnStart = config.Apply(l, "run_on_start",
		config.LoadEnvBool("WORKER_RUN_ON_START", cfg.RunOnStart))

	l.Finish()
	return &cfg
}
