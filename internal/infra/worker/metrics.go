package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newscast/internal/pkg/config"
)

// WorkerMetrics extends the configuration metrics with scheduled job metrics:
//   - newscast_worker_job_runs_total{status}
//   - newscast_worker_job_duration_seconds
//   - newscast_worker_job_last_success_timestamp
//   - newscast_worker_job_last_episode
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge
	LastEpisode          prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics with the default registerer.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWith registers the worker metrics with reg.
func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newscast",
			Subsystem: "worker",
			Name:      "job_runs_total",
			Help:      "Total number of scheduled episode runs by status (success/failure)",
		}, []string{"status"}),

		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newscast",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled episode runs in seconds",
			Buckets:   []float64{30, 60, 300, 600, 1200, 1800, 3600, 7200},
		}),

		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "newscast",
			Subsystem: "worker",
			Name:      "job_last_success_timestamp",
			Help:      "Unix timestamp of the last successful episode run",
		}),

		LastEpisode: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "newscast",
			Subsystem: "worker",
			Name:      "job_last_episode",
			Help:      "Number of the last episode the worker attempted",
		}),
	}
}

// RecordJob records the status and duration of one run.
func (m *WorkerMetrics) RecordJob(episode int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.JobRunsTotal.WithLabelValues(status).Inc()
	m.JobDurationSeconds.Observe(duration.Seconds())
	m.LastEpisode.Set(float64(episode))
	if err == nil {
		m.LastSuccessTimestamp.SetToCurrentTime()
	}
}
