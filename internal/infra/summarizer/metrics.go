package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder records per-request metrics of a remote summarization endpoint.
// One request is one attempt; retries are counted by the caller.
type SummaryMetricsRecorder interface {
	// RecordLength records the length of a returned summary in characters.
	RecordLength(length int)

	// RecordDuration records the time taken by one remote request.
	RecordDuration(duration time.Duration)

	// RecordRequest counts one request by endpoint and result
	// (success, transient, request_error, breaker_open).
	RecordRequest(endpoint, result string)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder using Prometheus metrics.
type PrometheusSummaryMetrics struct {
	lengthHistogram   prometheus.Histogram
	durationHistogram prometheus.Histogram
	requestsCounter   *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateCounterVec gets an existing counter vector or creates a new one if it doesn't exist
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusSummaryMetrics returns the process-wide Prometheus recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "newscast_endpoint_summary_length_characters",
				Help:    "Distribution of summary lengths returned by the endpoint (Unicode runes)",
				Buckets: []float64{50, 100, 200, 300, 500, 700, 1000, 1500},
			}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "newscast_endpoint_request_duration_seconds",
				Help:    "Time taken by one remote summarization request",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}),
			requestsCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "newscast_endpoint_requests_total",
				Help: "Total number of remote summarization requests by result",
			}, []string{"endpoint", "result"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength implements SummaryMetricsRecorder.RecordLength
func (p *PrometheusSummaryMetrics) RecordLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

// RecordDuration implements SummaryMetricsRecorder.RecordDuration
func (p *PrometheusSummaryMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// RecordRequest implements SummaryMetricsRecorder.RecordRequest
func (p *PrometheusSummaryMetrics) RecordRequest(endpoint, result string) {
	p.requestsCounter.WithLabelValues(endpoint, result).Inc()
}
