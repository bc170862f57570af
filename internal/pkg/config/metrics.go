package config

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks configuration loads and fallbacks of one component.
//
// Metrics (subsystem omitted when empty):
//   - newscast_{subsystem}_config_load_timestamp
//   - newscast_{subsystem}_config_validation_errors_total{field}
//   - newscast_{subsystem}_config_fallbacks_total{field}
//   - newscast_{subsystem}_config_fallback_active
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge
}

// NewConfigMetrics registers the metrics of subsystem with the default registerer.
// Registering the same subsystem twice panics.
func NewConfigMetrics(subsystem string) *ConfigMetrics {
	return NewConfigMetricsWith(prometheus.DefaultRegisterer, subsystem)
}

// NewConfigMetricsWith registers the metrics with reg.
func NewConfigMetricsWith(reg prometheus.Registerer, subsystem string) *ConfigMetrics {
	factory := promauto.With(reg)
	return &ConfigMetrics{
		LoadTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "newscast",
			Subsystem: subsystem,
			Name:      "config_load_timestamp",
			Help:      "Unix timestamp of the last configuration load",
		}),
		ValidationErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newscast",
			Subsystem: subsystem,
			Name:      "config_validation_errors_total",
			Help:      "Total number of configuration validation errors by field",
		}, []string{"field"}),
		FallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newscast",
			Subsystem: subsystem,
			Name:      "config_fallbacks_total",
			Help:      "Total number of configuration fallbacks by field",
		}, []string{"field", "type"}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "newscast",
			Subsystem: subsystem,
			Name:      "config_fallback_active",
			Help:      "1 if the last configuration load used any fallback, 0 otherwise",
		}),
	}
}

// RecordLoadTimestamp sets the load timestamp to now.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.Set(float64(time.Now().Unix()))
}

// RecordValidationError counts a rejected value of field.
func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback counts a fallback of field; fallbackType is usually "default".
func (m *ConfigMetrics) RecordFallback(field, fallbackType string) {
	m.FallbacksTotal.WithLabelValues(field, fallbackType).Inc()
}

// SetFallbackActive sets the fallback gauge.
func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
