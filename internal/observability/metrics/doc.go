// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the business metrics of the pipeline:
//   - Collection metrics (headlines, content extraction)
//   - Summarization metrics (calls, attempts, fallbacks, chunks)
//   - Stage and episode metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the worker's /metrics endpoint.
//
// Example usage:
//
//	import "newscast/internal/observability/metrics"
//
//	func runStage(name string) {
//	    start := time.Now()
//	    err := do()
//	    metrics.RecordStage(name, time.Since(start), err)
//	}
package metrics
