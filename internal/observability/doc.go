// Package observability provides the logging, metrics and tracing infrastructure
// shared by the pipeline stages.
//
// Subpackages:
//   - logging: slog constructors, run IDs and context propagation
//   - metrics: Prometheus registry and recorders for stages and summarization
//   - tracing: OpenTelemetry tracer and HTTP middleware
package observability
