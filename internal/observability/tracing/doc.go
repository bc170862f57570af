// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global otel TracerProvider; without a configured
// provider they are no-ops. The summarization use case opens one span per article,
// per chunk call and per combine call, and the worker wraps its HTTP endpoints with
// Middleware.
//
// Example usage:
//
//	ctx, span := tracing.StartSpan(ctx, "summarize.article",
//	    attribute.Int("article.index", i))
//	defer tracing.EndSpan(span, err)
package tracing
