// Package logging provides structured logging utilities with context propagation.
//
// Services log JSON to stdout; command line tools log text to stderr so that
// stdout stays free for results. Every episode run carries a run ID that is
// attached to the context logger.
//
// Example usage:
//
//	logger := logging.NewTextLogger()
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRunID(ctx, logging.NewRunID())
//	logging.FromContext(ctx).Info("episode started", slog.Int("episode", n))
package logging
