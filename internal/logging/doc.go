// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON lines on stderr
//   - Development: colored console output
//
// Diagnostic notices from the tracer (threshold dumps, emergency flushes,
// skipped callables) and script console output are written through this
// logger. Trace reports are not: they go to a report sink.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	logger.Component("profiler").Info("turn finished", zap.Float64("used_ms", 12.5))
package logging
