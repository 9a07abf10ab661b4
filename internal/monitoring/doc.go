// Package monitoring exports tracer activity as Prometheus metrics.
//
// Metrics implements profiler.Observer, so attaching it to a tracer is
// enough to count turns, reports by reason, and the distribution of
// per-turn usage against the limit.
//
// Metric names:
//   - tickprof_turns_total
//   - tickprof_reports_total{reason}
//   - tickprof_panic_flushes_total
//   - tickprof_turn_usage_ms
//   - tickprof_turn_usage_ratio
//   - tickprof_turn_events
//   - tickprof_last_turn_usage_ms
package monitoring
