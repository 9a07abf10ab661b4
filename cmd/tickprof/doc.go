// Command tickprof runs a turn-based JavaScript program under the call
// tracer and emits Chrome trace reports.
//
// Configuration:
//   - Environment variables (see internal/config)
//   - A TOML or YAML file given with --config
//   - CLI flags (override both)
//
// Usage:
//
//	# Run ten turns, dump a trace whenever a turn uses 90% of its budget
//	tickprof run main.js --turns 10 --long-ratio 0.9
//
//	# Keep the status server up after the run
//	tickprof run main.js --serve --hold
//
// Signals:
//   - SIGINT, SIGTERM: stop after the current turn
package main
