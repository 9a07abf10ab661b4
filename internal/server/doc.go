// Package server exposes a running tracer over HTTP.
//
// Routes:
//
//	GET  /health   liveness
//	GET  /metrics  Prometheus exposition
//	GET  /state    tracer state, thresholds and running totals
//	GET  /report   the current turn buffer as a Chrome trace
//	POST /report   request a report at the end of the current turn
//
// CORS is enabled so browser trace viewers can fetch /report directly.
// POST /report is rate limited.
package server
