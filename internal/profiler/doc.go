/*
Package profiler records nested begin/end span events against a per-turn
resource-usage clock and decides when to emit them as a trace report.

# Overview

A host runs discrete turns, each with its own usage budget. At the start of
a turn the tracer clears its buffer and opens a synthetic "Frame" span; at
the end it closes the span and flushes a report when one was requested or
when usage crossed the configured long-turn ratio. An emergency flush fires
at most once per turn when usage approaches the hard limit, so a partial
trace survives even if the host kills the turn.

# Enable scopes

Tracing is gated by counters rather than a boolean. PushEnabled/PopEnabled
nest freely; any outstanding PushDisabled suppresses tracing below it. The
counters are not bounds-checked. Enable and Disable return a release func
for callers that want the push and pop tied together with defer.

# Usage

	mem := &profiler.Memory{}
	tracer := profiler.New(mem, clock,
		profiler.WithBudget(usage.Budget{Limit: 20, TickLimit: 500}),
		profiler.WithSink(report.NewWriterSink(os.Stdout)),
		profiler.WithLogger(logger),
	)
	tracer.SetLongTickRatio(0.9)

	tracer.Tick(func() {
		tracer.Scope("plan", plan)
	})

# Report Format

	{"traceEvents":[{"name":"Frame","cat":"Function","ph":"B","ts":0,"pid":0,"tid":0}, ...]}

Timestamps are clock readings multiplied by 1000.
*/
package profiler
