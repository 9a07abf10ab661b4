// Package report provides the sinks trace reports are written to.
//
// A report is one JSON object per flush. WriterSink prints it as a single
// line (console-style output), FileSink stores one file per report named
// by a sortable ID, LogSink embeds it in a zap entry, and Multi fans out.
// Breaker wraps a sink that may fail persistently so a broken disk does not
// cost a failed write on every turn.
package report
