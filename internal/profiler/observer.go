package profiler

// ReportSink receives serialized reports.
type ReportSink interface {
	WriteReport(data []byte) error
}

// FlushReason says why a report was emitted.
type FlushReason string

const (
	ReasonRequested FlushReason = "requested"
	ReasonLongTick  FlushReason = "long_tick"
	ReasonPanic     FlushReason = "panic"
)

// TurnStats summarizes a finished turn.
type TurnStats struct {
	Used   float64
	Limit  float64
	Events int
}

// Observer is notified of tracer lifecycle events.
type Observer interface {
	TurnStarted()
	TurnEnded(stats TurnStats)
	ReportFlushed(reason FlushReason, events int)
}

type nopObserver struct{}

func (nopObserver) TurnStarted()                   {}
func (nopObserver) TurnEnded(TurnStats)            {}
func (nopObserver) ReportFlushed(FlushReason, int) {}
