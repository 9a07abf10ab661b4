package profiler

// Memory is the turn state the host persists between turns. The tracer
// owns it for the duration of a turn and never keeps a copy elsewhere.
type Memory struct {
	Started        bool     `json:"started"`
	Completed      bool     `json:"completed"`
	LongTickRatio  *float64 `json:"longTickRatio,omitempty"`
	PanicTickRatio *float64 `json:"panicTickRatio,omitempty"`
	TraceEvents    []Event  `json:"traceEvents"`
}
