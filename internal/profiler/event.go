package profiler

import (
	"github.com/bytedance/sonic"
)

// FrameName labels the synthetic span covering a whole turn.
const FrameName = "Frame"

// CategoryFunction is the only category the tracer records.
const CategoryFunction = "Function"

// Phase marks an event as the beginning or end of a span.
type Phase string

const (
	PhaseBegin Phase = "B"
	PhaseEnd   Phase = "E"
)

// Event is one span marker in a trace.
type Event struct {
	Name string         `json:"name"`
	Cat  string         `json:"cat"`
	Ph   Phase          `json:"ph"`
	Ts   float64        `json:"ts"`
	Pid  int            `json:"pid"`
	Tid  int            `json:"tid"`
	Args map[string]any `json:"args,omitempty"`
}

func newEvent(name string, ph Phase, timestamp float64) Event {
	return Event{
		Name: name,
		Cat:  CategoryFunction,
		Ph:   ph,
		Ts:   timestamp * 1000,
	}
}

// Report is the serialized form of a turn's buffer.
type Report struct {
	TraceEvents []Event `json:"traceEvents"`
}

// reportAPI does not escape HTML so names serialize the way trace viewers
// expect; map keys in args are sorted for stable output. Invalid UTF-8 in
// names becomes U+FFFD so a report is always valid JSON.
var reportAPI = sonic.Config{SortMapKeys: true, ValidateString: true}.Froze()

// Marshal encodes the report as a single JSON object.
func (r Report) Marshal() ([]byte, error) {
	if r.TraceEvents == nil {
		r.TraceEvents = []Event{}
	}
	return reportAPI.Marshal(r)
}

// ParseReport decodes a report produced by Marshal.
func ParseReport(data []byte) (Report, error) {
	var r Report
	err := reportAPI.Unmarshal(data, &r)
	return r, err
}
