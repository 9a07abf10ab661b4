package profiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMarshalShape(t *testing.T) {
	rep := Report{TraceEvents: []Event{
		newEvent("Frame", PhaseBegin, 0),
		newEvent("room.run:get", PhaseEnd, 15),
	}}

	data, err := rep.Marshal()
	require.NoError(t, err)

	want := `{"traceEvents":[` +
		`{"name":"Frame","cat":"Function","ph":"B","ts":0,"pid":0,"tid":0},` +
		`{"name":"room.run:get","cat":"Function","ph":"E","ts":15000,"pid":0,"tid":0}` +
		`]}`
	assert.Equal(t, want, string(data))
}

func TestReportMarshalEmpty(t *testing.T) {
	data, err := Report{}.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{"traceEvents":[]}`, string(data))
}

func TestReportArgsIncludedWhenPresent(t *testing.T) {
	e := newEvent("spawn", PhaseBegin, 1)
	e.Args = map[string]any{"room": "W1N1", "body": 3}

	data, err := Report{TraceEvents: []Event{e}}.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"args":{"body":3,"room":"W1N1"}`)

	back, err := ParseReport(data)
	require.NoError(t, err)
	require.Len(t, back.TraceEvents, 1)
	assert.Equal(t, "W1N1", back.TraceEvents[0].Args["room"])
}

func TestReportMarshalReplacesInvalidUTF8(t *testing.T) {
	rep := Report{TraceEvents: []Event{newEvent("a\xffb", PhaseBegin, 1)}}

	data, err := rep.Marshal()
	require.NoError(t, err)
	assert.True(t, json.Valid(data), "report must be valid JSON: %q", data)

	parsed, err := ParseReport(data)
	require.NoError(t, err)
	require.Len(t, parsed.TraceEvents, 1)
	assert.Equal(t, "a\ufffdb", parsed.TraceEvents[0].Name)
}
