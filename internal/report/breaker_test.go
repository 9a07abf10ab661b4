package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flakySink struct {
	fail   bool
	writes int
}

func (s *flakySink) WriteReport([]byte) error {
	s.writes++
	if s.fail {
		return errors.New("disk full")
	}
	return nil
}

func TestBreakerTransitions(t *testing.T) {
	sink := &flakySink{fail: true}
	now := time.Unix(0, 0)
	b := NewBreaker("files", sink, BreakerSettings{Failures: 2, Cooldown: time.Minute}, nil)
	b.now = func() time.Time { return now }

	assert.Error(t, b.WriteReport([]byte("{}")))
	assert.Equal(t, BreakerClosed, b.State())
	assert.Error(t, b.WriteReport([]byte("{}")))
	assert.Equal(t, BreakerOpen, b.State())

	// open: the sink is not called
	assert.ErrorIs(t, b.WriteReport([]byte("{}")), ErrSinkOpen)
	assert.Equal(t, 2, sink.writes)
	assert.Equal(t, 1, b.Skipped())

	// cooldown over, trial write fails and reopens
	now = now.Add(time.Minute)
	assert.Equal(t, BreakerHalfOpen, b.State())
	assert.Error(t, b.WriteReport([]byte("{}")))
	assert.Equal(t, BreakerOpen, b.State())
	assert.Equal(t, 3, sink.writes)

	// next trial succeeds and closes
	now = now.Add(time.Minute)
	sink.fail = false
	assert.NoError(t, b.WriteReport([]byte("{}")))
	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, 4, sink.writes)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	sink := &flakySink{}
	b := NewBreaker("files", sink, BreakerSettings{Failures: 2}, nil)

	sink.fail = true
	assert.Error(t, b.WriteReport(nil))
	sink.fail = false
	assert.NoError(t, b.WriteReport(nil))
	sink.fail = true
	assert.Error(t, b.WriteReport(nil))

	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerStateString(t *testing.T) {
	assert.Equal(t, "closed", BreakerClosed.String())
	assert.Equal(t, "half-open", BreakerHalfOpen.String())
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "unknown", BreakerState(9).String())
}
