package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetHard(t *testing.T) {
	assert.Equal(t, 500.0, Budget{Limit: 100, TickLimit: 500}.Hard())
	assert.Equal(t, 100.0, Budget{Limit: 100}.Hard())
}

func TestManualClock(t *testing.T) {
	c := &ManualClock{}
	assert.Equal(t, 0.0, c.Used())

	c.Set(10)
	c.Advance(5)
	assert.Equal(t, 15.0, c.Used())

	c.ResetTurn()
	assert.Equal(t, 0.0, c.Used())
}

func TestWallClock(t *testing.T) {
	now := time.Unix(1000, 0)
	c := &WallClock{start: now, now: func() time.Time { return now }}

	now = now.Add(250 * time.Millisecond)
	assert.InDelta(t, 250.0, c.Used(), 1e-9)

	c.ResetTurn()
	assert.Equal(t, 0.0, c.Used())

	now = now.Add(2 * time.Millisecond)
	assert.InDelta(t, 2.0, c.Used(), 1e-9)
}

func TestProcessClockMonotonic(t *testing.T) {
	c, err := NewProcessClock()
	require.NoError(t, err)

	prev := c.Used()
	for i := 0; i < 1000; i++ {
		_ = make([]byte, 1024)
		cur := c.Used()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}

	c.ResetTurn()
	assert.GreaterOrEqual(t, c.Used(), 0.0)
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind    Kind
		wantErr bool
	}{
		{kind: KindCPU},
		{kind: KindWall},
		{kind: KindManual},
		{kind: "", wantErr: false},
		{kind: "sundial", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, err := New(tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}
