package usage

import (
	"fmt"
	"sync"
	"time"
)

// Clock reports the budget consumed by the current turn, in milliseconds.
type Clock interface {
	Used() float64
}

// TurnResetter is implemented by clocks that restart at turn boundaries.
type TurnResetter interface {
	ResetTurn()
}

// Budget holds the numeric limits a turn runs under.
type Budget struct {
	// Limit is the normal per-turn allowance.
	Limit float64
	// TickLimit is the hard ceiling before the host kills the turn.
	TickLimit float64
}

// Hard returns the ceiling used for emergency checks.
func (b Budget) Hard() float64 {
	if b.TickLimit > 0 {
		return b.TickLimit
	}
	return b.Limit
}

// Kind names a clock implementation.
type Kind string

const (
	KindCPU    Kind = "cpu"
	KindWall   Kind = "wall"
	KindManual Kind = "manual"
)

// New builds a clock by kind.
func New(kind Kind) (Clock, error) {
	switch kind {
	case KindCPU, "":
		return NewProcessClock()
	case KindWall:
		return NewWallClock(), nil
	case KindManual:
		return &ManualClock{}, nil
	default:
		return nil, fmt.Errorf("unknown clock kind %q", kind)
	}
}

// WallClock measures wall time elapsed since the last turn reset.
type WallClock struct {
	mu    sync.Mutex
	start time.Time
	now   func() time.Time
}

// NewWallClock creates a wall clock started now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now(), now: time.Now}
}

// Used returns milliseconds since the turn started.
func (c *WallClock) Used() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.now().Sub(c.start)) / float64(time.Millisecond)
}

// ResetTurn restarts the clock at zero.
func (c *WallClock) ResetTurn() {
	c.mu.Lock()
	c.start = c.now()
	c.mu.Unlock()
}

// ManualClock returns whatever the caller last set.
type ManualClock struct {
	mu   sync.Mutex
	used float64
}

// Used returns the current reading.
func (c *ManualClock) Used() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Set moves the reading to v.
func (c *ManualClock) Set(v float64) {
	c.mu.Lock()
	c.used = v
	c.mu.Unlock()
}

// Advance adds d to the reading.
func (c *ManualClock) Advance(d float64) {
	c.mu.Lock()
	c.used += d
	c.mu.Unlock()
}

// ResetTurn sets the reading back to zero.
func (c *ManualClock) ResetTurn() {
	c.Set(0)
}
