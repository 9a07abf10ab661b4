package usage

import (
	"fmt"
	"os"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessClock reports CPU time consumed by this process since the last
// turn reset.
type ProcessClock struct {
	proc *process.Process

	mu   sync.Mutex
	base float64
	last float64
}

// NewProcessClock attaches to the current process.
func NewProcessClock() (*ProcessClock, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}

	c := &ProcessClock{proc: proc}
	c.ResetTurn()
	return c, nil
}

// Used returns CPU milliseconds since the turn started. Readings never go
// backwards: a failed sample repeats the previous value.
func (c *ProcessClock) Used() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total, ok := c.sample()
	if !ok {
		return c.last
	}
	if used := total - c.base; used > c.last {
		c.last = used
	}
	return c.last
}

// ResetTurn makes the current CPU total the new zero.
func (c *ProcessClock) ResetTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if total, ok := c.sample(); ok {
		c.base = total
	}
	c.last = 0
}

func (c *ProcessClock) sample() (float64, bool) {
	times, err := c.proc.Times()
	if err != nil {
		return 0, false
	}
	return (times.User + times.System) * 1000, true
}
