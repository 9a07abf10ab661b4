package report

import (
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"go.uber.org/zap"
)

// ErrSinkOpen is returned while a guarded sink is skipping writes.
var ErrSinkOpen = errors.New("report sink is open after repeated failures")

// BreakerState is the position of a Breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// String returns the string representation of the state
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerHalfOpen:
		return "half-open"
	case BreakerOpen:
		return "open"
	default:
		return "unknown"
	}
}

// BreakerSettings configures when a sink is skipped.
type BreakerSettings struct {
	// Failures is the number of consecutive failed writes that opens the breaker
	Failures int
	// Cooldown is how long an open breaker skips writes before trying one again
	Cooldown time.Duration
}

// DefaultBreakerSettings returns the settings used for file sinks.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Failures: 3,
		Cooldown: 30 * time.Second,
	}
}

// Breaker stops calling a sink that keeps failing. After the cooldown one
// trial write is let through; success closes the breaker again.
type Breaker struct {
	name     string
	sink     profiler.ReportSink
	settings BreakerSettings
	logger   *logging.Logger
	now      func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	skipped  int
}

// NewBreaker guards sink. name appears in log entries.
func NewBreaker(name string, sink profiler.ReportSink, settings BreakerSettings, logger *logging.Logger) *Breaker {
	if settings.Failures <= 0 {
		settings.Failures = DefaultBreakerSettings().Failures
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = DefaultBreakerSettings().Cooldown
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Breaker{
		name:     name,
		sink:     sink,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(b.now())
}

// Skipped returns how many reports were dropped while open.
func (b *Breaker) Skipped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.skipped
}

// WriteReport forwards data unless the breaker is open.
func (b *Breaker) WriteReport(data []byte) error {
	b.mu.Lock()
	state := b.currentState(b.now())
	if state == BreakerOpen {
		b.skipped++
		b.mu.Unlock()
		return ErrSinkOpen
	}
	b.mu.Unlock()

	err := b.sink.WriteReport(data)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		if b.state != BreakerClosed {
			b.logger.Info("report sink recovered", zap.String("sink", b.name))
		}
		b.state = BreakerClosed
		b.failures = 0
		return nil
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.settings.Failures {
		b.state = BreakerOpen
		b.openedAt = b.now()
		b.logger.Warn("report sink disabled after repeated failures",
			zap.String("sink", b.name),
			zap.Int("failures", b.failures),
			zap.Duration("cooldown", b.settings.Cooldown),
		)
	}
	return err
}

func (b *Breaker) currentState(now time.Time) BreakerState {
	if b.state == BreakerOpen && now.Sub(b.openedAt) >= b.settings.Cooldown {
		b.state = BreakerHalfOpen
	}
	return b.state
}
