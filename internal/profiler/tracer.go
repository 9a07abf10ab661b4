package profiler

import (
	"sync"

	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/GriffinCanCode/tickprof/internal/usage"
	"go.uber.org/zap"
)

// State is the tracer's position in the turn lifecycle.
type State int

const (
	StateIdle State = iota
	StateTracing
	StateEmergency
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracing:
		return "tracing"
	case StateEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Tracer buffers span events for the current turn and emits reports.
type Tracer struct {
	clock    usage.Clock
	budget   usage.Budget
	sink     ReportSink
	observer Observer
	logger   *logging.Logger

	mu            sync.Mutex
	memory        *Memory
	enabledCount  int
	disabledCount int
	reportAtEnd   bool
	panicked      bool
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithBudget sets the turn limits.
func WithBudget(b usage.Budget) Option {
	return func(t *Tracer) { t.budget = b }
}

// WithSink sets where reports are written.
func WithSink(s ReportSink) Option {
	return func(t *Tracer) { t.sink = s }
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(t *Tracer) {
		if o != nil {
			t.observer = o
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Tracer) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a tracer over the host-owned memory. A nil memory gets a
// fresh one.
func New(memory *Memory, clock usage.Clock, opts ...Option) *Tracer {
	if memory == nil {
		memory = &Memory{}
	}

	t := &Tracer{
		clock:    clock,
		memory:   memory,
		observer: nopObserver{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Clock returns the usage clock the tracer reads.
func (t *Tracer) Clock() usage.Clock {
	return t.clock
}

// Budget returns the turn limits.
func (t *Tracer) Budget() usage.Budget {
	return t.budget
}

// Now reads the usage clock.
func (t *Tracer) Now() float64 {
	return t.clock.Used()
}

// Enabled reports whether spans should be recorded right now.
func (t *Tracer) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabledLocked()
}

func (t *Tracer) enabledLocked() bool {
	return !t.panicked && t.enabledCount > 0 && t.disabledCount == 0
}

// State returns the current lifecycle state.
func (t *Tracer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case !t.memory.Started:
		return StateIdle
	case t.panicked:
		return StateEmergency
	default:
		return StateTracing
	}
}

// PushEnabled opens an enabled scope.
func (t *Tracer) PushEnabled() {
	t.mu.Lock()
	t.enabledCount++
	t.mu.Unlock()
}

// PopEnabled closes an enabled scope. Calls are not checked for balance.
func (t *Tracer) PopEnabled() {
	t.mu.Lock()
	t.enabledCount--
	t.mu.Unlock()
}

// PushDisabled suppresses tracing until the matching PopDisabled.
func (t *Tracer) PushDisabled() {
	t.mu.Lock()
	t.disabledCount++
	t.mu.Unlock()
}

// PopDisabled lifts one PushDisabled.
func (t *Tracer) PopDisabled() {
	t.mu.Lock()
	t.disabledCount--
	t.mu.Unlock()
}

// Enable pushes an enabled scope and returns the func that pops it. The
// returned func pops at most once.
func (t *Tracer) Enable() func() {
	t.PushEnabled()
	var once sync.Once
	return func() { once.Do(t.PopEnabled) }
}

// Disable pushes a disabled scope and returns the func that pops it.
func (t *Tracer) Disable() func() {
	t.PushDisabled()
	var once sync.Once
	return func() { once.Do(t.PopDisabled) }
}

// BeginEvent appends a begin marker. timestamp is a raw clock reading.
func (t *Tracer) BeginEvent(name string, timestamp float64) {
	t.appendEvent(newEvent(name, PhaseBegin, timestamp))
}

// EndEvent appends an end marker. timestamp is a raw clock reading.
func (t *Tracer) EndEvent(name string, timestamp float64) {
	t.appendEvent(newEvent(name, PhaseEnd, timestamp))
}

func (t *Tracer) appendEvent(e Event) {
	t.mu.Lock()
	t.memory.TraceEvents = append(t.memory.TraceEvents, e)
	t.mu.Unlock()
}

// Events returns a copy of the current buffer.
func (t *Tracer) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Event(nil), t.memory.TraceEvents...)
}

// BeginTrace starts a turn: counters reset, buffer cleared, one enabled
// scope open and the Frame span begun.
func (t *Tracer) BeginTrace() {
	t.mu.Lock()
	t.enabledCount = 0
	t.disabledCount = 0
	t.memory.Started = true
	t.memory.Completed = false
	t.memory.TraceEvents = []Event{}
	t.enabledCount++
	t.mu.Unlock()

	t.observer.TurnStarted()
	t.BeginEvent(FrameName, t.clock.Used())
}

// EndTrace closes the turn and flushes a report when one was requested or
// the long-turn ratio was reached.
func (t *Tracer) EndTrace() {
	t.EndEvent(FrameName, t.clock.Used())

	t.mu.Lock()
	t.enabledCount--
	t.panicked = false
	t.memory.Started = false
	t.memory.Completed = false
	ratio := t.memory.LongTickRatio
	events := len(t.memory.TraceEvents)
	t.mu.Unlock()

	used := t.clock.Used()
	exceeded := ratio != nil && used >= t.budget.Limit*(*ratio)

	t.observer.TurnEnded(TurnStats{Used: used, Limit: t.budget.Limit, Events: events})

	t.mu.Lock()
	flush := t.reportAtEnd || exceeded
	if flush {
		t.reportAtEnd = false
	}
	t.mu.Unlock()

	if !flush {
		return
	}

	reason := ReasonRequested
	if exceeded {
		reason = ReasonLongTick
		t.logger.Warn("Exceeded normal tick limit - dumping trace.",
			zap.Float64("used", used),
			zap.Float64("limit", t.budget.Limit),
			zap.Float64("long_tick_ratio", *ratio),
		)
	}
	t.flush(reason)
}

// RequestReport asks for a report at the next EndTrace.
func (t *Tracer) RequestReport() {
	t.mu.Lock()
	t.reportAtEnd = true
	t.mu.Unlock()
}

// PanicFlush emits the current buffer immediately and stops tracing until
// the next turn. Only the first call in a turn has any effect.
func (t *Tracer) PanicFlush() {
	t.mu.Lock()
	if t.panicked {
		t.mu.Unlock()
		return
	}
	t.panicked = true
	t.mu.Unlock()

	t.logger.Warn("Panic flushing", zap.Float64("used", t.clock.Used()))
	t.flush(ReasonPanic)
}

// CheckBudget triggers an emergency flush when used has reached the panic
// ratio of the hard limit. It reports whether the threshold was reached.
func (t *Tracer) CheckBudget(used float64) bool {
	ratio := t.PanicTickRatio()
	if ratio == nil || used < t.budget.Hard()*(*ratio) {
		return false
	}
	t.PanicFlush()
	return true
}

// Tick runs fn as one turn. If fn panics the turn is left open and the
// next BeginTrace starts over.
func (t *Tracer) Tick(fn func()) {
	t.resetClock()
	t.BeginTrace()
	fn()
	t.EndTrace()
}

// TickErr runs fn as one turn and always closes it, returning fn's error.
func (t *Tracer) TickErr(fn func() error) error {
	t.resetClock()
	t.BeginTrace()
	err := fn()
	t.EndTrace()
	return err
}

func (t *Tracer) resetClock() {
	if r, ok := t.clock.(usage.TurnResetter); ok {
		r.ResetTurn()
	}
}

// Scope records name around fn whether or not tracing is enabled.
func (t *Tracer) Scope(name string, fn func()) {
	t.BeginEvent(name, t.clock.Used())
	fn()
	t.EndEvent(name, t.clock.Used())
}

// LongTickRatio returns the turn-end flush ratio, or nil when unset.
func (t *Tracer) LongTickRatio() *float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyRatio(t.memory.LongTickRatio)
}

// SetLongTickRatio sets the turn-end flush ratio.
func (t *Tracer) SetLongTickRatio(v float64) {
	t.mu.Lock()
	t.memory.LongTickRatio = &v
	t.mu.Unlock()
}

// ClearLongTickRatio unsets the turn-end flush ratio.
func (t *Tracer) ClearLongTickRatio() {
	t.mu.Lock()
	t.memory.LongTickRatio = nil
	t.mu.Unlock()
}

// PanicTickRatio returns the emergency flush ratio, or nil when unset.
func (t *Tracer) PanicTickRatio() *float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyRatio(t.memory.PanicTickRatio)
}

// SetPanicTickRatio sets the emergency flush ratio.
func (t *Tracer) SetPanicTickRatio(v float64) {
	t.mu.Lock()
	t.memory.PanicTickRatio = &v
	t.mu.Unlock()
}

// ClearPanicTickRatio unsets the emergency flush ratio.
func (t *Tracer) ClearPanicTickRatio() {
	t.mu.Lock()
	t.memory.PanicTickRatio = nil
	t.mu.Unlock()
}

func copyRatio(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// flush serializes a copy of the buffer; the buffer itself is untouched.
func (t *Tracer) flush(reason FlushReason) {
	t.mu.Lock()
	events := append([]Event(nil), t.memory.TraceEvents...)
	t.mu.Unlock()

	t.observer.ReportFlushed(reason, len(events))

	if t.sink == nil {
		return
	}

	data, err := Report{TraceEvents: events}.Marshal()
	if err != nil {
		t.logger.Error("failed to encode trace report", zap.Error(err))
		return
	}
	if err := t.sink.WriteReport(data); err != nil {
		t.logger.Error("failed to write trace report",
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
	}
}
