package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/tickprof/internal/instrument"
	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Runtime runs a turn-based script against a tracer.
type Runtime struct {
	vm      *goja.Runtime
	tracer  *profiler.Tracer
	wrapper *instrument.Wrapper
	logger  *logging.Logger
	config  Config
	mu      sync.Mutex

	loop          goja.Callable
	getDescriptor goja.Callable

	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a runtime bound to tracer.
func New(tracer *profiler.Tracer, logger *logging.Logger, config Config) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Runtime{
		vm:      goja.New(),
		tracer:  tracer,
		wrapper: instrument.NewWrapper(tracer, logger),
		logger:  logger.Component("script"),
		config:  config,
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	return r, nil
}

// VM exposes the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Load evaluates src and binds its global loop function.
func (r *Runtime) Load(ctx context.Context, name, src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return ErrClosed
	}

	err := r.guard(ctx, func() error {
		_, err := r.vm.RunScript(name, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}

	loop, ok := goja.AssertFunction(r.vm.Get("loop"))
	if !ok {
		return ErrNoLoop
	}
	r.loop = loop
	return nil
}

// Eval runs src outside of any turn and exports its value.
func (r *Runtime) Eval(ctx context.Context, src string) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrClosed
	}

	var val goja.Value
	err := r.guard(ctx, func() error {
		var err error
		val, err = r.vm.RunString(src)
		return err
	})
	if err != nil {
		return nil, err
	}
	return exportValue(val), nil
}

// Tick runs loop as one traced turn. A script error still closes the turn.
func (r *Runtime) Tick(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return ErrClosed
	}
	if r.loop == nil {
		return ErrNoLoop
	}

	return r.tracer.TickErr(func() error {
		return r.guard(ctx, func() error {
			_, err := r.loop(goja.Undefined())
			return err
		})
	})
}

// guard interrupts the VM when the context ends or the timeout passes.
func (r *Runtime) guard(ctx context.Context, fn func() error) error {
	r.vm.ClearInterrupt()

	var timeout <-chan time.Time
	if r.config.Timeout > 0 {
		timer := time.NewTimer(r.config.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		select {
		case <-timeout:
			r.vm.Interrupt(ErrTimeout)
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	err := fn()

	// The watcher must be gone before the VM is used again.
	close(done)
	<-finished
	if err == nil {
		// an interrupt that fired after fn returned has nothing to stop
		r.vm.ClearInterrupt()
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return fmt.Errorf("%w: %v", cause, interrupted)
		}
	}
	return err
}

// Console returns the console output captured so far.
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry(nil), r.console...)
}

// Close releases the VM.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.loop = nil
	r.console = nil
	return nil
}

func (r *Runtime) setupGlobals() error {
	// Not part of the host contract
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	objectCtor := r.vm.Get("Object").ToObject(r.vm)
	getDescriptor, ok := goja.AssertFunction(objectCtor.Get("getOwnPropertyDescriptor"))
	if !ok {
		return errors.New("Object.getOwnPropertyDescriptor is not callable")
	}
	r.getDescriptor = getDescriptor

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error"} {
			if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
				return err
			}
		}
		if err := r.vm.Set("console", console); err != nil {
			return err
		}
	}

	if err := r.vm.Set("cpu", r.newCPU()); err != nil {
		return err
	}
	return r.vm.Set("profiler", r.newProfiler())
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		switch level {
		case "warn":
			r.logger.Warn(msg)
		case "error":
			r.logger.Error(msg)
		default:
			r.logger.Info(msg)
		}
		return goja.Undefined()
	}
}

func (r *Runtime) newCPU() *goja.Object {
	cpu := r.vm.NewObject()
	budget := r.tracer.Budget()
	_ = cpu.Set("getUsed", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(r.tracer.Now())
	})
	_ = cpu.Set("limit", budget.Limit)
	_ = cpu.Set("tickLimit", budget.Hard())
	return cpu
}

func (r *Runtime) newProfiler() *goja.Object {
	p := r.vm.NewObject()

	register := func(call goja.FunctionCall) goja.Value {
		target := call.Argument(0)
		label := call.Argument(1).String()
		n := r.WrapObject(target, label)
		r.logger.Debug("registered object", zap.String("label", label), zap.Int("wrapped", n))
		return target
	}
	_ = p.Set("registerObject", register)
	_ = p.Set("registerClass", register)

	_ = p.Set("wrap", func(call goja.FunctionCall) goja.Value {
		fn := call.Argument(0)
		name := ""
		if len(call.Arguments) > 1 {
			name = call.Argument(0).String()
			fn = call.Argument(1)
		}
		return r.profileFunction(fn, name)
	})

	_ = p.Set("scope", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			panic(r.vm.NewTypeError("profiler.scope: second argument must be a function"))
		}
		var result goja.Value
		r.tracer.Scope(name, func() {
			result = r.invoke(fn, goja.FunctionCall{This: goja.Undefined()})
		})
		return result
	})

	_ = p.Set("report", func(goja.FunctionCall) goja.Value {
		r.tracer.RequestReport()
		return goja.Undefined()
	})
	_ = p.Set("panic", func(goja.FunctionCall) goja.Value {
		r.tracer.PanicFlush()
		return goja.Undefined()
	})
	_ = p.Set("enabled", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(r.tracer.Enabled())
	})
	return p
}

func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
