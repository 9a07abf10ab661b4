package instrument

import (
	"github.com/GriffinCanCode/tickprof/internal/profiler"
)

// enter records the begin span when tracing is on and reports whether it
// did. The budget check runs first so an emergency report includes
// everything up to the breach.
func enter(t *profiler.Tracer, name string) bool {
	if t == nil || !t.Enabled() {
		return false
	}
	start := t.Now()
	t.CheckBudget(start)
	t.BeginEvent(name, start)
	return true
}

func leave(t *profiler.Tracer, name string) {
	t.EndEvent(name, t.Now())
}

// Call runs fn as a span named name and returns its result.
func Call[R any](t *profiler.Tracer, name string, fn func() R) R {
	if !enter(t, name) {
		return fn()
	}
	r := fn()
	leave(t, name)
	return r
}

// Wrap instruments a func with no arguments or results.
func Wrap(t *profiler.Tracer, name string, fn func()) func() {
	return func() {
		if !enter(t, name) {
			fn()
			return
		}
		fn()
		leave(t, name)
	}
}

// Func instruments a func returning one value.
func Func[R any](t *profiler.Tracer, name string, fn func() R) func() R {
	return func() R {
		return Call(t, name, fn)
	}
}

// Func1 instruments a one-argument func.
func Func1[A, R any](t *profiler.Tracer, name string, fn func(A) R) func(A) R {
	return func(a A) R {
		if !enter(t, name) {
			return fn(a)
		}
		r := fn(a)
		leave(t, name)
		return r
	}
}

// Func2 instruments a two-argument func.
func Func2[A, B, R any](t *profiler.Tracer, name string, fn func(A, B) R) func(A, B) R {
	return func(a A, b B) R {
		if !enter(t, name) {
			return fn(a, b)
		}
		r := fn(a, b)
		leave(t, name)
		return r
	}
}

// FuncErr instruments a func returning a value and an error.
func FuncErr[R any](t *profiler.Tracer, name string, fn func() (R, error)) func() (R, error) {
	return func() (R, error) {
		if !enter(t, name) {
			return fn()
		}
		r, err := fn()
		leave(t, name)
		return r, err
	}
}

// Func1Err instruments a one-argument func returning a value and an error.
func Func1Err[A, R any](t *profiler.Tracer, name string, fn func(A) (R, error)) func(A) (R, error) {
	return func(a A) (R, error) {
		if !enter(t, name) {
			return fn(a)
		}
		r, err := fn(a)
		leave(t, name)
		return r, err
	}
}
