package script

import (
	"errors"

	"github.com/GriffinCanCode/tickprof/internal/instrument"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// WrapObject instruments every own function and accessor of value, or of
// its prototype when it has one, and returns how many were wrapped.
func (r *Runtime) WrapObject(value goja.Value, label string) int {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return 0
	}
	obj, ok := value.(*goja.Object)
	if !ok {
		return 0
	}

	target := obj
	if proto, ok := obj.Get("prototype").(*goja.Object); ok {
		target = proto
	}

	wrapped := 0
	for _, name := range target.GetOwnPropertyNames() {
		if r.wrapper.Denied(name) {
			continue
		}

		descVal, err := r.getDescriptor(goja.Undefined(), target, r.vm.ToValue(name))
		if err != nil || goja.IsUndefined(descVal) {
			continue
		}
		desc := descVal.ToObject(r.vm)
		full := label + "." + name

		getter, hasGet := callable(desc.Get("get"))
		setter, hasSet := callable(desc.Get("set"))
		if hasGet || hasSet {
			if !desc.Get("configurable").ToBoolean() {
				continue
			}

			var get, set goja.Value
			if hasGet {
				get = r.wrapFunction(full+":get", getter)
				wrapped++
			}
			if hasSet {
				set = r.wrapFunction(full+":set", setter)
				wrapped++
			}

			enumerable := goja.FLAG_FALSE
			if desc.Get("enumerable").ToBoolean() {
				enumerable = goja.FLAG_TRUE
			}
			if err := target.DefineAccessorProperty(name, get, set, goja.FLAG_TRUE, enumerable); err != nil {
				r.logger.Debug("accessor left untouched", zap.String("name", full), zap.Error(err))
			}
			continue
		}

		fn, isFunc := callable(desc.Get("value"))
		if !isFunc {
			continue
		}
		if err := target.Set(name, r.wrapFunction(full, fn)); err != nil {
			r.logger.Debug("method left untouched", zap.String("name", full), zap.Error(err))
			continue
		}
		wrapped++
	}
	return wrapped
}

// profileFunction wraps fn under name, falling back to fn.name. Functions
// with no name at all are returned unwrapped.
func (r *Runtime) profileFunction(fn goja.Value, name string) goja.Value {
	if _, ok := goja.AssertFunction(fn); !ok {
		return fn
	}
	if name == "" {
		name = fn.ToObject(r.vm).Get("name").String()
	}
	if name == "" {
		r.logger.Warn("couldn't find a function name, will not profile this function")
		return fn
	}
	return r.wrapFunction(name, fn)
}

// wrapFunction returns a JS function that records name around fn. The
// receiver and arguments are passed through unchanged.
func (r *Runtime) wrapFunction(name string, fn goja.Value) goja.Value {
	orig, ok := goja.AssertFunction(fn)
	if !ok {
		return fn
	}
	return r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return instrument.Call(r.tracer, name, func() goja.Value {
			return r.invoke(orig, call)
		})
	})
}

// invoke calls fn and rethrows its failure into the calling script.
func (r *Runtime) invoke(fn goja.Callable, call goja.FunctionCall) goja.Value {
	ret, err := fn(call.This, call.Arguments...)
	if err == nil {
		return ret
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		panic(exception)
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		// re-arm so the interrupt keeps unwinding the script
		r.vm.Interrupt(interrupted.Value())
		return goja.Undefined()
	}
	panic(r.vm.NewGoError(err))
}

func callable(v goja.Value) (goja.Value, bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	if _, ok := goja.AssertFunction(v); !ok {
		return nil, false
	}
	return v, true
}
