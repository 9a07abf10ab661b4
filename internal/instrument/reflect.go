package instrument

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/GriffinCanCode/tickprof/internal/profiler"
)

var (
	ErrNotFunc      = errors.New("value is not a func")
	ErrNotFuncPtr   = errors.New("value is not a pointer to a func")
	ErrNotStructPtr = errors.New("value is not a pointer to a struct")
)

// WrapAny instruments a func of any signature. The result has the same
// dynamic type as fn and can be type-asserted back.
func WrapAny(t *profiler.Tracer, name string, fn any) (any, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}
	return wrapValue(t, name, v).Interface(), nil
}

func wrapValue(t *profiler.Tracer, name string, fn reflect.Value) reflect.Value {
	variadic := fn.Type().IsVariadic()
	call := func(args []reflect.Value) []reflect.Value {
		if variadic {
			return fn.CallSlice(args)
		}
		return fn.Call(args)
	}

	return reflect.MakeFunc(fn.Type(), func(args []reflect.Value) []reflect.Value {
		if !enter(t, name) {
			return call(args)
		}
		out := call(args)
		leave(t, name)
		return out
	})
}

// replace swaps the func stored behind ptr for its instrumented version.
func replace(t *profiler.Tracer, name string, ptr any) error {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Func {
		return fmt.Errorf("%w: %T", ErrNotFuncPtr, ptr)
	}
	target := v.Elem()
	if target.IsNil() {
		return fmt.Errorf("%w: nil func behind %T", ErrNotFunc, ptr)
	}
	target.Set(wrapValue(t, name, target))
	return nil
}

// FuncName returns the short symbol name of fn, or "" when none can be
// found. Methods resolve to the method name, closures to names like "func1".
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
