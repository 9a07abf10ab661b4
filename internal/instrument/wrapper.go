package instrument

import (
	"reflect"

	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"go.uber.org/zap"
)

// DefaultDenylist names members that must never be wrapped: the usage
// clock, the budget accessor and constructors.
var DefaultDenylist = []string{
	"getUsed",
	"tickLimit",
	"constructor",
	"Used",
	"TickLimit",
	"New",
}

// Member is one named entry of a batch wrap. Fn, Get and Set hold
// pointers to func variables so they can be replaced in place.
type Member struct {
	Name string
	Fn   any
	Get  any
	Set  any
	// ReadOnly marks an accessor that cannot be redefined.
	ReadOnly bool
}

// Method declares a plain callable member.
func Method(name string, fnPtr any) Member {
	return Member{Name: name, Fn: fnPtr}
}

// Accessor declares a getter/setter pair. Either pointer may be nil.
func Accessor(name string, getPtr, setPtr any) Member {
	return Member{Name: name, Get: getPtr, Set: setPtr}
}

func (m Member) isAccessor() bool {
	return m.Get != nil || m.Set != nil
}

// Wrapper applies instrumentation to groups of members.
type Wrapper struct {
	tracer   *profiler.Tracer
	logger   *logging.Logger
	denylist map[string]struct{}
}

// WrapperOption configures a Wrapper.
type WrapperOption func(*Wrapper)

// WithDenylist replaces the default denylist.
func WithDenylist(names ...string) WrapperOption {
	return func(w *Wrapper) {
		w.denylist = make(map[string]struct{}, len(names))
		for _, n := range names {
			w.denylist[n] = struct{}{}
		}
	}
}

// NewWrapper creates a batch wrapper bound to a tracer.
func NewWrapper(t *profiler.Tracer, logger *logging.Logger, opts ...WrapperOption) *Wrapper {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Wrapper{tracer: t, logger: logger}
	WithDenylist(DefaultDenylist...)(w)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Denied reports whether name is on the denylist.
func (w *Wrapper) Denied(name string) bool {
	_, ok := w.denylist[name]
	return ok
}

// Tracer returns the tracer spans are recorded on.
func (w *Wrapper) Tracer() *profiler.Tracer {
	return w.tracer
}

// WrapAll instruments every member under label and returns how many
// callables were replaced. Members that cannot be wrapped are skipped
// without affecting the rest.
func (w *Wrapper) WrapAll(label string, members ...Member) int {
	wrapped := 0
	for _, m := range members {
		name := m.Name
		if name == "" {
			name = FuncName(firstFunc(m))
		}
		if name == "" {
			w.logger.Warn("couldn't find a function name, will not profile this function",
				zap.String("label", label),
			)
			continue
		}
		if w.Denied(name) {
			continue
		}

		full := label + "." + name

		if m.isAccessor() {
			if m.ReadOnly {
				continue
			}
			if m.Get != nil && w.replace(full+":get", m.Get) {
				wrapped++
			}
			if m.Set != nil && w.replace(full+":set", m.Set) {
				wrapped++
			}
			continue
		}

		if m.Fn != nil && w.replace(full, m.Fn) {
			wrapped++
		}
	}
	return wrapped
}

func (w *Wrapper) replace(name string, ptr any) bool {
	if err := replace(w.tracer, name, ptr); err != nil {
		w.logger.Debug("member left untouched", zap.String("name", name), zap.Error(err))
		return false
	}
	return true
}

func firstFunc(m Member) any {
	for _, p := range []any{m.Fn, m.Get, m.Set} {
		if p != nil {
			return p
		}
	}
	return nil
}

// WrapStruct instruments every exported, non-nil func field of the struct
// behind ptr. A `trace:"name"` tag renames a field and `trace:"-"` skips it.
// Fields named GetX and SetX form the accessor pair of member X.
func (w *Wrapper) WrapStruct(label string, ptr any) (int, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return 0, ErrNotStructPtr
	}
	return w.WrapAll(label, structMembers(v.Elem())...), nil
}

func structMembers(sv reflect.Value) []Member {
	st := sv.Type()
	var members []Member
	accessors := map[string]int{}

	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() || f.Type.Kind() != reflect.Func {
			continue
		}
		tag := f.Tag.Get("trace")
		if tag == "-" {
			continue
		}
		fv := sv.Field(i)
		if fv.IsNil() {
			continue
		}
		ptr := fv.Addr().Interface()

		if tag != "" {
			members = append(members, Method(tag, ptr))
			continue
		}

		if prop, isGet, ok := accessorName(f.Name); ok {
			idx, seen := accessors[prop]
			if !seen {
				idx = len(members)
				accessors[prop] = idx
				members = append(members, Member{Name: prop})
			}
			if isGet {
				members[idx].Get = ptr
			} else {
				members[idx].Set = ptr
			}
			continue
		}

		members = append(members, Method(f.Name, ptr))
	}
	return members
}

// accessorName splits GetX/SetX into X. A bare "Get" or "Set" is a method.
func accessorName(field string) (string, bool, bool) {
	if len(field) <= 3 {
		return "", false, false
	}
	switch field[:3] {
	case "Get":
		return field[3:], true, true
	case "Set":
		return field[3:], false, true
	}
	return "", false, false
}
