package instrument

import (
	"testing"

	"github.com/GriffinCanCode/tickprof/internal/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type room struct {
	energy int
	used   float64
}

func (r *room) Plan() string     { return "plan" }
func (r *room) X() int           { return r.energy }
func (r *room) SetX(v int)       { r.energy = v }
func (r *room) GetUsed() float64 { return r.used }

func TestWrapAllAccessorAndDenylist(t *testing.T) {
	tr, _, _ := newTracer(usage.Budget{Limit: 1000})
	logger, _ := newObservedLogger()
	r := &room{energy: 5, used: 1.5}

	plan := r.Plan
	getX := r.X
	setX := r.SetX
	getUsed := r.GetUsed

	w := NewWrapper(tr, logger)
	n := w.WrapAll("room",
		Method("plan", &plan),
		Accessor("x", &getX, &setX),
		Method("getUsed", &getUsed),
	)
	assert.Equal(t, 3, n)

	tr.BeginTrace()
	assert.Equal(t, 1.5, getUsed())
	assert.Empty(t, spans(tr.Events()), "denylisted member is not wrapped")

	assert.Equal(t, 5, getX())
	setX(9)
	assert.Equal(t, "plan", plan())
	tr.EndTrace()

	assert.Equal(t, 9, r.energy)
	assert.Equal(t, []string{
		"B:room.x:get", "E:room.x:get",
		"B:room.x:set", "E:room.x:set",
		"B:room.plan", "E:room.plan",
	}, spans(tr.Events()))
}

func TestWrapAllSkips(t *testing.T) {
	tr, _, _ := newTracer(usage.Budget{Limit: 1000})
	logger, logs := newObservedLogger()

	var unnamed func()
	getter := func() int { return 1 }
	notAFunc := 12
	fine := func() {}

	w := NewWrapper(tr, logger)
	n := w.WrapAll("obj",
		Member{Fn: &unnamed},
		Member{Name: "frozen", Get: &getter, ReadOnly: true},
		Method("count", &notAFunc),
		Method("fine", &fine),
	)

	assert.Equal(t, 1, n, "only the valid member is wrapped")
	assert.Equal(t, 1, logs.FilterMessage("couldn't find a function name, will not profile this function").Len())

	tr.BeginTrace()
	getter()
	fine()
	tr.EndTrace()
	assert.Equal(t, []string{"B:obj.fine", "E:obj.fine"}, spans(tr.Events()))
}

func TestWrapAllDiscoversName(t *testing.T) {
	tr, _, _ := newTracer(usage.Budget{Limit: 1000})
	fn := strategyPlan

	n := NewWrapper(tr, nil).WrapAll("ai", Member{Fn: &fn})
	require.Equal(t, 1, n)

	tr.BeginTrace()
	fn()
	tr.EndTrace()
	assert.Equal(t, []string{"B:ai.strategyPlan", "E:ai.strategyPlan"}, spans(tr.Events()))
}

func TestCustomDenylist(t *testing.T) {
	tr, _, _ := newTracer(usage.Budget{Limit: 1000})
	w := NewWrapper(tr, nil, WithDenylist("secret"))

	assert.True(t, w.Denied("secret"))
	assert.False(t, w.Denied("getUsed"))
	assert.Same(t, tr, w.Tracer())
}

type hooks struct {
	Spawn     func(body []string) error
	GetEnergy func() int
	SetEnergy func(int)
	TickLimit func() float64
	Renamed   func() `trace:"tower"`
	Skipped   func() `trace:"-"`
	Missing   func()
	Count     int
	private   func()
}

func TestWrapStruct(t *testing.T) {
	tr, _, _ := newTracer(usage.Budget{Limit: 1000})
	energy := 0

	h := hooks{
		Spawn:     func(body []string) error { return nil },
		GetEnergy: func() int { return energy },
		SetEnergy: func(v int) { energy = v },
		TickLimit: func() float64 { return 500 },
		Renamed:   func() {},
		Skipped:   func() {},
		private:   func() {},
	}

	n, err := NewWrapper(tr, nil).WrapStruct("hooks", &h)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	tr.BeginTrace()
	require.NoError(t, h.Spawn([]string{"work"}))
	h.SetEnergy(3)
	assert.Equal(t, 3, h.GetEnergy())
	assert.Equal(t, 500.0, h.TickLimit())
	h.Renamed()
	h.Skipped()
	h.private()
	tr.EndTrace()

	assert.Equal(t, []string{
		"B:hooks.Spawn", "E:hooks.Spawn",
		"B:hooks.Energy:set", "E:hooks.Energy:set",
		"B:hooks.Energy:get", "E:hooks.Energy:get",
		"B:hooks.tower", "E:hooks.tower",
	}, spans(tr.Events()))
}

func TestWrapStructRejectsNonStruct(t *testing.T) {
	tr, _, _ := newTracer(usage.Budget{Limit: 1000})
	w := NewWrapper(tr, nil)

	_, err := w.WrapStruct("x", hooks{})
	assert.ErrorIs(t, err, ErrNotStructPtr)

	n := 1
	_, err = w.WrapStruct("x", &n)
	assert.ErrorIs(t, err, ErrNotStructPtr)
}
