package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder implements every capability and appends "<name>:<hook>" to a shared log.
type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) Update(float64)      { *r.log = append(*r.log, r.name+":update") }
func (r *recorder) FixedUpdate(float64) { *r.log = append(*r.log, r.name+":fixed") }
func (r *recorder) LateUpdate(float64)  { *r.log = append(*r.log, r.name+":late") }
func (r *recorder) OnEnable()           { *r.log = append(*r.log, r.name+":enable") }
func (r *recorder) OnDisable()          { *r.log = append(*r.log, r.name+":disable") }
func (r *recorder) PreDestroy()         { *r.log = append(*r.log, r.name+":predestroy") }
func (r *recorder) OnDestroyQueued()    { *r.log = append(*r.log, r.name+":queued") }

type updateOnly struct{ calls int }

func (u *updateOnly) Update(float64) { u.calls++ }

type valueBehavior struct{}

func (valueBehavior) Update(float64) {}

type funcUpdater func(dt float64)

func (f funcUpdater) Update(dt float64) { f(dt) }

func TestProbe(t *testing.T) {
	var out []string
	all := Probe(&recorder{log: &out})
	for c := Capability(0); c < capCount; c++ {
		assert.True(t, all.Has(c), c.String())
	}

	only := Probe(&updateOnly{})
	assert.True(t, only.Has(CapUpdate))
	assert.False(t, only.Has(CapFixedUpdate))
	assert.False(t, only.Has(CapPreDestroy))
	assert.Zero(t, Probe(&struct{}{}))
}

func TestRegistry(t *testing.T) {
	t.Run("Dispatch In Registration Order", func(t *testing.T) {
		var out []string
		r := NewRegistry()
		a := &recorder{name: "a", log: &out}
		b := &recorder{name: "b", log: &out}
		c := &recorder{name: "c", log: &out}
		require.True(t, r.Register(a))
		require.True(t, r.Register(b))
		require.True(t, r.Register(c))

		r.DispatchFrame(PhaseUpdate, 0.016)
		r.DispatchFrame(PhaseFixedUpdate, 0.02)
		r.DispatchFrame(PhaseLateUpdate, 0.016)

		assert.Equal(t, []string{
			"a:update", "b:update", "c:update",
			"a:fixed", "b:fixed", "c:fixed",
			"a:late", "b:late", "c:late",
		}, out)
	})

	t.Run("Only Matching Capability Lists", func(t *testing.T) {
		r := NewRegistry()
		u := &updateOnly{}
		require.True(t, r.Register(u))

		r.DispatchFrame(PhaseFixedUpdate, 1)
		r.DispatchFrame(PhaseLateUpdate, 1)
		assert.Zero(t, u.calls)

		r.DispatchFrame(PhaseUpdate, 1)
		assert.Equal(t, 1, u.calls)
		assert.Equal(t, 1, r.Len(CapUpdate))
		assert.Zero(t, r.Len(CapFixedUpdate))

		caps, ok := r.Capabilities(u)
		require.True(t, ok)
		assert.True(t, caps.Has(CapUpdate))
	})

	t.Run("Invalid Behaviors Rejected", func(t *testing.T) {
		r := NewRegistry()
		var typedNil *updateOnly

		assert.False(t, r.Register(nil))
		assert.False(t, r.Register(typedNil))
		assert.False(t, r.Register(valueBehavior{}))
		assert.False(t, r.Register(funcUpdater(func(float64) {})))
		assert.Zero(t, r.Len(CapUpdate))

		assert.False(t, r.Unregister(nil))
		assert.False(t, r.Unregister(typedNil))
		assert.False(t, r.Contains(nil))
	})

	t.Run("Unregister Fires PreDestroy Once While Registered", func(t *testing.T) {
		var out []string
		r := NewRegistry()
		a := &recorder{name: "a", log: &out}
		require.True(t, r.Register(a))

		stillRegistered := false
		p := &destroyHook{onDestroy: func() { stillRegistered = r.Contains(a) }}
		require.True(t, r.Register(p))
		require.True(t, r.Unregister(p))
		assert.True(t, stillRegistered)

		require.True(t, r.Unregister(a))
		assert.False(t, r.Unregister(a))
		assert.Equal(t, []string{"a:predestroy"}, out)
		assert.False(t, r.Contains(a))
		assert.Zero(t, r.Len(CapUpdate))

		r.DispatchFrame(PhaseUpdate, 1)
		assert.Equal(t, []string{"a:predestroy"}, out)
	})

	t.Run("Reentrant Unregister From PreDestroy", func(t *testing.T) {
		r := NewRegistry()
		p := &destroyHook{}
		reentrant := true
		p.onDestroy = func() {
			p.calls++
			reentrant = r.Unregister(p)
		}
		require.True(t, r.Register(p))
		require.True(t, r.Unregister(p))
		assert.False(t, reentrant)
		assert.Equal(t, 1, p.calls)
	})

	t.Run("Register From PreDestroy Rejected", func(t *testing.T) {
		r := NewRegistry()
		p := &destroyHook{}
		again := true
		p.onDestroy = func() { again = r.Register(p) }
		require.True(t, r.Register(p))
		require.True(t, r.Unregister(p))
		assert.False(t, again)
		assert.False(t, r.Contains(p))
		assert.Zero(t, r.Len(CapPreDestroy))

		require.True(t, r.Register(p), "registrable again once destroyed")
		assert.True(t, r.Contains(p))
	})

	t.Run("Unregister Unknown", func(t *testing.T) {
		r := NewRegistry()
		p := &destroyHook{onDestroy: func() { t.Fatal("hook must not run") }}
		assert.False(t, r.Unregister(p))
	})

	t.Run("Self Removal During Dispatch", func(t *testing.T) {
		r := NewRegistry()
		var out []string
		a := &recorder{name: "a", log: &out}
		c := &recorder{name: "c", log: &out}
		var self *selfRemover
		self = &selfRemover{fn: func() { r.Unregister(self) }}

		r.Register(a)
		r.Register(self)
		r.Register(c)

		assert.NotPanics(t, func() { r.DispatchFrame(PhaseUpdate, 1) })
		assert.Equal(t, 1, self.calls)
		assert.Equal(t, []string{"a:update", "c:update"}, out)

		r.DispatchFrame(PhaseUpdate, 1)
		assert.Equal(t, 1, self.calls)
	})

	t.Run("Removal Of Later Member During Dispatch", func(t *testing.T) {
		r := NewRegistry()
		var out []string
		victim := &recorder{name: "victim", log: &out}
		killer := &selfRemover{fn: func() { r.Unregister(victim) }}
		r.Register(killer)
		r.Register(victim)

		r.DispatchFrame(PhaseUpdate, 1)
		assert.Equal(t, []string{"victim:predestroy"}, out)
	})

	t.Run("Registration During Dispatch Runs Next Frame", func(t *testing.T) {
		r := NewRegistry()
		late := &updateOnly{}
		spawner := &selfRemover{}
		spawner.fn = func() {
			if spawner.calls == 1 {
				r.Register(late)
			}
		}
		r.Register(spawner)

		r.DispatchFrame(PhaseUpdate, 1)
		assert.Zero(t, late.calls)
		r.DispatchFrame(PhaseUpdate, 1)
		assert.Equal(t, 1, late.calls)
	})

	t.Run("Double Registration Is Not Corrected", func(t *testing.T) {
		r := NewRegistry()
		u := &updateOnly{}
		require.True(t, r.Register(u))
		require.True(t, r.Register(u))

		r.DispatchFrame(PhaseUpdate, 1)
		assert.Equal(t, 2, u.calls)

		require.True(t, r.Unregister(u))
		assert.Zero(t, r.Len(CapUpdate))
	})

	t.Run("Panics Propagate", func(t *testing.T) {
		r := NewRegistry()
		boom := errors.New("boom")
		r.Register(&selfRemover{fn: func() { panic(boom) }})
		after := &updateOnly{}
		r.Register(after)

		assert.PanicsWithError(t, "boom", func() { r.DispatchFrame(PhaseUpdate, 1) })
		assert.Zero(t, after.calls)

		// the scratch buffer was released by the deferred cleanup
		assert.PanicsWithError(t, "boom", func() { r.DispatchFrame(PhaseUpdate, 1) })
	})

	t.Run("Nested Dispatch Of Same Phase", func(t *testing.T) {
		r := NewRegistry()
		counter := &updateOnly{}
		depth := 0
		nester := &selfRemover{}
		nester.fn = func() {
			if depth == 0 {
				depth++
				r.DispatchFrame(PhaseUpdate, 1)
			}
		}
		r.Register(nester)
		r.Register(counter)

		r.DispatchFrame(PhaseUpdate, 1)
		assert.Equal(t, 2, counter.calls)
	})

	t.Run("Broadcast", func(t *testing.T) {
		var out []string
		r := NewRegistry()
		r.Register(&recorder{name: "a", log: &out})
		r.Register(&updateOnly{})
		r.Register(&recorder{name: "b", log: &out})

		assert.True(t, r.Broadcast(CapEnable))
		assert.True(t, r.Broadcast(CapDestroyQueued))
		assert.True(t, r.Broadcast(CapDisable))
		assert.False(t, r.Broadcast(CapPreDestroy))
		assert.False(t, r.Broadcast(CapUpdate))

		assert.Equal(t, []string{
			"a:enable", "b:enable",
			"a:queued", "b:queued",
			"a:disable", "b:disable",
		}, out)
	})

	t.Run("Members Keep Registration Order", func(t *testing.T) {
		r := NewRegistry()
		a, b, c := &updateOnly{}, &updateOnly{}, &updateOnly{}
		r.Register(a)
		r.Register(b)
		r.Register(c)
		r.Unregister(b)
		assert.Equal(t, []Behavior{a, c}, r.Members())
	})
}

type destroyHook struct {
	calls     int
	onDestroy func()
}

func (p *destroyHook) PreDestroy() {
	if p.onDestroy != nil {
		p.onDestroy()
	}
}

type selfRemover struct {
	calls int
	fn    func()
}

func (s *selfRemover) Update(float64) {
	s.calls++
	if s.fn != nil {
		s.fn()
	}
}

func BenchmarkDispatchFrame(b *testing.B) {
	r := NewRegistry()
	for i := 0; i < 512; i++ {
		r.Register(&updateOnly{})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.DispatchFrame(PhaseUpdate, 0.016)
	}
}
