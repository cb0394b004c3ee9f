package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/gameplay/internal/core/events/bus"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
	"github.com/zeusync/gameplay/internal/core/stats"
	"github.com/zeusync/gameplay/internal/core/status"
)

type recorder struct {
	name  string
	trace *[]string
	host  *Host
}

func (r *recorder) Attach(h *Host)   { r.host = h }
func (r *recorder) Update(float64)   { *r.trace = append(*r.trace, r.name+":update") }
func (r *recorder) OnEnable()        { *r.trace = append(*r.trace, r.name+":enable") }
func (r *recorder) OnDisable()       { *r.trace = append(*r.trace, r.name+":disable") }
func (r *recorder) OnDestroyQueued() { *r.trace = append(*r.trace, r.name+":queued") }
func (r *recorder) PreDestroy()      { *r.trace = append(*r.trace, r.name+":destroy") }

type marker struct {
	status.Base
	trace *[]string
}

func (m *marker) PreDestroy() { *m.trace = append(*m.trace, "effect:destroy") }

func TestHost(t *testing.T) {
	t.Run("Register Attaches", func(t *testing.T) {
		h := New("knight")
		var trace []string
		r := &recorder{name: "a", trace: &trace}

		require.True(t, h.Register(r))
		assert.Same(t, h, r.host)
		assert.False(t, h.Register(nil))

		h.DispatchFrame(lifecycle.PhaseUpdate, 0.1)
		assert.Equal(t, []string{"a:update"}, trace)

		got, ok := Find[*recorder](h)
		require.True(t, ok)
		assert.Same(t, r, got)
	})

	t.Run("SetActive Broadcasts Once Per Transition", func(t *testing.T) {
		h := New("knight")
		var trace []string
		h.Register(&recorder{name: "a", trace: &trace})

		h.SetActive(true)
		assert.Empty(t, trace)

		h.SetActive(false)
		h.SetActive(false)
		h.DispatchFrame(lifecycle.PhaseUpdate, 0.1)
		h.SetActive(true)
		assert.Equal(t, []string{"a:disable", "a:enable"}, trace)
	})

	t.Run("Inactive Option", func(t *testing.T) {
		h := New("ghost", Inactive())
		assert.False(t, h.Active())
		var trace []string
		h.Register(&recorder{name: "a", trace: &trace})
		h.DispatchFrame(lifecycle.PhaseUpdate, 0.1)
		assert.Empty(t, trace)
	})

	t.Run("Destroy", func(t *testing.T) {
		b := bus.New()
		var destroyedEvents int
		_, err := b.Subscribe(EventHostDestroyed, func(bus.Event) error {
			destroyedEvents++
			return nil
		})
		require.NoError(t, err)

		h := New("knight", WithBus(b))
		var trace []string
		h.Register(&recorder{name: "a", trace: &trace})
		h.Register(&recorder{name: "b", trace: &trace})
		eff := &marker{Base: status.NewBase("burn", status.PolicyAdd), trace: &trace}
		require.True(t, h.AddEffect(eff))

		h.Destroy()
		h.Destroy()

		assert.Equal(t, []string{
			"a:queued", "b:queued",
			"effect:destroy",
			"b:destroy", "a:destroy",
		}, trace)
		assert.True(t, h.Destroyed())
		assert.Empty(t, h.Registry().Members())
		assert.Zero(t, h.Resolver().Len())
		assert.Equal(t, 1, destroyedEvents)

		assert.False(t, h.Register(&recorder{name: "c", trace: &trace}))
		assert.False(t, h.AddEffect(&marker{Base: status.NewBase("burn", status.PolicyAdd), trace: &trace}))
	})

	t.Run("Shared Bus Carries Source", func(t *testing.T) {
		b := bus.New()
		var sources []string
		_, err := b.Subscribe(stats.EventStatAdded, func(e bus.Event) error {
			sources = append(sources, e.Source())
			return nil
		})
		require.NoError(t, err)

		New("knight", WithBus(b)).Stats().AddStat(stats.New(1, stats.TierBase))
		New("mage", WithBus(b)).Stats().AddStat(stats.New(1, stats.TierBase))
		assert.Equal(t, []string{"knight", "mage"}, sources)
	})

	t.Run("Strategy Option", func(t *testing.T) {
		h := New("knight", WithStrategy(stats.NewCachedStrategy(nil)))
		assert.IsType(t, &stats.CachedStrategy{}, h.Stats().Strategy())
	})

	t.Run("Shared Gate", func(t *testing.T) {
		g := status.NewResistanceGate()
		g.Set("burn", 1)
		h := New("knight", WithResistanceGate(g))
		assert.False(t, h.AddEffect(&marker{Base: status.NewBase("burn", status.PolicyAdd)}))
	})
}
