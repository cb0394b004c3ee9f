package components

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/gameplay/internal/core/events/bus"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
	"github.com/zeusync/gameplay/internal/core/stats"
)

func TestHealth(t *testing.T) {
	t.Run("Max From Stats", func(t *testing.T) {
		h := host.New("knight")
		h.Stats().AddStat(stats.New(20, stats.TierAdditive, TagHealth))
		hp := NewHealth(100)
		require.True(t, h.Register(hp))

		assert.InDelta(t, 120.0, hp.Max(), 1e-9)
		assert.InDelta(t, 120.0, hp.Current(), 1e-9)
	})

	t.Run("Damage Armor And Death", func(t *testing.T) {
		b := bus.New()
		var events []string
		for _, typ := range []string{EventHealthDamaged, EventHealthDied, EventHealthHealed} {
			_, err := b.Subscribe(typ, func(e bus.Event) error {
				events = append(events, e.Type())
				return nil
			})
			require.NoError(t, err)
		}

		h := host.New("knight", host.WithBus(b))
		h.Stats().AddStat(stats.New(2, stats.TierAdditive, TagArmor))
		hp := NewHealth(10)
		h.Register(hp)

		require.NoError(t, hp.ApplyDamage(5, "sword"))
		assert.InDelta(t, 7.0, hp.Current(), 1e-9)
		require.NoError(t, hp.ApplyDamage(1, "pebble"))
		assert.InDelta(t, 7.0, hp.Current(), 1e-9)

		require.NoError(t, hp.Heal(50, "potion"))
		assert.InDelta(t, 10.0, hp.Current(), 1e-9)

		require.NoError(t, hp.ApplyDamage(100, "dragon"))
		assert.True(t, hp.Dead())
		assert.Zero(t, hp.Current())
		require.NoError(t, hp.Heal(5, "potion"))
		assert.Zero(t, hp.Current())

		assert.Equal(t, []string{
			EventHealthDamaged,
			EventHealthDamaged,
			EventHealthHealed,
			EventHealthDamaged,
			EventHealthDied,
		}, events)
	})

	t.Run("Panicking Handler Is Recovered", func(t *testing.T) {
		b := bus.New()
		_, err := b.Subscribe(EventHealthDamaged, func(bus.Event) error {
			panic("listener bug")
		})
		require.NoError(t, err)

		h := host.New("knight", host.WithBus(b))
		hp := NewHealth(10)
		h.Register(hp)

		err = hp.ApplyDamage(3, "sword")
		assert.ErrorIs(t, err, lifecycle.ErrRecovered)
		assert.InDelta(t, 7.0, hp.Current(), 1e-9)
	})

	t.Run("Invalid Use", func(t *testing.T) {
		hp := NewHealth(10)
		assert.ErrorIs(t, hp.ApplyDamage(1, "x"), ErrDetached)
		host.New("knight").Register(hp)
		assert.ErrorIs(t, hp.ApplyDamage(-1, "x"), ErrNegativeAmount)
		assert.ErrorIs(t, hp.Heal(-1, "x"), ErrNegativeAmount)
	})

	t.Run("LateUpdate Clamps To Shrunk Max", func(t *testing.T) {
		h := host.New("knight")
		bonus := stats.New(50, stats.TierAdditive, TagHealth)
		h.Stats().AddStat(bonus)
		hp := NewHealth(100)
		h.Register(hp)
		require.InDelta(t, 150.0, hp.Current(), 1e-9)

		h.Stats().RemoveStat(bonus)
		h.DispatchFrame(lifecycle.PhaseLateUpdate, 0.016)
		assert.InDelta(t, 100.0, hp.Current(), 1e-9)
		assert.InDelta(t, 1.0, hp.Fraction(), 1e-9)
	})
}

func TestMovement(t *testing.T) {
	h := host.New("scout")
	m := NewMovement(4)
	h.Register(m)
	m.SetHeading(cp.Vector{X: 3, Y: 0})

	h.DispatchFrame(lifecycle.PhaseFixedUpdate, 0.5)
	assert.InDelta(t, 2.0, m.Position.X, 1e-9)
	assert.InDelta(t, 4.0, m.LastSpeed(), 1e-9)

	slow := stats.New(0.5, stats.TierTotalMult, TagSpeed)
	h.Stats().AddStat(slow)
	h.DispatchFrame(lifecycle.PhaseFixedUpdate, 0.5)
	assert.InDelta(t, 3.0, m.Position.X, 1e-9)

	h.Stats().AddStat(stats.New(-100, stats.TierAdditive, TagSpeed))
	assert.Zero(t, m.Speed())

	m.SetHeading(cp.Vector{})
	assert.Equal(t, cp.Vector{}, m.Heading())
}

func TestAttackTimer(t *testing.T) {
	h := host.New("archer")
	var shots int
	a := NewAttackTimer(1, func() { shots++ })
	h.Register(a)

	h.DispatchFrame(lifecycle.PhaseUpdate, 0.6)
	assert.Zero(t, shots)
	h.DispatchFrame(lifecycle.PhaseUpdate, 0.6)
	assert.Equal(t, 1, shots)

	h.Stats().AddStat(stats.New(2, stats.TierTotalMult, TagReload))
	assert.InDelta(t, 2.0, a.Rate(), 1e-9)
	h.DispatchFrame(lifecycle.PhaseUpdate, 1)
	assert.Equal(t, 3, shots)
	assert.Equal(t, 3, a.Fired())

	h.SetActive(false)
	h.SetActive(true)
	h.DispatchFrame(lifecycle.PhaseUpdate, 0.4)
	assert.Equal(t, 3, shots)
}
