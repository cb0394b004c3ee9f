package components

import (
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
)

// AttackTimer fires OnFire every cooldown seconds. The reload tag group
// scales the rate: a calculated reload rate of 2 halves the cooldown.
type AttackTimer struct {
	host     *host.Host
	cooldown float64
	elapsed  float64
	fired    int

	OnFire func()
}

var (
	_ host.Attacher     = (*AttackTimer)(nil)
	_ lifecycle.Updater = (*AttackTimer)(nil)
	_ lifecycle.Enabler = (*AttackTimer)(nil)
)

func NewAttackTimer(cooldown float64, onFire func()) *AttackTimer {
	return &AttackTimer{cooldown: cooldown, OnFire: onFire}
}

func (a *AttackTimer) Attach(h *host.Host) { a.host = h }

// Rate is the reload multiplier, 1 with no modifiers.
func (a *AttackTimer) Rate() float64 {
	if a.host == nil {
		return 1
	}
	return a.host.Stats().CalculatedValueOf(1, TagReload)
}

// Fired counts the attacks so far.
func (a *AttackTimer) Fired() int { return a.fired }

// OnEnable restarts the cooldown.
func (a *AttackTimer) OnEnable() { a.elapsed = 0 }

func (a *AttackTimer) Update(dt float64) {
	rate := a.Rate()
	if rate <= 0 || a.cooldown <= 0 {
		return
	}
	a.elapsed += dt * rate
	for a.elapsed >= a.cooldown {
		a.elapsed -= a.cooldown
		a.fired++
		if a.OnFire != nil {
			a.OnFire()
		}
	}
}
