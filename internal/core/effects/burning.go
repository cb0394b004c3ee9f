package effects

import (
	"github.com/zeusync/gameplay/internal/core/components"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/status"
)

const TypeBurning status.LogicalType = "burning"

// Burning deals dps damage per second to the target's Health until its
// countdown runs out. A second burn refreshes the timer and keeps the
// hotter of the two.
type Burning struct {
	status.Countdown
	target *host.Host
	dps    float64
	dealt  float64
}

func NewBurning(target *host.Host, duration, dps float64, policy status.Policy) *Burning {
	return &Burning{
		Countdown: status.NewCountdown(TypeBurning, policy, duration),
		target:    target,
		dps:       dps,
	}
}

func (b *Burning) DPS() float64   { return b.dps }
func (b *Burning) Dealt() float64 { return b.dealt }

func (b *Burning) Update(dt float64) {
	if hp, ok := host.Find[*components.Health](b.target); ok && !hp.Dead() {
		amount := b.dps * min(dt, b.Current)
		if err := hp.ApplyDamage(amount, string(TypeBurning)); err != nil {
			b.target.Log().Warn("burn tick failed", log.Error(err))
		} else {
			b.dealt += amount
		}
	}
	b.Countdown.Update(dt)
}

func (b *Burning) OnOverride(incoming status.Effect) {
	b.Reset()
	if in, ok := incoming.(*Burning); ok && in.dps > b.dps {
		b.dps = in.dps
	}
}
