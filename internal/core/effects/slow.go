package effects

import (
	"github.com/zeusync/gameplay/internal/core/components"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/stats"
	"github.com/zeusync/gameplay/internal/core/status"
)

const TypeSlow status.LogicalType = "slow"

// Slow multiplies the target's speed by 1-amount while Present.
type Slow struct {
	status.Countdown
	target   *host.Host
	modifier *stats.Stat
}

func NewSlow(target *host.Host, duration, amount float64, policy status.Policy) *Slow {
	amount = min(max(amount, 0), 1)
	return &Slow{
		Countdown: status.NewCountdown(TypeSlow, policy, duration),
		target:    target,
		modifier:  stats.Named("slow", 1-amount, stats.TierTotalMult, components.TagSpeed),
	}
}

func (s *Slow) Modifier() *stats.Stat { return s.modifier }

func (s *Slow) OnAdd() {
	s.target.Stats().AddStat(s.modifier)
}

func (s *Slow) PreDestroy() {
	s.target.Stats().RemoveStat(s.modifier)
}
