package effects

import (
	"github.com/zeusync/gameplay/internal/core/components"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/stats"
	"github.com/zeusync/gameplay/internal/core/status"
)

const TypeHaste status.LogicalType = "haste"

// Haste adds a flat bonus to the target's speed while Present. By default a
// newer haste replaces the older one.
type Haste struct {
	status.Countdown
	target   *host.Host
	modifier *stats.Stat
}

func NewHaste(target *host.Host, duration, bonus float64, policy status.Policy) *Haste {
	return &Haste{
		Countdown: status.NewCountdown(TypeHaste, policy, duration),
		target:    target,
		modifier:  stats.Named("haste", bonus, stats.TierAdditive, components.TagSpeed),
	}
}

func (h *Haste) Modifier() *stats.Stat { return h.modifier }

func (h *Haste) OnAdd() {
	h.target.Stats().AddStat(h.modifier)
}

func (h *Haste) PreDestroy() {
	h.target.Stats().RemoveStat(h.modifier)
}
