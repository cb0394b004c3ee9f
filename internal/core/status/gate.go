package status

import (
	"math"
	"slices"
)

type resistance struct {
	factor float64
	gen    uint64
	immune bool
}

// ResistanceGate holds per-type resistance factors in [0, 1]. A factor of 1
// is full resistance: AddEffect refuses the type outright. Lower factors are
// advisory and left to the effects and components that read them.
type ResistanceGate struct {
	entries map[LogicalType]resistance
	gen     uint64
}

func NewResistanceGate() *ResistanceGate {
	return &ResistanceGate{entries: make(map[LogicalType]resistance)}
}

// Set installs or overwrites the factor for t and returns the entry's
// generation. The factor is clamped to [0, 1]; NaN counts as 0.
func (g *ResistanceGate) Set(t LogicalType, factor float64) uint64 {
	g.gen++
	g.entries[t] = resistance{factor: clampFactor(factor), gen: g.gen}
	return g.gen
}

// setImmunity installs full resistance to t marked as a timed immunity.
func (g *ResistanceGate) setImmunity(t LogicalType) uint64 {
	gen := g.Set(t, 1)
	r := g.entries[t]
	r.immune = true
	g.entries[t] = r
	return gen
}

// Immune reports whether the entry for t was installed by GrantImmunity and
// has not been overwritten since.
func (g *ResistanceGate) Immune(t LogicalType) bool {
	return g.entries[t].immune
}

// Remove deletes the entry for t and reports whether there was one.
func (g *ResistanceGate) Remove(t LogicalType) bool {
	if _, ok := g.entries[t]; !ok {
		return false
	}
	delete(g.entries, t)
	return true
}

// removeGeneration deletes the entry for t only if it is still the one
// installed at gen.
func (g *ResistanceGate) removeGeneration(t LogicalType, gen uint64) bool {
	r, ok := g.entries[t]
	if !ok || r.gen != gen {
		return false
	}
	delete(g.entries, t)
	return true
}

func (g *ResistanceGate) Factor(t LogicalType) (float64, bool) {
	r, ok := g.entries[t]
	return r.factor, ok
}

// Blocks reports whether t is fully resisted.
func (g *ResistanceGate) Blocks(t LogicalType) bool {
	r, ok := g.entries[t]
	return ok && r.factor >= 1
}

// Suppress scales a magnitude of type t by the remaining fraction 1-factor.
func (g *ResistanceGate) Suppress(t LogicalType, magnitude float64) float64 {
	f, _ := g.Factor(t)
	return magnitude * (1 - f)
}

func (g *ResistanceGate) Len() int {
	return len(g.entries)
}

// Types returns the resisted types in sorted order.
func (g *ResistanceGate) Types() []LogicalType {
	out := make([]LogicalType, 0, len(g.entries))
	for t := range g.entries {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func clampFactor(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return min(max(f, 0), 1)
}
