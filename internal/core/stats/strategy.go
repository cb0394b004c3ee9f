package stats

import "math"

// StackingStrategy turns a stat collection and a query stat into the final
// number gameplay code reads. members is the collection's backing slice in
// insertion order; implementations must neither retain nor modify it.
type StackingStrategy interface {
	Calculate(members []*Stat, query *Stat) float64
}

// Invalidator is implemented by strategies that cache results. Raw values
// can change without the collection noticing, so owners call Invalidate after
// mutating a stat, and the collection calls InvalidateAll when its membership
// changes.
type Invalidator interface {
	Invalidate(s *Stat)
	InvalidateAll()
}

// StrategyFunc adapts a plain function to StackingStrategy.
type StrategyFunc func(members []*Stat, query *Stat) float64

func (f StrategyFunc) Calculate(members []*Stat, query *Stat) float64 {
	return f(members, query)
}

// TieredStrategy is the default stacking strategy.
//
// The group is every member other than the query itself that shares a tag
// with the query. Starting from the query's raw value the group is folded
// tier by tier:
//
//	Base        each member replaces the accumulator, last one wins
//	Overrider   replaces the accumulator outright, last one wins
//	Additive    the sum of members is added
//	BaseMult    each member adds base*(m-1), base being the value after
//	            Base/Overrider and before Additive
//	TotalMult   the accumulator is multiplied by every member
//	Pwner       replaces or exponentiates the accumulator, in insertion order
type TieredStrategy struct{}

var _ StackingStrategy = TieredStrategy{}

func (TieredStrategy) Calculate(members []*Stat, query *Stat) float64 {
	acc := query.value
	if len(query.tags) == 0 {
		return acc
	}

	var base, over, additive, baseMultDelta float64
	var hasBase, hasOver, hasPwner bool
	totalMult := 1.0

	for _, m := range members {
		if m == query || !intersects(m.tags, query.tags) {
			continue
		}
		switch m.tier {
		case TierBase:
			base, hasBase = m.value, true
		case TierOverrider:
			over, hasOver = m.value, true
		case TierAdditive:
			additive += m.value
		case TierBaseMult:
			baseMultDelta += m.value - 1
		case TierTotalMult:
			totalMult *= m.value
		case TierPwner:
			hasPwner = true
		}
	}

	if hasBase {
		acc = base
	}
	if hasOver {
		acc = over
	}
	pre := acc
	acc += additive
	acc += pre * baseMultDelta
	acc *= totalMult

	if !hasPwner {
		return acc
	}
	for _, m := range members {
		if m == query || m.tier != TierPwner || !intersects(m.tags, query.tags) {
			continue
		}
		switch m.pwn {
		case PwnPow:
			acc = math.Pow(acc, m.value)
		default:
			acc = m.value
		}
	}
	return acc
}
