package stats

import (
	"fmt"
	"slices"
	"strings"
)

// Tag is an opaque affection group. Stats sharing at least one tag take part
// in each other's aggregation.
type Tag int

// Tier is the bucket controlling how a Stat combines with its group. Tiers are
// applied low to high; insertion order only matters within a tier.
type Tier uint8

const (
	TierBase Tier = iota
	TierOverrider
	TierAdditive
	TierBaseMult
	TierTotalMult
	TierPwner

	tierCount
)

var tierNames = [tierCount]string{"base", "overrider", "additive", "base_mult", "total_mult", "pwner"}

func (t Tier) String() string {
	if t < tierCount {
		return tierNames[t]
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// ParseTier accepts the snake_case tier names used in definition files.
func ParseTier(s string) (Tier, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for i, name := range tierNames {
		if key == name || key == strings.ReplaceAll(name, "_", "") {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// PwnOp selects what a Pwner-tier stat does to the accumulator.
type PwnOp uint8

const (
	// PwnReplace sets the accumulator to the stat's value.
	PwnReplace PwnOp = iota
	// PwnPow raises the accumulator to the power of the stat's value.
	PwnPow
)

func (op PwnOp) String() string {
	if op == PwnPow {
		return "pow"
	}
	return "replace"
}

func ParsePwnOp(s string) (PwnOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace", "set":
		return PwnReplace, nil
	case "pow", "power", "exp":
		return PwnPow, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPwnOp, s)
	}
}

// Stat is a tagged, tiered scalar. It is always handled by pointer: the
// collection and the strategies identify stats by reference, and the raw
// value may be changed by its owner at any time without notifying anyone.
type Stat struct {
	name  string
	value float64
	tier  Tier
	tags  []Tag
	pwn   PwnOp

	transient bool
}

// New creates a stat. Tags are de-duplicated.
func New(value float64, tier Tier, tags ...Tag) *Stat {
	s := &Stat{value: value, tier: tier}
	s.setTags(tags)
	return s
}

// Named is New with a label used in logs and scripts.
func Named(name string, value float64, tier Tier, tags ...Tag) *Stat {
	s := New(value, tier, tags...)
	s.name = name
	return s
}

func (s *Stat) Name() string   { return s.name }
func (s *Stat) Value() float64 { return s.value }
func (s *Stat) Tier() Tier     { return s.tier }
func (s *Stat) PwnOp() PwnOp   { return s.pwn }

// SetValue replaces the raw value. Collections are not notified; callers
// using a caching strategy must invalidate the stat afterwards.
func (s *Stat) SetValue(v float64) { s.value = v }

// Add shifts the raw value by delta.
func (s *Stat) Add(delta float64) { s.value += delta }

// WithPwnOp sets the Pwner operation and returns s for chaining.
func (s *Stat) WithPwnOp(op PwnOp) *Stat {
	s.pwn = op
	return s
}

// Tags returns a copy of the stat's tags in ascending order.
func (s *Stat) Tags() []Tag {
	return slices.Clone(s.tags)
}

func (s *Stat) HasTag(t Tag) bool {
	_, ok := slices.BinarySearch(s.tags, t)
	return ok
}

// SharesTag reports whether s and o have at least one tag in common.
// A tagless stat shares nothing, not even with itself.
func (s *Stat) SharesTag(o *Stat) bool {
	return intersects(s.tags, o.tags)
}

func (s *Stat) String() string {
	if s.name != "" {
		return fmt.Sprintf("%s(%g %s %v)", s.name, s.value, s.tier, s.tags)
	}
	return fmt.Sprintf("stat(%g %s %v)", s.value, s.tier, s.tags)
}

func (s *Stat) setTags(tags []Tag) {
	s.tags = append(s.tags[:0], tags...)
	slices.Sort(s.tags)
	s.tags = slices.Compact(s.tags)
}

// intersects walks two ascending tag lists.
func intersects(a, b []Tag) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}
