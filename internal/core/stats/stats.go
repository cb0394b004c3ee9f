package stats

import (
	"slices"

	"github.com/zeusync/gameplay/internal/core/events/bus"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/pkg/generic"
)

const (
	EventStatAdded   = "stat.added"
	EventStatRemoved = "stat.removed"
)

// ephemeral stats back CalculatedValueOf; they never enter a collection.
var ephemeral = generic.NewResettablePool(func() *Stat {
	return &Stat{transient: true, tags: make([]Tag, 0, 4)}
}, func(s *Stat) {
	s.value = 0
	s.tags = s.tags[:0]
})

// Stats is the per-Host stat collection: an ordered multiset of *Stat plus the
// active stacking strategy. Adding the same stat twice is a caller error that
// the collection does not detect.
type Stats struct {
	members  []*Stat
	strategy StackingStrategy

	bus    bus.EventBus
	source string
	log    log.Log
}

type Option func(*Stats)

// WithStrategy installs the initial strategy. Nil keeps the tiered default.
func WithStrategy(s StackingStrategy) Option {
	return func(c *Stats) {
		if s != nil {
			c.strategy = s
		}
	}
}

// WithBus publishes stat.added / stat.removed on b, using source as the
// event source.
func WithBus(b bus.EventBus, source string) Option {
	return func(c *Stats) {
		c.bus = b
		c.source = source
	}
}

func WithLogger(l log.Log) Option {
	return func(c *Stats) {
		if l != nil {
			c.log = l
		}
	}
}

func NewStats(opts ...Option) *Stats {
	c := &Stats{
		strategy: TieredStrategy{},
		log:      log.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddStat appends s. Nil is ignored.
func (c *Stats) AddStat(s *Stat) bool {
	if s == nil {
		return false
	}
	c.members = append(c.members, s)
	c.invalidateAll()
	c.publish(EventStatAdded, s)
	return true
}

// RemoveStat removes the first reference to s. It returns false when s is
// not in the collection.
func (c *Stats) RemoveStat(s *Stat) bool {
	if s == nil {
		return false
	}
	i := slices.Index(c.members, s)
	if i < 0 {
		return false
	}
	c.members = slices.Delete(c.members, i, i+1)
	c.invalidateAll()
	c.publish(EventStatRemoved, s)
	return true
}

func (c *Stats) Contains(s *Stat) bool {
	return s != nil && slices.Contains(c.members, s)
}

func (c *Stats) Len() int {
	return len(c.members)
}

// All returns the members in insertion order.
func (c *Stats) All() []*Stat {
	return slices.Clone(c.members)
}

// CalculatedValue runs the active strategy for s against the whole
// collection. s does not need to be a member.
func (c *Stats) CalculatedValue(s *Stat) float64 {
	if s == nil {
		return 0
	}
	return c.strategy.Calculate(c.members, s)
}

// CalculatedValueOf evaluates a raw number as if it were a Base-tier stat
// carrying tags. The transient stat is never inserted into the collection.
func (c *Stats) CalculatedValueOf(raw float64, tags ...Tag) float64 {
	q := ephemeral.Get()
	defer ephemeral.Put(q)

	q.value = raw
	q.tier = TierBase
	q.setTags(tags)
	return c.strategy.Calculate(c.members, q)
}

func (c *Stats) Strategy() StackingStrategy {
	return c.strategy
}

// SetStrategy swaps the active strategy; nil restores TieredStrategy.
func (c *Stats) SetStrategy(s StackingStrategy) {
	if s == nil {
		s = TieredStrategy{}
	}
	c.strategy = s
	c.invalidateAll()
}

// Invalidate drops cached results that depend on s. It is a no-op for
// strategies that do not cache.
func (c *Stats) Invalidate(s *Stat) {
	if inv, ok := c.strategy.(Invalidator); ok && s != nil {
		inv.Invalidate(s)
	}
}

// InvalidateAll drops every cached result.
func (c *Stats) InvalidateAll() {
	c.invalidateAll()
}

func (c *Stats) invalidateAll() {
	if inv, ok := c.strategy.(Invalidator); ok {
		inv.InvalidateAll()
	}
}

func (c *Stats) publish(eventType string, s *Stat) {
	if c.bus == nil || !c.bus.HasSubscribers(eventType) {
		return
	}
	if err := c.bus.Publish(bus.NewEvent(eventType, c.source, s)); err != nil {
		c.log.Warn("stat notification handler failed",
			log.String("event", eventType),
			log.Stringer("stat", s),
			log.Error(err),
		)
	}
}
