package stats

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

type cachedQuery struct {
	raw   float64
	tier  Tier
	tags  []Tag
	value float64
}

// CachedStrategy memoizes another strategy. Results for real stats are keyed
// by pointer; results for transient queries are keyed by an xxhash of their
// raw value, tier and tags.
//
// Stats mutate without notifying anyone, so the cache is only correct while
// its owner calls Invalidate after changing a raw value.
type CachedStrategy struct {
	inner     StackingStrategy
	byStat    map[*Stat]float64
	transient map[uint64]cachedQuery
	keyBuf    []byte

	hits, misses uint64
}

var (
	_ StackingStrategy = (*CachedStrategy)(nil)
	_ Invalidator      = (*CachedStrategy)(nil)
)

// NewCachedStrategy wraps inner; nil wraps TieredStrategy.
func NewCachedStrategy(inner StackingStrategy) *CachedStrategy {
	if inner == nil {
		inner = TieredStrategy{}
	}
	return &CachedStrategy{
		inner:     inner,
		byStat:    make(map[*Stat]float64),
		transient: make(map[uint64]cachedQuery),
		keyBuf:    make([]byte, 0, 64),
	}
}

func (c *CachedStrategy) Calculate(members []*Stat, query *Stat) float64 {
	if !query.transient {
		if v, ok := c.byStat[query]; ok {
			c.hits++
			return v
		}
		c.misses++
		v := c.inner.Calculate(members, query)
		c.byStat[query] = v
		return v
	}

	key := c.key(query)
	if e, ok := c.transient[key]; ok && e.matches(query) {
		c.hits++
		return e.value
	}
	c.misses++
	v := c.inner.Calculate(members, query)
	c.transient[key] = cachedQuery{
		raw:   query.value,
		tier:  query.tier,
		tags:  slices.Clone(query.tags),
		value: v,
	}
	return v
}

// Invalidate drops the entry for s and every entry whose query shares a tag
// with s.
func (c *CachedStrategy) Invalidate(s *Stat) {
	delete(c.byStat, s)
	for q := range c.byStat {
		if intersects(q.tags, s.tags) {
			delete(c.byStat, q)
		}
	}
	for k, e := range c.transient {
		if intersects(e.tags, s.tags) {
			delete(c.transient, k)
		}
	}
}

func (c *CachedStrategy) InvalidateAll() {
	clear(c.byStat)
	clear(c.transient)
}

// Counters returns cache hit and miss counts.
func (c *CachedStrategy) Counters() (hits, misses uint64) {
	return c.hits, c.misses
}

// Len returns the number of cached results.
func (c *CachedStrategy) Len() int {
	return len(c.byStat) + len(c.transient)
}

func (c *CachedStrategy) key(q *Stat) uint64 {
	buf := c.keyBuf[:0]
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(q.value))
	buf = append(buf, byte(q.tier))
	for _, t := range q.tags {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(t))
	}
	c.keyBuf = buf
	return xxhash.Sum64(buf)
}

func (e cachedQuery) matches(q *Stat) bool {
	return e.raw == q.value && e.tier == q.tier && slices.Equal(e.tags, q.tags)
}
