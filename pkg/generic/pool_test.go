package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type scratch struct {
	values []int
}

func TestPool(t *testing.T) {
	created := 0
	p := NewResettablePool(func() *scratch {
		created++
		return &scratch{}
	}, func(s *scratch) {
		s.values = s.values[:0]
	})

	s := p.Get()
	s.values = append(s.values, 1, 2, 3)
	p.Put(s)
	assert.Empty(t, s.values, "reset runs on Put")

	got := p.Get()
	assert.NotNil(t, got)
	assert.Empty(t, got.values)
	assert.GreaterOrEqual(t, created, 1)
}

func TestPoolWithoutReset(t *testing.T) {
	p := NewPool(func() int { return 7 })
	assert.Equal(t, 7, p.Get())
	p.Put(8)
}
