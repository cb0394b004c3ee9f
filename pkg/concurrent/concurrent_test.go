package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/gameplay/pkg/sequence"
)

func TestForEach(t *testing.T) {
	ctx := context.Background()
	items := sequence.From([]int{1, 2, 3, 4, 5, 6, 7, 8})

	t.Run("Runs Every Item Within Limit", func(t *testing.T) {
		var sum, running, peak atomic.Int64
		err := ForEach(ctx, items, 2, func(_ context.Context, v int) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			sum.Add(int64(v))
			running.Add(-1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(36), sum.Load())
		assert.LessOrEqual(t, peak.Load(), int64(2))
	})

	t.Run("First Error", func(t *testing.T) {
		boom := errors.New("boom")
		err := ForEach(ctx, items, 0, func(_ context.Context, v int) error {
			if v == 3 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestSequential(t *testing.T) {
	ctx := context.Background()
	items := sequence.From([]string{"a", "b", "c"})

	var seen []string
	require.NoError(t, Sequential(ctx, items, func(_ context.Context, s string) error {
		seen = append(seen, s)
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	stop := errors.New("stop")
	seen = seen[:0]
	err := Sequential(ctx, items, func(_ context.Context, s string) error {
		seen = append(seen, s)
		if s == "b" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a", "b"}, seen)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, Sequential(cctx, items, func(context.Context, string) error { return nil }), context.Canceled)
}
