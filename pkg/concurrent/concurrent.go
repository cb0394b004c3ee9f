package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/gameplay/pkg/sequence"
)

// ForEach runs action for each element of the iterator, at most limit at a
// time (limit <= 0 means unbounded). It waits for all started actions and
// returns the first error; once an action fails, the context passed to the
// remaining ones is cancelled and no new ones are started.
func ForEach[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for value := range i.Seq() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(gctx, value)
		})
	}

	return g.Wait()
}

// Sequential runs action for each element in order on the calling goroutine
// and stops at the first error.
func Sequential[T any](ctx context.Context, i *sequence.Iterator[T], action func(context.Context, T) error) error {
	for value := range i.Seq() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := action(ctx, value); err != nil {
			return err
		}
	}
	return nil
}
