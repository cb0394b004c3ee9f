package world

import (
	"sync"
)

// Queue hands work from any goroutine to the frame loop. Posted functions
// run in posting order at the start of the next Tick.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	spare   []func()
}

func NewQueue() *Queue {
	return &Queue{}
}

// Post enqueues fn. It is safe for concurrent use; nil is ignored.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Drain runs everything posted so far and returns how many functions ran.
// Functions posted while draining run on the next Drain. If a function
// panics, the rest of its batch is dropped and the panic propagates.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.spare = nil
	q.mu.Unlock()

	defer func() {
		clear(batch)
		q.mu.Lock()
		q.spare = batch[:0]
		q.mu.Unlock()
	}()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
