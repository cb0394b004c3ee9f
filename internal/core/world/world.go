package world

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/pkg/concurrent"
	"github.com/zeusync/gameplay/pkg/sequence"
)

const (
	DefaultFixedStep     = 0.02
	DefaultMaxFixedSteps = 8
)

// World owns the hosts and drives their frames. Every host is ticked by one
// goroutine at a time; with parallel ticking different hosts run on
// different goroutines, so behaviors must not reach into other hosts during
// a frame. Cross-host work goes through Post.
type World struct {
	hosts  []*host.Host
	byName map[string]*host.Host
	queue  *Queue

	fixedStep     float64
	maxFixedSteps int
	accumulator   float64
	frame         uint64

	parallel bool
	workers  int

	log log.Log
}

type Option func(*World)

func WithLogger(l log.Log) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithFixedStep sets the fixed-update step and the most fixed steps one Tick
// may run to catch up. Non-positive values keep the defaults.
func WithFixedStep(step float64, maxSteps int) Option {
	return func(w *World) {
		if step > 0 {
			w.fixedStep = step
		}
		if maxSteps > 0 {
			w.maxFixedSteps = maxSteps
		}
	}
}

// WithParallel ticks hosts on up to workers goroutines; workers <= 0 means
// one goroutine per host.
func WithParallel(workers int) Option {
	return func(w *World) {
		w.parallel = true
		w.workers = workers
	}
}

func New(opts ...Option) *World {
	w := &World{
		byName:        make(map[string]*host.Host),
		queue:         NewQueue(),
		fixedStep:     DefaultFixedStep,
		maxFixedSteps: DefaultMaxFixedSteps,
		log:           log.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.Named("world")
	return w
}

// Add registers a host under its name.
func (w *World) Add(h *host.Host) error {
	if h == nil {
		return ErrNilHost
	}
	if h.Destroyed() {
		return fmt.Errorf("%w: %q", ErrHostDestroyed, h.Name())
	}
	if _, ok := w.byName[h.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrHostExists, h.Name())
	}
	w.byName[h.Name()] = h
	w.hosts = append(w.hosts, h)
	w.log.Debug("host added", log.String("host", h.Name()))
	return nil
}

// Remove destroys the named host and drops it from the world.
func (w *World) Remove(name string) error {
	h, ok := w.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrHostNotFound, name)
	}
	h.Destroy()
	w.drop(h)
	return nil
}

func (w *World) Host(name string) (*host.Host, bool) {
	h, ok := w.byName[name]
	return h, ok
}

// Hosts returns the hosts in the order they were added.
func (w *World) Hosts() []*host.Host {
	return slices.Clone(w.hosts)
}

func (w *World) Len() int {
	return len(w.hosts)
}

// Post queues fn for the start of the next Tick. It is safe to call from any
// goroutine, which makes the world a status.Poster.
func (w *World) Post(fn func()) {
	w.queue.Post(fn)
}

func (w *World) Queue() *Queue {
	return w.queue
}

// Frame is the number of completed ticks.
func (w *World) Frame() uint64 {
	return w.frame
}

// Alpha is how far the accumulator is into the next fixed step, in [0, 1).
func (w *World) Alpha() float64 {
	return w.accumulator / w.fixedStep
}

// Tick runs one frame: the posted work, then as many fixed steps as the
// accumulated time allows, then update and late-update on every active host.
// A host that panics is reported in the returned error; the other hosts still
// run. Hosts destroyed during the frame are dropped afterwards.
func (w *World) Tick(ctx context.Context, dt float64) error {
	if dt < 0 {
		dt = 0
	}
	w.queue.Drain()

	w.accumulator += dt
	steps := 0
	for w.accumulator >= w.fixedStep && steps < w.maxFixedSteps {
		w.accumulator -= w.fixedStep
		steps++
	}
	if w.accumulator >= w.fixedStep {
		w.log.Debug("dropping fixed steps",
			log.Float64("behind", w.accumulator),
			log.Uint64("frame", w.frame),
		)
		w.accumulator = math.Mod(w.accumulator, w.fixedStep)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	frame := func(_ context.Context, h *host.Host) error {
		if err := w.tickHost(h, steps, dt); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		return nil
	}

	active := sequence.From(w.hosts).Filter(func(h *host.Host) bool {
		return h.Active() && !h.Destroyed()
	})
	var err error
	if w.parallel {
		err = concurrent.ForEach(ctx, active, w.workers, frame)
	} else {
		err = concurrent.Sequential(ctx, active, frame)
	}

	w.reap()
	w.frame++
	return errors.Join(append(errs, err)...)
}

func (w *World) tickHost(h *host.Host, steps int, dt float64) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		err = fmt.Errorf("%w: %q: %v", ErrHostPanicked, h.Name(), rec)
		w.log.Error("host frame failed",
			log.String("host", h.Name()),
			log.Uint64("frame", w.frame),
			log.Error(err),
			log.String("stack", string(debug.Stack())),
		)
	}()

	for range steps {
		h.DispatchFrame(lifecycle.PhaseFixedUpdate, w.fixedStep)
	}
	h.DispatchFrame(lifecycle.PhaseUpdate, dt)
	h.DispatchFrame(lifecycle.PhaseLateUpdate, dt)
	return nil
}

// Run ticks the world every frameStep of wall-clock time until frames ticks
// have run (frames <= 0 means forever) or ctx is done. Tick errors are logged
// and the loop carries on.
func (w *World) Run(ctx context.Context, frameStep float64, frames int) error {
	if frameStep <= 0 {
		return fmt.Errorf("world: frame step must be positive, got %v", frameStep)
	}
	ticker := time.NewTicker(time.Duration(frameStep * float64(time.Second)))
	defer ticker.Stop()

	for n := 0; frames <= 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := w.Tick(ctx, frameStep); err != nil && ctx.Err() == nil {
			w.log.Warn("frame failed", log.Uint64("frame", w.frame), log.Error(err))
		}
	}
	return nil
}

// Close destroys every host.
func (w *World) Close() {
	for _, h := range slices.Backward(w.hosts) {
		h.Destroy()
	}
	w.hosts = nil
	clear(w.byName)
}

func (w *World) reap() {
	w.hosts = slices.DeleteFunc(w.hosts, func(h *host.Host) bool {
		if !h.Destroyed() {
			return false
		}
		if w.byName[h.Name()] == h {
			delete(w.byName, h.Name())
		}
		return true
	})
}

func (w *World) drop(h *host.Host) {
	w.hosts = slices.DeleteFunc(w.hosts, func(x *host.Host) bool { return x == h })
	if w.byName[h.Name()] == h {
		delete(w.byName, h.Name())
	}
}
