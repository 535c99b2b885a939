// Package engine drives the wall: one loop goroutine owns the physics world and
// interleaves feed ingestion, completed texture acquisitions, terminal events and
// fixed-interval frames. Acquisitions run on their own goroutines and hand results
// back over a channel, so the world is never touched from anywhere but the loop.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/core"
	"github.com/lixenwraith/gravity-wall/feed"
	"github.com/lixenwraith/gravity-wall/physics"
	"github.com/lixenwraith/gravity-wall/texture"
)

// ErrWallClosed is returned by Do after Close
var ErrWallClosed = errors.New("wall closed")

// Acquirer resolves a photo URL to a texture; implemented by texture.Pipeline
type Acquirer interface {
	Acquire(ctx context.Context, url string) (*texture.Texture, error)
}

// Options wires the wall's collaborators. Observer, Notifier, Clock and Fallback are optional.
type Options struct {
	World    *physics.World
	Factory  *physics.Factory
	Acquirer Acquirer
	Renderer Renderer
	Observer Observer
	Notifier SpawnNotifier
	Clock    Clock
	// Fallback reports whether placeholder content is being shown
	Fallback func() bool
	Log      *logrus.Entry
}

type acquisition struct {
	item    feed.Item
	tex     *texture.Texture
	err     error
	elapsed time.Duration
}

type call struct {
	fn   func(*physics.World)
	done chan struct{}
}

// Wall owns the world and everything that mutates it
type Wall struct {
	world    *physics.World
	factory  *physics.Factory
	acquirer Acquirer
	renderer Renderer
	observer Observer
	notifier SpawnNotifier
	clock    Clock
	fallback func() bool
	log      *logrus.Entry

	// pending holds ids with an acquisition in flight
	pending map[string]struct{}
	// deferred holds textures that resolved before the first viewport was known
	deferred []acquisition

	results chan acquisition
	calls   chan call

	done      chan struct{}
	closeOnce sync.Once

	sliding bool
	fps     float64
}

// NewWall creates a wall; the world starts on the first ResizeEvent
func NewWall(opts Options) *Wall {
	w := &Wall{
		world:    opts.World,
		factory:  opts.Factory,
		acquirer: opts.Acquirer,
		renderer: opts.Renderer,
		observer: opts.Observer,
		notifier: opts.Notifier,
		clock:    opts.Clock,
		fallback: opts.Fallback,
		log:      opts.Log,
		pending:  make(map[string]struct{}),
		results:  make(chan acquisition, constant.ResultBufferSize),
		calls:    make(chan call),
		done:     make(chan struct{}),
	}
	if w.observer == nil {
		w.observer = nopObserver{}
	}
	if w.notifier == nil {
		w.notifier = nopNotifier{}
	}
	if w.clock == nil {
		w.clock = SystemClock{}
	}
	if w.fallback == nil {
		w.fallback = func() bool { return false }
	}
	if w.log == nil {
		l := logrus.New()
		w.log = logrus.NewEntry(l)
	}
	if w.world != nil {
		w.observer.ScaleChanged(w.world.Scale())
	}
	return w
}

// World returns the simulation world. Only the loop goroutine may mutate it.
func (w *Wall) World() *physics.World {
	return w.world
}

// Pending returns the number of acquisitions in flight
func (w *Wall) Pending() int {
	return len(w.pending)
}

// Run drives the loop until ctx ends, a QuitEvent arrives or Close is called.
// Closed items or events channels are tolerated; the wall keeps simulating.
func (w *Wall) Run(ctx context.Context, items <-chan feed.Item, events <-chan Event) error {
	ticker := time.NewTicker(constant.FrameUpdateInterval)
	defer ticker.Stop()

	last := w.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-w.done:
			return nil

		case item, ok := <-items:
			if !ok {
				items = nil
				continue
			}
			w.HandleFeedItem(item)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !w.HandleEvent(ev) {
				return nil
			}

		case res := <-w.results:
			w.handleResult(res)

		case c := <-w.calls:
			c.fn(w.world)
			close(c.done)

		case <-ticker.C:
			now := w.clock.Now()
			w.Frame(now.Sub(last))
			last = now
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish
func (w *Wall) Do(ctx context.Context, fn func(*physics.World)) error {
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case w.calls <- c:
	case <-w.done:
		return ErrWallClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop. In-flight acquisitions are abandoned; their results are discarded.
func (w *Wall) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
}

func (w *Wall) closed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Frame advances the simulation by dt and renders it
func (w *Wall) Frame(dt time.Duration) {
	start := time.Now()

	w.world.Advance(dt)
	if dt > 0 {
		instant := float64(time.Second) / float64(dt)
		if w.fps == 0 {
			w.fps = instant
		} else {
			w.fps += (instant - w.fps) * 0.1
		}
	}
	w.renderer.Render(w.world, w.Status())

	w.observer.FrameCompleted(time.Since(start))
}

// Status snapshots what the status row shows
func (w *Wall) Status() Status {
	_, held := w.world.Held()
	return Status{
		Scale:    w.world.Scale(),
		Bodies:   w.world.Len(),
		Pending:  len(w.pending),
		Held:     held,
		Fallback: w.fallback(),
		FPS:      w.fps,
	}
}

// HandleFeedItem starts an acquisition for an eligible item unless its id already
// has a body or an acquisition in flight
func (w *Wall) HandleFeedItem(item feed.Item) {
	if !item.Eligible() {
		return
	}
	if _, inflight := w.pending[item.ID]; inflight || w.world.Has(item.ID) {
		w.observer.ItemSkipped()
		w.log.WithField("id", item.ID).Debug("duplicate feed item skipped")
		return
	}

	w.pending[item.ID] = struct{}{}
	w.observer.ItemReceived(feed.IsFallbackID(item.ID))

	acquirer := w.acquirer
	results := w.results
	done := w.done
	core.Go(func() {
		start := time.Now()
		tex, err := acquirer.Acquire(context.Background(), item.URL)
		res := acquisition{item: item, tex: tex, err: err, elapsed: time.Since(start)}
		select {
		case results <- res:
		case <-done:
		}
	})
}

// handleResult inserts the body for a finished acquisition; runs on the loop goroutine
func (w *Wall) handleResult(res acquisition) {
	delete(w.pending, res.item.ID)
	if w.closed() {
		return
	}

	w.observer.AcquisitionFinished(res.err == nil, res.elapsed)
	if res.err != nil {
		w.log.WithError(res.err).WithField("id", res.item.ID).Warn("photo dropped")
		return
	}

	if w.world.State() != physics.Running {
		w.deferred = append(w.deferred, res)
		return
	}
	w.spawn(res)
}

func (w *Wall) spawn(res acquisition) {
	if w.world.Has(res.item.ID) {
		return
	}
	width, _ := w.world.Viewport()
	body := w.factory.Spawn(res.item.ID, res.tex, w.world.Scale(), width)
	if err := w.world.Insert(body); err != nil {
		w.log.WithError(err).WithField("id", res.item.ID).Error("insert body")
		return
	}
	w.notifier.Spawned()
	w.observer.BodySpawned(w.world.Len())
	w.log.WithFields(logrus.Fields{"id": res.item.ID, "bodies": w.world.Len()}).Debug("body spawned")
}

// HandleEvent applies one input event; it returns false when the loop should stop
func (w *Wall) HandleEvent(ev Event) bool {
	switch e := ev.(type) {
	case QuitEvent:
		return false

	case ResizeEvent:
		w.resize(e.Cols, e.Rows)

	case ScaleEvent:
		target := e.Value
		if !e.Absolute {
			target = w.world.Scale() + e.Delta
		}
		w.setScale(target)

	case PointerEvent:
		w.pointer(e)
	}
	return true
}

// resize recomputes the viewport and moves the boundaries within the same loop turn
func (w *Wall) resize(cols, rows int) {
	width, height := w.renderer.Resize(cols, rows)
	if width <= 0 || height <= 0 {
		return
	}
	if w.world.State() != physics.Running {
		w.world.Init(width, height)
		deferred := w.deferred
		w.deferred = nil
		for _, res := range deferred {
			w.spawn(res)
		}
		return
	}
	w.world.Resize(width, height)
}

func (w *Wall) setScale(v float64) {
	before := w.world.Scale()
	applied := w.world.SetScale(v)
	if applied != before {
		w.observer.ScaleChanged(applied)
		w.log.WithField("scale", applied).Debug("scale changed")
	}
}

func (w *Wall) pointer(e PointerEvent) {
	switch e.Action {
	case PointerDown:
		if v, ok := w.renderer.SliderValueAt(e.Col, e.Row); ok {
			w.sliding = true
			w.setScale(v)
			return
		}
		x, y := w.renderer.CellToWorld(e.Col, e.Row)
		if body, ok := w.world.PointerDown(x, y); ok {
			w.log.WithField("id", body.ID).Debug("body picked")
		}

	case PointerMove:
		if w.sliding {
			if v, ok := w.renderer.SliderValueAt(e.Col, e.Row); ok {
				w.setScale(v)
			}
			return
		}
		x, y := w.renderer.CellToWorld(e.Col, e.Row)
		w.world.PointerMove(x, y)

	case PointerUp:
		if w.sliding {
			w.sliding = false
			return
		}
		if !w.world.PointerUp() {
			w.log.Debug("pointer released with nothing held")
		}
	}
}

// Snapshot returns the current status, read on the loop goroutine
func (w *Wall) Snapshot(ctx context.Context) (Status, error) {
	var st Status
	err := w.Do(ctx, func(*physics.World) { st = w.Status() })
	return st, err
}

// SetScale applies a scale value on the loop goroutine and returns the clamped result
func (w *Wall) SetScale(ctx context.Context, v float64) (float64, error) {
	var applied float64
	err := w.Do(ctx, func(world *physics.World) {
		w.setScale(v)
		applied = world.Scale()
	})
	return applied, err
}
