// Package physics hosts the simulation world: boundaries, the body registry,
// the global scale parameter and the pointer drag constraint, on top of Chipmunk2D.
// Coordinates are screen-oriented world units with +Y pointing down.
package physics

import (
	"errors"
	"fmt"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/constant"
)

// State is the world lifecycle state
type State int

const (
	Uninitialized State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrDuplicateBody = errors.New("body already exists for id")
	ErrUninitialized = errors.New("world not initialized")
)

// World owns the cp space and every live body. It is not safe for concurrent use;
// all calls come from the wall loop goroutine.
type World struct {
	space *cp.Space
	state State
	log   logrus.FieldLogger

	width  float64
	height float64
	bounds map[BoundaryKind]*boundary

	bodies map[string]*Body
	order  []*Body

	scale float64

	// pending carries sub-step remainder between Advance calls
	pending time.Duration
	steps   uint64

	pointer pointerState
}

// NewWorld creates an uninitialized world holding the initial scale value
func NewWorld(initialScale float64, log logrus.FieldLogger) *World {
	space := cp.NewSpace()
	space.Iterations = constant.SolverIterations
	space.SetGravity(cp.Vector{X: 0, Y: constant.Gravity})
	space.SetDamping(constant.AirDamping)

	return &World{
		space:   space,
		state:   Uninitialized,
		log:     log,
		bounds:  make(map[BoundaryKind]*boundary, 3),
		bodies:  make(map[string]*Body),
		scale:   clampScale(initialScale),
		pointer: newPointerState(),
	}
}

// Init installs the boundaries for the first viewport and starts the world
func (w *World) Init(width, height float64) {
	if w.state == Running {
		w.Resize(width, height)
		return
	}
	w.width, w.height = width, height
	w.installBoundaries()
	w.state = Running
	w.log.WithFields(logrus.Fields{"width": width, "height": height}).Info("world running")
}

// State returns the lifecycle state
func (w *World) State() State {
	return w.state
}

// Viewport returns the current viewport size in world units
func (w *World) Viewport() (width, height float64) {
	return w.width, w.height
}

// Resize moves the floor and right wall to the new viewport edges.
// Bodies are left where they are; contacts push strays back in over the next steps.
func (w *World) Resize(width, height float64) {
	if w.state != Running {
		w.Init(width, height)
		return
	}
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	w.installBoundaries()
	w.log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("world resized")
}

// Advance integrates dt of simulated time in fixed sub-steps.
// dt is clamped so a stalled frame cannot explode the solver.
func (w *World) Advance(dt time.Duration) {
	if w.state != Running || dt <= 0 {
		return
	}
	if dt > constant.MaxFrameDelta {
		dt = constant.MaxFrameDelta
	}

	w.pending += dt
	step := constant.PhysicsSubstep.Seconds()
	for w.pending >= constant.PhysicsSubstep {
		w.pointer.track(step)
		w.space.Step(step)
		w.pending -= constant.PhysicsSubstep
		w.steps++
	}
}

// Steps returns the number of integration sub-steps taken
func (w *World) Steps() uint64 {
	return w.steps
}

// Insert adds a spawned body to the world
func (w *World) Insert(b *Body) error {
	if w.state != Running {
		return ErrUninitialized
	}
	if _, exists := w.bodies[b.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBody, b.ID)
	}
	b.attach(w.space)
	w.bodies[b.ID] = b
	w.order = append(w.order, b)
	return nil
}

// Has reports whether a body exists for id
func (w *World) Has(id string) bool {
	_, ok := w.bodies[id]
	return ok
}

// Body returns the body for id
func (w *World) Body(id string) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Bodies returns live bodies in insertion order
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.order))
	copy(out, w.order)
	return out
}

// Len returns the live body count
func (w *World) Len() int {
	return len(w.order)
}

// Scale returns the current scale parameter
func (w *World) Scale() float64 {
	return w.scale
}

// SetScale clamps v to the scale range, rescales every live body by new/old
// and returns the applied value
func (w *World) SetScale(v float64) float64 {
	v = clampScale(v)
	if v == w.scale {
		return v
	}
	ratio := v / w.scale
	w.scale = v
	w.RescaleAll(ratio)
	return v
}

// RescaleAll applies ratio to the geometry and visual scale of every live body
func (w *World) RescaleAll(ratio float64) {
	for _, b := range w.order {
		b.Rescale(ratio)
	}
	if w.pointer.held != nil {
		w.pointer.retune()
	}
}

func clampScale(v float64) float64 {
	if v < constant.ScaleMin {
		return constant.ScaleMin
	}
	if v > constant.ScaleMax {
		return constant.ScaleMax
	}
	return v
}
