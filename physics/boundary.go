package physics

import (
	"github.com/jakecoffman/cp"

	"github.com/lixenwraith/gravity-wall/constant"
)

// BoundaryKind identifies a static wall
type BoundaryKind int

const (
	Floor BoundaryKind = iota
	LeftWall
	RightWall
)

func (k BoundaryKind) String() string {
	switch k {
	case Floor:
		return "floor"
	case LeftWall:
		return "left"
	case RightWall:
		return "right"
	default:
		return "unknown"
	}
}

// Boundary describes a wall by the center of its inner face
type Boundary struct {
	Kind   BoundaryKind
	Anchor cp.Vector
}

type boundary struct {
	Boundary
	shape *cp.Shape
}

// Boundary returns the wall of the given kind; ok is false before Init
func (w *World) Boundary(kind BoundaryKind) (Boundary, bool) {
	b, ok := w.bounds[kind]
	if !ok {
		return Boundary{}, false
	}
	return b.Boundary, true
}

// installBoundaries replaces the three walls to fit the current viewport.
// Each wall is a thick segment whose inner face sits on the viewport edge; side walls
// extend far above the viewport so falling bodies stay between them. There is no ceiling.
func (w *World) installBoundaries() {
	for kind, b := range w.bounds {
		w.space.RemoveShape(b.shape)
		delete(w.bounds, kind)
	}

	t := constant.BoundaryThickness
	r := t / 2
	W, H := w.width, w.height
	top := -H * constant.BoundaryHeadroom

	w.addBoundary(Floor, cp.Vector{X: W / 2, Y: H},
		cp.Vector{X: -t, Y: H + r}, cp.Vector{X: W + t, Y: H + r}, r)
	w.addBoundary(LeftWall, cp.Vector{X: 0, Y: H / 2},
		cp.Vector{X: -r, Y: top}, cp.Vector{X: -r, Y: H + t}, r)
	w.addBoundary(RightWall, cp.Vector{X: W, Y: H / 2},
		cp.Vector{X: W + r, Y: top}, cp.Vector{X: W + r, Y: H + t}, r)
}

func (w *World) addBoundary(kind BoundaryKind, anchor, a, b cp.Vector, radius float64) {
	shape := cp.NewSegment(w.space.StaticBody, a, b, radius)
	shape.SetElasticity(constant.BoundaryRestitution)
	shape.SetFriction(constant.BoundaryFriction)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryBoundary, cp.ALL_CATEGORIES))
	w.space.AddShape(shape)
	w.bounds[kind] = &boundary{
		Boundary: Boundary{Kind: kind, Anchor: anchor},
		shape:    shape,
	}
}
