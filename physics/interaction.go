package physics

import (
	"github.com/jakecoffman/cp"

	"github.com/lixenwraith/gravity-wall/constant"
)

// pointerLerp is how far the pointer body closes on the target per sub-step
const pointerLerp = 0.25

// pointerState is the single-pointer drag model: a kinematic body chases the pointer
// and a pivot joint with bounded force pulls the held body's center toward it
type pointerState struct {
	body   *cp.Body
	target cp.Vector
	drag   *cp.Constraint
	held   *Body
}

func newPointerState() pointerState {
	return pointerState{body: cp.NewKinematicBody()}
}

// track moves the kinematic body toward the target and gives it the matching velocity
// so the joint imparts momentum that survives release
func (p *pointerState) track(dt float64) {
	pos := p.body.Position()
	next := pos.Lerp(p.target, pointerLerp)
	p.body.SetVelocityVector(next.Sub(pos).Mult(1 / dt))
	p.body.SetPosition(next)
}

// retune scales the joint force to the held body's current mass
func (p *pointerState) retune() {
	if p.drag == nil || p.held == nil {
		return
	}
	p.drag.SetMaxForce(constant.DragMaxForceFactor * p.held.Mass())
}

// PointerMove updates the tracked pointer position
func (w *World) PointerMove(x, y float64) {
	w.pointer.target = cp.Vector{X: x, Y: y}
}

// PointerDown picks the body under the pointer and installs the drag constraint.
// A previously held body is released first.
func (w *World) PointerDown(x, y float64) (*Body, bool) {
	if w.state != Running {
		return nil, false
	}

	p := cp.Vector{X: x, Y: y}
	w.pointer.target = p
	w.pointer.body.SetPosition(p)
	w.pointer.body.SetVelocityVector(cp.Vector{})

	filter := cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: categoryBody}
	info := w.space.PointQueryNearest(p, constant.PointerPickRadius, filter)
	if info.Shape == nil {
		return nil, false
	}
	picked, ok := info.Shape.UserData.(*Body)
	if !ok {
		return nil, false
	}

	w.PointerUp()

	joint := cp.NewPivotJoint2(w.pointer.body, picked.body, cp.Vector{}, cp.Vector{})
	joint.SetMaxForce(constant.DragMaxForceFactor * picked.Mass())
	joint.SetErrorBias(constant.DragErrorBias)
	w.space.AddConstraint(joint)

	w.pointer.drag = joint
	w.pointer.held = picked
	return picked, true
}

// PointerUp removes the drag constraint. It returns false when nothing was held,
// which callers treat as a no-op.
func (w *World) PointerUp() bool {
	if w.pointer.drag == nil {
		return false
	}
	w.space.RemoveConstraint(w.pointer.drag)
	w.pointer.drag = nil
	w.pointer.held = nil
	return true
}

// Held returns the body currently being dragged
func (w *World) Held() (*Body, bool) {
	return w.pointer.held, w.pointer.held != nil
}
