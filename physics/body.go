package physics

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/texture"
)

// Collision categories; boundaries are excluded from pointer picking
const (
	categoryBody     uint = 1 << 0
	categoryBoundary uint = 1 << 1
)

// Body is the live simulated rectangle of one feed item
type Body struct {
	ID      string
	Texture *texture.Texture

	// SpawnScale is the scale parameter value the body was created with
	SpawnScale float64

	// Physical extent in world units, corners included
	width  float64
	height float64

	// baseWidth/baseHeight is the rendered size at visualScale 1
	baseWidth   float64
	baseHeight  float64
	visualScale float64

	body  *cp.Body
	shape *cp.Shape
	space *cp.Space
}

// newBody builds a detached dynamic body of the given physical size
func newBody(id string, tex *texture.Texture, spawnScale, width, height float64) *Body {
	mass := constant.BodyDensity * width * height
	b := &Body{
		ID:          id,
		Texture:     tex,
		SpawnScale:  spawnScale,
		width:       width,
		height:      height,
		baseWidth:   width,
		baseHeight:  height,
		visualScale: 1,
		body:        cp.NewBody(mass, cp.MomentForBox(mass, width, height)),
	}
	b.body.UserData = b
	b.shape = b.buildShape()
	return b
}

// buildShape creates the rounded collision box matching the current physical size
func (b *Body) buildShape() *cp.Shape {
	r := cornerRadius(b.width, b.height)
	shape := cp.NewBox(b.body, b.width-2*r, b.height-2*r, r)
	shape.SetElasticity(constant.BodyRestitution)
	shape.SetFriction(constant.BodyFriction)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryBody, cp.ALL_CATEGORIES))
	shape.UserData = b
	return shape
}

func cornerRadius(w, h float64) float64 {
	return constant.CornerRadiusRatio * math.Min(w, h)
}

// attach adds the body and its shape to a space
func (b *Body) attach(space *cp.Space) {
	b.space = space
	space.AddBody(b.body)
	space.AddShape(b.shape)
}

// Rescale multiplies the physical geometry and the visual scale by ratio.
// Mass and moment follow the new area so density stays constant.
func (b *Body) Rescale(ratio float64) {
	if ratio <= 0 || ratio == 1 {
		return
	}

	b.width *= ratio
	b.height *= ratio
	b.visualScale *= ratio

	mass := constant.BodyDensity * b.width * b.height
	b.body.SetMass(mass)
	b.body.SetMoment(cp.MomentForBox(mass, b.width, b.height))

	old := b.shape
	b.shape = b.buildShape()
	if b.space != nil {
		b.space.RemoveShape(old)
		b.space.AddShape(b.shape)
	}
}

// Size returns the physical width and height in world units
func (b *Body) Size() (w, h float64) {
	return b.width, b.height
}

// RenderSize returns the drawn width and height in world units
func (b *Body) RenderSize() (w, h float64) {
	return b.baseWidth * b.visualScale, b.baseHeight * b.visualScale
}

// VisualScale returns the accumulated rescale factor since spawn
func (b *Body) VisualScale() float64 {
	return b.visualScale
}

// CornerRadius returns the rounded-corner radius of the current geometry
func (b *Body) CornerRadius() float64 {
	return cornerRadius(b.width, b.height)
}

// CollisionBounds returns the axis-aligned bounds of the collision shape
func (b *Body) CollisionBounds() cp.BB {
	return b.shape.CacheBB()
}

func (b *Body) Position() cp.Vector {
	return b.body.Position()
}

func (b *Body) SetPosition(p cp.Vector) {
	b.body.SetPosition(p)
}

func (b *Body) Velocity() cp.Vector {
	return b.body.Velocity()
}

func (b *Body) Angle() float64 {
	return b.body.Angle()
}

func (b *Body) SetAngle(a float64) {
	b.body.SetAngle(a)
}

func (b *Body) AngularVelocity() float64 {
	return b.body.AngularVelocity()
}

func (b *Body) SetAngularVelocity(w float64) {
	b.body.SetAngularVelocity(w)
}

func (b *Body) Mass() float64 {
	return b.body.Mass()
}
