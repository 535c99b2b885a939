package physics

import (
	"math/rand/v2"

	"github.com/jakecoffman/cp"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/texture"
)

// Factory creates bodies with randomized size, placement and spin
type Factory struct {
	rng *rand.Rand
}

// NewFactory creates a factory; seed 0 draws a random seed
func NewFactory(seed uint64) *Factory {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Factory{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Spawn builds a detached body for one feed item.
// Width is drawn from the base range then multiplied by scale/100; the body starts
// above the viewport at a random x that keeps it fully between the side walls.
func (f *Factory) Spawn(id string, tex *texture.Texture, scale, viewportWidth float64) *Body {
	base := constant.BodyBaseWidthMin + f.rng.Float64()*(constant.BodyBaseWidthMax-constant.BodyBaseWidthMin)
	width := base * scale / 100
	height := width * constant.BodyAspect

	b := newBody(id, tex, scale, width, height)

	halfW := width / 2
	x := viewportWidth / 2
	if span := viewportWidth - width; span > 0 {
		x = halfW + f.rng.Float64()*span
	}
	y := -(height/2 + constant.SpawnHeightAbove)

	b.SetPosition(cp.Vector{X: x, Y: y})
	b.SetAngle(f.symmetric(constant.SpawnTiltMax))
	b.SetAngularVelocity(f.symmetric(constant.SpawnSpinMax))
	return b
}

// symmetric returns a uniform value in [-limit, limit]
func (f *Factory) symmetric(limit float64) float64 {
	return (f.rng.Float64()*2 - 1) * limit
}
