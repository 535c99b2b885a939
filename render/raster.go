package render

import (
	"math"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/physics"
)

// outlineWidth is the held-body highlight width in pixels
const outlineWidth = 1.0

// rasterizeBody draws one body into the framebuffer by inverse-rotating every pixel
// center in its screen bounds into body space and sampling the texture there
func rasterizeBody(buf *PixelBuffer, proj Projection, b *physics.Body, held bool) {
	if b.Texture == nil {
		return
	}

	w, h := b.RenderSize()
	if w <= 0 || h <= 0 {
		return
	}
	hw, hh := w/2, h/2
	r := constant.CornerRadiusRatio * math.Min(w, h)

	pos := b.Position()
	sin, cos := math.Sincos(b.Angle())

	// Rotated half-extents give the axis-aligned screen bounds
	ex := math.Abs(cos)*hw + math.Abs(sin)*hh
	ey := math.Abs(sin)*hw + math.Abs(cos)*hh
	minX, minY := proj.WorldToPixel(pos.X-ex, pos.Y-ey)
	maxX, maxY := proj.WorldToPixel(pos.X+ex, pos.Y+ey)

	bw, bh := buf.Bounds()
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, bw-1), min(maxY, bh-1)

	outline := outlineWidth * proj.UnitsPerPixel
	highlight := RGBFrom(constant.HeldOutlineRGB)

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			wx, wy := proj.PixelCenter(px, py)
			dx, dy := wx-pos.X, wy-pos.Y
			lx := dx*cos + dy*sin
			ly := -dx*sin + dy*cos

			depth := insideDepth(lx, ly, hw, hh, r)
			if depth < 0 {
				continue
			}

			c := colorToRGB(b.Texture.At(lx/w+0.5, ly/h+0.5))
			if held && depth < outline {
				c = Lerp(c, highlight, 0.75)
			}
			buf.Set(px, py, c)
		}
	}
}

// insideDepth returns how far (lx, ly) lies inside the rounded rectangle, negative outside
func insideDepth(lx, ly, hw, hh, r float64) float64 {
	ax, ay := math.Abs(lx), math.Abs(ly)
	if ax > hw || ay > hh {
		return -1
	}
	qx, qy := ax-(hw-r), ay-(hh-r)
	if qx > 0 && qy > 0 {
		// Corner region: distance to the corner arc
		return r - math.Hypot(qx, qy)
	}
	return math.Min(hw-ax, hh-ay)
}
