package render

import "github.com/lixenwraith/gravity-wall/constant"

// Projection maps terminal cells to world units. A cell is one pixel wide and
// constant.PixelsPerRow pixels tall; the last terminal row is the status bar.
type Projection struct {
	UnitsPerPixel float64
}

// Viewport returns the world-space simulation area for a terminal of cols x rows
func (p Projection) Viewport(cols, rows int) (width, height float64) {
	simRows := rows - 1
	if cols <= 0 || simRows <= 0 {
		return 0, 0
	}
	return float64(cols) * p.UnitsPerPixel, float64(simRows*constant.PixelsPerRow) * p.UnitsPerPixel
}

// CellToWorld returns the world point at the center of a cell
func (p Projection) CellToWorld(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * p.UnitsPerPixel,
		(float64(row*constant.PixelsPerRow) + float64(constant.PixelsPerRow)/2) * p.UnitsPerPixel
}

// PixelCenter returns the world point at the center of a framebuffer pixel
func (p Projection) PixelCenter(px, py int) (x, y float64) {
	return (float64(px) + 0.5) * p.UnitsPerPixel, (float64(py) + 0.5) * p.UnitsPerPixel
}

// WorldToPixel returns the pixel containing a world point
func (p Projection) WorldToPixel(x, y float64) (px, py int) {
	return floorInt(x / p.UnitsPerPixel), floorInt(y / p.UnitsPerPixel)
}

func floorInt(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}
