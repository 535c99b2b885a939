// Package render draws the wall onto a tcell screen using upper-half-block cells,
// giving two vertically stacked pixels per terminal cell, plus a one-row status bar
// holding the scale slider.
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/engine"
	"github.com/lixenwraith/gravity-wall/physics"
)

// Status bar layout
const (
	sliderLabel = " scale "
	sliderStart = len(sliderLabel) + 1 // first track column, after the left cap
)

// Renderer implements engine.Renderer on a tcell.Screen
type Renderer struct {
	screen tcell.Screen
	proj   Projection
	buf    *PixelBuffer
	cols   int
	rows   int

	statusStyle tcell.Style
	fillStyle   tcell.Style
	markStyle   tcell.Style
}

// NewRenderer creates a renderer; call Resize before the first Render
func NewRenderer(screen tcell.Screen, unitsPerPixel float64) *Renderer {
	statusBg := RGBToTcell(RGBFrom(constant.StatusBgRGB))
	return &Renderer{
		screen:      screen,
		proj:        Projection{UnitsPerPixel: unitsPerPixel},
		buf:         NewPixelBuffer(0, 0, RGBFrom(constant.BackgroundRGB)),
		statusStyle: tcell.StyleDefault.Background(statusBg).Foreground(RGBToTcell(RGBFrom(constant.StatusFgRGB))),
		fillStyle:   tcell.StyleDefault.Background(statusBg).Foreground(RGBToTcell(RGBFrom(constant.SliderFillRGB))),
		markStyle:   tcell.StyleDefault.Background(statusBg).Foreground(RGBToTcell(RGBFrom(constant.FallbackMarkRGB))).Bold(true),
	}
}

// Resize implements engine.Renderer
func (r *Renderer) Resize(cols, rows int) (width, height float64) {
	r.cols, r.rows = cols, rows
	r.buf.Resize(cols, max(rows-1, 0)*constant.PixelsPerRow)
	return r.proj.Viewport(cols, rows)
}

// CellToWorld implements engine.Renderer
func (r *Renderer) CellToWorld(col, row int) (x, y float64) {
	return r.proj.CellToWorld(col, row)
}

// SliderValueAt implements engine.Renderer: a click on the track maps linearly to the scale range
func (r *Renderer) SliderValueAt(col, row int) (float64, bool) {
	if r.rows == 0 || row != r.rows-1 {
		return 0, false
	}
	pos := col - sliderStart
	if pos < 0 || pos >= constant.SliderTrackWidth {
		return 0, false
	}
	t := float64(pos) / float64(constant.SliderTrackWidth-1)
	return math.Round(constant.ScaleMin + t*(constant.ScaleMax-constant.ScaleMin)), true
}

// Render implements engine.Renderer
func (r *Renderer) Render(world *physics.World, status engine.Status) {
	r.buf.Clear()

	held, _ := world.Held()
	for _, b := range world.Bodies() {
		rasterizeBody(r.buf, r.proj, b, b == held)
	}

	r.flush()
	r.drawStatus(status)
	r.screen.Show()
}

// flush emits one half-block cell per pixel pair
func (r *Renderer) flush() {
	width, height := r.buf.Bounds()
	for row := 0; row*constant.PixelsPerRow < height; row++ {
		y := row * constant.PixelsPerRow
		for col := 0; col < width; col++ {
			top := r.buf.Get(col, y)
			bottom := r.buf.Get(col, y+1)
			style := tcell.StyleDefault.Foreground(RGBToTcell(top)).Background(RGBToTcell(bottom))
			r.screen.SetContent(col, row, constant.HalfBlockChar, nil, style)
		}
	}
}

func (r *Renderer) drawStatus(status engine.Status) {
	if r.rows < 1 {
		return
	}
	row := r.rows - 1
	for col := 0; col < r.cols; col++ {
		r.screen.SetContent(col, row, ' ', nil, r.statusStyle)
	}

	col := r.drawText(0, row, sliderLabel, r.statusStyle)
	r.screen.SetContent(col, row, constant.SliderLeftCap, nil, r.statusStyle)

	t := (status.Scale - constant.ScaleMin) / (constant.ScaleMax - constant.ScaleMin)
	filled := int(math.Round(t * float64(constant.SliderTrackWidth)))
	for i := 0; i < constant.SliderTrackWidth; i++ {
		if i < filled {
			r.screen.SetContent(sliderStart+i, row, constant.SliderFillChar, nil, r.fillStyle)
		} else {
			r.screen.SetContent(sliderStart+i, row, constant.SliderEmptyChar, nil, r.statusStyle)
		}
	}
	col = sliderStart + constant.SliderTrackWidth
	r.screen.SetContent(col, row, constant.SliderRightCap, nil, r.statusStyle)

	info := fmt.Sprintf(" %3.0f%%  photos %d", status.Scale, status.Bodies)
	if status.Pending > 0 {
		info += fmt.Sprintf("  loading %d", status.Pending)
	}
	if status.Held {
		info += "  holding"
	}
	col = r.drawText(col+1, row, info, r.statusStyle)

	if status.Fallback {
		col = r.drawText(col+2, row, "DEMO", r.markStyle)
	}

	if status.FPS > 0 {
		fps := fmt.Sprintf("%.0f fps ", status.FPS)
		if start := r.cols - len(fps); start > col {
			r.drawText(start, row, fps, r.statusStyle)
		}
	}
}

// drawText writes s from col and returns the column after it
func (r *Renderer) drawText(col, row int, s string, style tcell.Style) int {
	for _, ch := range s {
		if col >= r.cols {
			break
		}
		r.screen.SetContent(col, row, ch, nil, style)
		col++
	}
	return col
}

