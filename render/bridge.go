package render

import (
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gravity-wall/constant"
)

// TcellToRGB converts tcell.Color to RGB
// Treats ColorDefault as the wall background color
func TcellToRGB(c tcell.Color) RGB {
	if c == tcell.ColorDefault {
		return RGBFrom(constant.BackgroundRGB)
	}
	r, g, b := c.RGB()
	return RGB{uint8(r), uint8(g), uint8(b)}
}

// RGBToTcell converts RGB to tcell.Color
func RGBToTcell(rgb RGB) tcell.Color {
	return tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B))
}

// colorToRGB drops alpha from a texture sample
func colorToRGB(c color.RGBA) RGB {
	return RGB{c.R, c.G, c.B}
}
