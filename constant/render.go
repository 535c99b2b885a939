package constant

// Projection
const (
	// UnitsPerPixel is the default world units covered by one half-block pixel
	UnitsPerPixel = 6.0

	// PixelsPerRow is the vertical pixel count of one terminal cell (upper-half-block rendering)
	PixelsPerRow = 2
)

// Glyphs
const (
	HalfBlockChar    = '▀'
	SliderFillChar   = '█'
	SliderEmptyChar  = '░'
	SliderLeftCap    = '▕'
	SliderRightCap   = '▏'
	SliderTrackWidth = 20
)

// Background and status bar colors (RGB)
var (
	BackgroundRGB   = [3]uint8{18, 18, 24}
	StatusBgRGB     = [3]uint8{40, 40, 52}
	StatusFgRGB     = [3]uint8{210, 210, 220}
	SliderFillRGB   = [3]uint8{120, 190, 255}
	HeldOutlineRGB  = [3]uint8{255, 220, 120}
	FallbackMarkRGB = [3]uint8{255, 160, 80}
)
