package render

// PixelBuffer is the half-block framebuffer: one column per terminal cell and
// two pixel rows per terminal row
type PixelBuffer struct {
	pixels []RGB
	width  int
	height int
	clear  RGB
}

// NewPixelBuffer creates a buffer filled with the clear color
func NewPixelBuffer(width, height int, clear RGB) *PixelBuffer {
	b := &PixelBuffer{clear: clear}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocates only if capacity insufficient
func (b *PixelBuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	size := width * height
	if cap(b.pixels) < size {
		b.pixels = make([]RGB, size)
	} else {
		b.pixels = b.pixels[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets all pixels to the clear color using exponential copy
func (b *PixelBuffer) Clear() {
	if len(b.pixels) == 0 {
		return
	}
	b.pixels[0] = b.clear
	for filled := 1; filled < len(b.pixels); filled *= 2 {
		copy(b.pixels[filled:], b.pixels[:filled])
	}
}

// Bounds returns the pixel dimensions
func (b *PixelBuffer) Bounds() (width, height int) {
	return b.width, b.height
}

func (b *PixelBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Set writes one pixel; out-of-bounds writes are ignored
func (b *PixelBuffer) Set(x, y int, c RGB) {
	if !b.inBounds(x, y) {
		return
	}
	b.pixels[y*b.width+x] = c
}

// Get reads one pixel; out-of-bounds reads return the clear color
func (b *PixelBuffer) Get(x, y int) RGB {
	if !b.inBounds(x, y) {
		return b.clear
	}
	return b.pixels[y*b.width+x]
}
