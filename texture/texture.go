// Package texture turns remote photo URLs into locally decoded, self-contained
// textures and caches them by URL for the lifetime of the session.
package texture

import (
	"image"
	"image/color"
)

// Texture is a normalized photo ready for rasterizing
type Texture struct {
	URL string
	// Encoded is the self-contained re-encoded form the pixels were decoded from
	Encoded []byte
	Image   *image.RGBA
}

// Width returns the pixel width
func (t *Texture) Width() int {
	return t.Image.Bounds().Dx()
}

// Height returns the pixel height
func (t *Texture) Height() int {
	return t.Image.Bounds().Dy()
}

// At samples the texture at normalized coordinates (0..1), clamped to the edges
func (t *Texture) At(u, v float64) color.RGBA {
	b := t.Image.Bounds()
	x := b.Min.X + int(u*float64(b.Dx()))
	y := b.Min.Y + int(v*float64(b.Dy()))
	if x < b.Min.X {
		x = b.Min.X
	} else if x >= b.Max.X {
		x = b.Max.X - 1
	}
	if y < b.Min.Y {
		y = b.Min.Y
	} else if y >= b.Max.Y {
		y = b.Max.Y - 1
	}
	return t.Image.RGBAAt(x, y)
}

// Solid builds an unencoded single-color texture, used where no remote source exists
func Solid(url string, w, h int, c color.RGBA) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &Texture{URL: url, Image: img}
}
