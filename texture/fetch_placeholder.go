package texture

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/url"
)

const (
	placeholderWidth  = 320
	placeholderHeight = 240
)

// Named placeholder palettes: sky top, sky bottom, accent
var placeholderPalettes = map[string][3]color.RGBA{
	"sunset":  {{255, 94, 77, 255}, {255, 195, 113, 255}, {255, 240, 200, 255}},
	"lagoon":  {{0, 119, 182, 255}, {144, 224, 239, 255}, {255, 255, 255, 255}},
	"meadow":  {{106, 176, 76, 255}, {186, 220, 88, 255}, {255, 221, 89, 255}},
	"berry":   {{113, 28, 145, 255}, {234, 0, 217, 255}, {255, 200, 240, 255}},
	"slate":   {{52, 73, 94, 255}, {149, 165, 166, 255}, {236, 240, 241, 255}},
	"ember":   {{120, 20, 10, 255}, {230, 126, 34, 255}, {255, 230, 150, 255}},
	"glacier": {{72, 126, 176, 255}, {225, 245, 254, 255}, {255, 255, 255, 255}},
	"citrus":  {{241, 196, 15, 255}, {255, 250, 200, 255}, {46, 204, 113, 255}},
}

// PlaceholderFetcher renders placeholder://<name> URLs into PNG bytes without network access
type PlaceholderFetcher struct{}

// Fetch implements Fetcher
func (PlaceholderFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "placeholder" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	name := u.Host
	if name == "" {
		name = u.Opaque
	}
	palette, ok := placeholderPalettes[name]
	if !ok {
		palette = hashedPalette(name)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, renderPlaceholder(palette)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hashedPalette(name string) [3]color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return [3]color.RGBA{
		{uint8(v), uint8(v >> 8), uint8(v >> 16), 255},
		{uint8(v>>16) | 0x80, uint8(v) | 0x80, uint8(v>>8) | 0x80, 255},
		{255, 255, 255, 255},
	}
}

// renderPlaceholder draws a vertical gradient with a soft disc
func renderPlaceholder(p [3]color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	cx, cy := float64(placeholderWidth)*0.7, float64(placeholderHeight)*0.35
	radius := float64(placeholderHeight) * 0.18

	for y := 0; y < placeholderHeight; y++ {
		t := float64(y) / float64(placeholderHeight-1)
		row := lerpRGBA(p[0], p[1], t)
		for x := 0; x < placeholderWidth; x++ {
			c := row
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d < radius {
				c = p[2]
			} else if d < radius*1.4 {
				c = lerpRGBA(p[2], row, (d-radius)/(radius*0.4))
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}
