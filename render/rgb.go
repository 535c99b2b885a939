package render

// RGB is a 24-bit color
type RGB struct {
	R, G, B uint8
}

// RGBFrom converts a constant color triple
func RGBFrom(c [3]uint8) RGB {
	return RGB{c[0], c[1], c[2]}
}

// clamp converts float to uint8 efficiently
func clamp(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

// Lerp blends a toward b by t in [0,1]
func Lerp(a, b RGB, t float64) RGB {
	return RGB{
		R: clamp(float64(a.R) + (float64(b.R)-float64(a.R))*t + 0.5),
		G: clamp(float64(a.G) + (float64(b.G)-float64(a.G))*t + 0.5),
		B: clamp(float64(a.B) + (float64(b.B)-float64(a.B))*t + 0.5),
	}
}

// Scale multiplies each channel by f (dimming below 1)
func Scale(c RGB, f float64) RGB {
	return RGB{
		R: clamp(float64(c.R)*f + 0.5),
		G: clamp(float64(c.G)*f + 0.5),
		B: clamp(float64(c.B)*f + 0.5),
	}
}
