package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gen2brain/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/lixenwraith/gravity-wall/constant"
)

// Normalizer turns fetched bytes into a renderable texture
type Normalizer interface {
	Normalize(url string, data []byte) (*Texture, error)
}

// WebPNormalizer center-crops to the target aspect, resamples to a fixed size and
// round-trips the pixels through WebP so the texture holds no reference to the source
type WebPNormalizer struct {
	width   int
	height  int
	quality int
}

// NewWebPNormalizer creates a normalizer producing width x height textures
func NewWebPNormalizer(width, height, quality int) *WebPNormalizer {
	return &WebPNormalizer{width: width, height: height, quality: quality}
}

// Normalize implements Normalizer
func (n *WebPNormalizer) Normalize(url string, data []byte) (*Texture, error) {
	// Header dimensions are checked before decode allocates the frame
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &AcquisitionError{URL: url, Stage: StageDecode, Err: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > constant.TextureMaxSourcePixels {
		return nil, &AcquisitionError{URL: url, Stage: StageDecode,
			Err: fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &AcquisitionError{URL: url, Stage: StageDecode, Err: err}
	}
	if src.Bounds().Empty() {
		return nil, &AcquisitionError{URL: url, Stage: StageDecode, Err: fmt.Errorf("empty image")}
	}

	dst := image.NewRGBA(image.Rect(0, 0, n.width, n.height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds(), n.width, n.height), draw.Src, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, webp.Options{Lossless: false, Quality: n.quality}); err != nil {
		return nil, &AcquisitionError{URL: url, Stage: StageEncode, Err: err}
	}

	decoded, err := webp.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, &AcquisitionError{URL: url, Stage: StageDecode, Err: err}
	}

	pixels, ok := decoded.(*image.RGBA)
	if !ok {
		pixels = image.NewRGBA(image.Rect(0, 0, decoded.Bounds().Dx(), decoded.Bounds().Dy()))
		draw.Draw(pixels, pixels.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	}

	return &Texture{
		URL:     url,
		Encoded: buf.Bytes(),
		Image:   pixels,
	}, nil
}

// coverRect returns the largest centered sub-rectangle of b with the aspect w:h
func coverRect(b image.Rectangle, w, h int) image.Rectangle {
	srcW, srcH := b.Dx(), b.Dy()
	// Compare srcW/srcH against w/h without division
	if srcW*h > srcH*w {
		cropW := max(srcH*w/h, 1)
		x0 := b.Min.X + (srcW-cropW)/2
		return image.Rect(x0, b.Min.Y, x0+cropW, b.Max.Y)
	}
	cropH := max(srcW*h/w, 1)
	y0 := b.Min.Y + (srcH-cropH)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+cropH)
}
