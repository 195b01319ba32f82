package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

const (
	defaultMaxWidth = 800
	defaultQuality  = 60
	// maxSourcePixels refuses decompression bombs before decoding.
	maxSourcePixels = 40_000_000
)

// ImageStamper downsizes a raster image, tiles the watermark text across it
// and re-encodes it as a low quality JPEG.
type ImageStamper struct {
	MaxWidth int
	Quality  int
}

func NewImageStamper() ImageStamper {
	return ImageStamper{MaxWidth: defaultMaxWidth, Quality: defaultQuality}
}

func (s ImageStamper) Stamp(_ context.Context, data []byte, text string) ([]byte, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, "", fmt.Errorf("image %dx%d is too large to preview", cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	dst := downscale(src, s.MaxWidth)
	tileText(dst, text)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.Quality}); err != nil {
		return nil, "", fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

func downscale(src image.Image, maxWidth int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// tileText repeats text in staggered rows so it cannot be cropped out.
func tileText(dst *image.RGBA, text string) {
	face := basicfont.Face7x13
	shadow := &font.Drawer{Dst: dst, Src: image.NewUniform(color.NRGBA{A: 110}), Face: face}
	ink := &font.Drawer{Dst: dst, Src: image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 150}), Face: face}

	step := ink.MeasureString(text + "    ").Ceil()
	if step <= 0 {
		return
	}
	lineHeight := face.Metrics().Height.Ceil() * 4

	b := dst.Bounds()
	for row, y := 0, lineHeight; y < b.Dy()+lineHeight; row, y = row+1, y+lineHeight {
		offset := (row * step / 3) % step
		for x := -offset; x < b.Dx(); x += step {
			shadow.Dot = fixed.P(x+1, y+1)
			shadow.DrawString(text)
			ink.Dot = fixed.P(x, y)
			ink.DrawString(text)
		}
	}
}
