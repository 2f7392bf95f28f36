package truecolor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// A RenderedImage is the final 8-bit RGB artifact.
type RenderedImage struct {
	*image.RGBA
}

// NewRenderedImage truncates (not rounds) each channel value to uint8.
func NewRenderedImage(red, green, blue emath.FloatGrid) (*RenderedImage, error) {
	if err := checkShape("render green", red, green); err != nil {
		return nil, err
	}
	if err := checkShape("render blue", red, blue); err != nil {
		return nil, err
	}

	w, h := red.Dx(), red.Dy()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	emath.ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: emath.TruncateUint8(red.Get(x, y)),
					G: emath.TruncateUint8(green.Get(x, y)),
					B: emath.TruncateUint8(blue.Get(x, y)),
					A: 0xFF,
				})
			}
		}
	})
	return &RenderedImage{img}, nil
}

// Quantize renders a tone mapped composite.
func Quantize(ci CompositeImage) (*RenderedImage, error) {
	return NewRenderedImage(ci.Red.FloatGrid, ci.Green.FloatGrid, ci.Blue.FloatGrid)
}

// Channel returns one of the three channels (0=R, 1=G, 2=B) as floats.
func (ri *RenderedImage) Channel(c int) emath.FloatGrid {
	w, h := ri.Bounds().Dx(), ri.Bounds().Dy()
	g := emath.NewFloatGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, float64(ri.Pix[ri.PixOffset(x, y)+c]))
		}
	}
	return g
}

func (ri *RenderedImage) EncodePNG(w io.Writer) error {
	return png.Encode(w, ri.RGBA)
}

func (ri *RenderedImage) PNGBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := ri.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MeanColor is the average pixel value.
func (ri *RenderedImage) MeanColor() colorful.Color {
	var r, g, b float64
	n := float64(ri.Bounds().Dx() * ri.Bounds().Dy())
	if n == 0 {
		return colorful.Color{}
	}
	for i := 0; i+3 < len(ri.Pix); i += 4 {
		r += float64(ri.Pix[i])
		g += float64(ri.Pix[i+1])
		b += float64(ri.Pix[i+2])
	}
	return colorful.Color{R: r / n / 255.0, G: g / n / 255.0, B: b / n / 255.0}.Clamped()
}

func (ri *RenderedImage) String() string {
	return fmt.Sprintf("rendered[%dx%d, mean %s]", ri.Bounds().Dx(), ri.Bounds().Dy(), ri.MeanColor().Hex())
}
