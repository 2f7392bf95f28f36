package truecolor

import (
	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// A ContrastEnhancer is bound to an image and a midpoint, and produces
// a new image with the contrast scaled by some factor.
type ContrastEnhancer interface {
	Enhance(factor float64) (*RenderedImage, error)
}

// Contrast stretches each channel away from a fixed midpoint value. The
// midpoint does not depend on the image, so the same input always
// gives the same output.
type Contrast struct {
	Image    *RenderedImage
	Midpoint float64
}

func NewContrast(img *RenderedImage, midpoint float64) Contrast {
	return Contrast{Image: img, Midpoint: midpoint}
}

// Enhance computes clip(mid + (in-mid)*factor, 0, 255), truncated to 8
// bits. A factor of 1 returns an identical image.
func (c Contrast) Enhance(factor float64) (*RenderedImage, error) {
	mid := c.Midpoint
	return blendChannels(c.Image, func(_ int, in emath.FloatGrid) emath.FloatGrid {
		return in.Map(func(v float64) float64 { return emath.Clip(mid+(v-mid)*factor, 0, 255) })
	})
}

// Sharpness blends each channel with a smoothed copy of itself; factors
// above 1 sharpen, below 1 soften.
type Sharpness struct {
	Image *RenderedImage
}

func NewSharpness(img *RenderedImage) Sharpness { return Sharpness{Image: img} }

func (s Sharpness) Enhance(factor float64) (*RenderedImage, error) {
	return blendChannels(s.Image, func(_ int, in emath.FloatGrid) emath.FloatGrid {
		blur := in.GaussianBlur()
		out := in.NewFromThis()
		for y := 0; y < in.Dy(); y++ {
			for x := 0; x < in.Dx(); x++ {
				b := blur.Get(x, y)
				out.Set(x, y, emath.Clip(b+(in.Get(x, y)-b)*factor, 0, 255))
			}
		}
		return out
	})
}

func blendChannels(img *RenderedImage, f func(c int, in emath.FloatGrid) emath.FloatGrid) (*RenderedImage, error) {
	var out [3]emath.FloatGrid
	for c := range out {
		out[c] = f(c, img.Channel(c))
	}
	return NewRenderedImage(out[0], out[1], out[2])
}
