package truecolor

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// A CompositeImage is three same-shaped reflectance channels. It also
// implements hdr.Image (reflectance/10000 per channel), so it can be
// written out as a .hdr, or fed to an HDR tonemapping operator.
type CompositeImage struct {
	Red   Band
	Green Band
	Blue  Band
}

func NewCompositeImage(red, green, blue Band) (CompositeImage, error) {
	if err := checkShape("composite green", red.FloatGrid, green.FloatGrid); err != nil {
		return CompositeImage{}, err
	}
	if err := checkShape("composite blue", red.FloatGrid, blue.FloatGrid); err != nil {
		return CompositeImage{}, err
	}
	return CompositeImage{Red: red, Green: green, Blue: blue}, nil
}

func (ci CompositeImage) Channels() []Band { return []Band{ci.Red, ci.Green, ci.Blue} }

func (ci CompositeImage) ColorModel() color.Model { return hdrcolor.RGBModel }
func (ci CompositeImage) Bounds() image.Rectangle { return image.Rectangle{Max: ci.Red.Shape()} }
func (ci CompositeImage) At(x, y int) color.Color { return ci.HDRAt(x, y) }

// Implement hdr.Image
func (ci CompositeImage) HDRAt(x, y int) hdrcolor.Color {
	return hdrcolor.RGB{
		R: ci.Red.Get(x, y) / 10000.0,
		G: ci.Green.Get(x, y) / 10000.0,
		B: ci.Blue.Get(x, y) / 10000.0,
	}
}
func (ci CompositeImage) Size() int { return ci.Red.Len() }

func (ci CompositeImage) String() string {
	return fmt.Sprintf("composite[R:%s G:%s B:%s]", ci.Red, ci.Green, ci.Blue)
}

// A Compositor assembles reflectance bands into an RGB composite.
type Compositor interface {
	// RequiredBands are the band ids Composite needs, in the order it wants them.
	RequiredBands() []string
	Composite(refl map[string]Band) (CompositeImage, error)
}

// requireBands panics unless refl holds exactly the ids. Being handed
// the wrong band set is a programming error in the caller.
func requireBands(name string, refl map[string]Band, ids []string) {
	if len(refl) != len(ids) {
		panic(fmt.Sprintf("%s compositor: wants %d bands %v, was given %d", name, len(ids), ids, len(refl)))
	}
	for _, id := range ids {
		if _, exists := refl[id]; !exists {
			panic(fmt.Sprintf("%s compositor: band %s missing", name, id))
		}
	}
}

// DirectCompositor assigns B4->red, B3->green, B2->blue.
type DirectCompositor struct{}

func (DirectCompositor) RequiredBands() []string { return []string{BandBlue, BandGreen, BandRed} }

func (dc DirectCompositor) Composite(refl map[string]Band) (CompositeImage, error) {
	requireBands("direct", refl, dc.RequiredBands())
	relabel := func(b Band) Band { return b.withGrid(UnitCompositedReflectance, b.FloatGrid) }
	return NewCompositeImage(relabel(refl[BandRed]), relabel(refl[BandGreen]), relabel(refl[BandBlue]))
}

// A PanSharpener fuses the colour bands with the higher resolution
// panchromatic band. It returns grids keyed "blue", "green" and "red",
// on the pan grid.
type PanSharpener interface {
	Fuse(blue, green, red, pan emath.FloatGrid) (map[string]emath.FloatGrid, error)
}

// PanSharpenCompositor hands B2,B3,B4,B8 (in that order) to its
// PanSharpener and uses the fused outputs as the composite.
type PanSharpenCompositor struct {
	Sharpener PanSharpener
}

func (PanSharpenCompositor) RequiredBands() []string {
	return []string{BandBlue, BandGreen, BandRed, BandPan}
}

func (pc PanSharpenCompositor) Composite(refl map[string]Band) (CompositeImage, error) {
	requireBands("pan-sharpen", refl, pc.RequiredBands())

	fused, err := pc.Sharpener.Fuse(refl[BandBlue].FloatGrid, refl[BandGreen].FloatGrid,
		refl[BandRed].FloatGrid, refl[BandPan].FloatGrid)
	if err != nil {
		return CompositeImage{}, err
	}

	ch := map[string]Band{}
	for key, id := range map[string]string{"blue": BandBlue, "green": BandGreen, "red": BandRed} {
		g, exists := fused[key]
		if !exists {
			return CompositeImage{}, fmt.Errorf("pan-sharpen: fusion returned no %q channel", key)
		}
		ch[key] = NewBand(id, UnitCompositedSharpened, g)
	}

	return NewCompositeImage(ch["red"], ch["green"], ch["blue"])
}

// BroveySharpener up-samples the colour bands onto the pan grid, and
// scales each by pan over the mean of the three.
type BroveySharpener struct{}

func (BroveySharpener) Fuse(blue, green, red, pan emath.FloatGrid) (map[string]emath.FloatGrid, error) {
	if err := checkShape("brovey green", blue, green); err != nil {
		return nil, err
	}
	if err := checkShape("brovey red", blue, red); err != nil {
		return nil, err
	}

	w, h := pan.Dx(), pan.Dy()
	up := []emath.FloatGrid{blue.UpSample(w, h), green.UpSample(w, h), red.UpSample(w, h)}
	out := []emath.FloatGrid{emath.NewFloatGrid(w, h), emath.NewFloatGrid(w, h), emath.NewFloatGrid(w, h)}

	emath.ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				mean := (up[0].Get(x, y) + up[1].Get(x, y) + up[2].Get(x, y)) / 3.0
				for i := range up {
					v := 0.0
					if mean != 0 {
						v = up[i].Get(x, y) * pan.Get(x, y) / mean
					}
					out[i].Set(x, y, v)
				}
			}
		}
	})

	return map[string]emath.FloatGrid{"blue": out[0], "green": out[1], "red": out[2]}, nil
}
