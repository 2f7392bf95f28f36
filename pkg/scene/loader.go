package scene

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
	"github.com/abworrall/ls8-truecolor/pkg/truecolor"
)

func BandFilename(granule, band string) string {
	return fmt.Sprintf("%s_%s.TIF", granule, band)
}

// TIFFLoader loads extracted band and geometry TIFFs.
type TIFFLoader struct{}

func decodeTIFF(filename string) (image.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := tiff.Decode(f)
	return img, errors.Wrapf(err, "decode %s", filepath.Base(filename))
}

func tiffSize(filename string) (image.Point, error) {
	f, err := os.Open(filename)
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()
	cfg, err := tiff.DecodeConfig(f)
	if err != nil {
		return image.Point{}, errors.Wrapf(err, "decode config %s", filepath.Base(filename))
	}
	return image.Point{cfg.Width, cfg.Height}, nil
}

// toGrid copies the part of a single channel image inside r into a FloatGrid.
func toGrid(img image.Image, r image.Rectangle) (emath.FloatGrid, error) {
	var at func(x, y int) float64
	switch src := img.(type) {
	case *image.Gray16:
		at = func(x, y int) float64 { return float64(src.Gray16At(x, y).Y) }
	case *image.Gray:
		at = func(x, y int) float64 { return float64(src.GrayAt(x, y).Y) }
	default:
		return emath.FloatGrid{}, errors.Errorf("unsupported pixel type %T, want 8 or 16 bit gray", img)
	}

	g := emath.NewFloatGrid(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			g.Set(x, y, at(r.Min.X+x, r.Min.Y+y))
		}
	}
	return g, nil
}

// ExtentWindow maps an extent onto a pixel window of a w x h grid
// covering the product. A window with nothing in it is a
// ConfigurationError.
func ExtentWindow(c Corners, e truecolor.Extent, w, h int) (image.Rectangle, error) {
	aff, err := c.PixelTransform(w, h)
	if err != nil {
		return image.Rectangle{}, err
	}
	x0, y0 := aff.Apply(e.ULLon, e.ULLat)
	x1, y1 := aff.Apply(e.LRLon, e.LRLat)
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	r = r.Intersect(image.Rect(0, 0, w, h))
	if r.Empty() {
		return image.Rectangle{}, &truecolor.ConfigurationError{Param: "extent", Reason: fmt.Sprintf("%s does not overlap the scene", e)}
	}
	return r, nil
}

func (TIFFLoader) Load(dir, granule string, extent *truecolor.Extent, wantPan bool) (map[string]truecolor.Raster, error) {
	bands := append([]string{}, truecolor.VisibleBands...)
	if wantPan {
		bands = append(bands, truecolor.BandPan)
	}

	// Everything is cropped to the same window of the multispectral grid
	refFile := filepath.Join(dir, BandFilename(granule, truecolor.BandRed))
	msSize, err := tiffSize(refFile)
	if err != nil {
		return nil, err
	}
	window := image.Rectangle{Max: msSize}
	if extent != nil {
		mtlFile, err := findMTL(dir, granule)
		if err != nil {
			return nil, err
		}
		mtl, err := LoadMTL(mtlFile)
		if err != nil {
			return nil, err
		}
		corners, err := mtl.Corners()
		if err != nil {
			return nil, err
		}
		if window, err = ExtentWindow(corners, *extent, msSize.X, msSize.Y); err != nil {
			return nil, err
		}
	}

	out := map[string]truecolor.Raster{}
	load := func(key, filename string, r image.Rectangle) (emath.FloatGrid, error) {
		img, err := decodeTIFF(filename)
		if err != nil {
			return emath.FloatGrid{}, err
		}
		r = r.Intersect(img.Bounds())
		g, err := toGrid(img, r)
		if err != nil {
			return emath.FloatGrid{}, errors.Wrap(err, filepath.Base(filename))
		}
		out[key] = truecolor.Raster{Grid: g, Path: filename, Window: r}
		return g, nil
	}

	for _, band := range bands {
		r := window
		if band == truecolor.BandPan {
			r = image.Rectangle{Min: window.Min.Mul(2), Max: window.Max.Mul(2)}
		}
		if _, err := load(band, filepath.Join(dir, BandFilename(granule, band)), r); err != nil {
			return nil, err
		}
	}

	for _, name := range truecolor.GeometryNames {
		dn, err := load(name, filepath.Join(dir, GeometryFilename(granule, name)), window)
		if err != nil {
			return nil, err
		}
		raster := out[name]
		raster.Grid = dn.ScaleOffset(AngleScaleOffset.Scale, AngleScaleOffset.Offset)
		out[name] = raster
	}

	return out, nil
}
