package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
	"github.com/abworrall/ls8-truecolor/pkg/fileaccess"
	"github.com/abworrall/ls8-truecolor/pkg/truecolor"
)

// Angles are stored in 16-bit TIFFs as DN = round((deg+180)*100), so
// from -180 to +475 degrees at 0.01 degree resolution.
var AngleScaleOffset = truecolor.ScaleOffset{Scale: 0.01, Offset: -180}

// MaxViewZenith is the sensor view angle at the swath edges. OLI has a
// 15 degree field of view.
const MaxViewZenith = 7.5

// View azimuth either side of the ground track, for a descending pass
const (
	ViewAzimuthEast = 102.0
	ViewAzimuthWest = -78.0
)

func GeometryFilename(granule, name string) string {
	return fmt.Sprintf("%s_%s.TIF", granule, name)
}

// SceneGeometry builds w x h angle grids for the scene. The sun angles
// are the scene centre ones from the MTL; view zenith grows linearly
// away from the centre column.
func SceneGeometry(mtl MTL, w, h int) (map[string]emath.FloatGrid, error) {
	zenith, azimuth, err := mtl.SunAngles()
	if err != nil {
		return nil, err
	}

	viewZenith := emath.NewFloatGrid(w, h)
	viewAzimuth := emath.NewFloatGrid(w, h)
	centre := float64(w-1) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - centre
			vz := 0.0
			if centre > 0 {
				vz = MaxViewZenith * math.Abs(dx) / centre
			}
			viewZenith.Set(x, y, vz)
			if dx < 0 {
				viewAzimuth.Set(x, y, ViewAzimuthWest)
			} else {
				viewAzimuth.Set(x, y, ViewAzimuthEast)
			}
		}
	}

	return map[string]emath.FloatGrid{
		truecolor.GeomSolarZenith:      emath.NewFilledFloatGrid(w, h, zenith),
		truecolor.GeomSolarAzimuth:     emath.NewFilledFloatGrid(w, h, azimuth),
		truecolor.GeomSatelliteView:    viewZenith,
		truecolor.GeomSatelliteAzimuth: viewAzimuth,
	}, nil
}

// EncodeAngles turns a grid of degrees into a 16-bit TIFF.
func EncodeAngles(g emath.FloatGrid) ([]byte, error) {
	img := image.NewGray16(image.Rect(0, 0, g.Dx(), g.Dy()))
	for y := 0; y < g.Dy(); y++ {
		for x := 0; x < g.Dx(); x++ {
			dn := math.Round((g.Get(x, y) - AngleScaleOffset.Offset) / AngleScaleOffset.Scale)
			img.SetGray16(x, y, color.Gray16{Y: uint16(emath.Clip(dn, 0, math.MaxUint16))})
		}
	}

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGeometry writes the four angle rasters into destDir. The solar
// zenith one is written last, since its existence is taken to mean the
// extraction finished.
func WriteGeometry(store fileaccess.FileAccess, destDir, granule string, grids map[string]emath.FloatGrid) error {
	for _, name := range truecolor.GeometryNames {
		g, exists := grids[name]
		if !exists {
			return fmt.Errorf("geometry: no %s grid", name)
		}
		b, err := EncodeAngles(g)
		if err != nil {
			return errors.Wrapf(err, "encode %s", name)
		}
		if err := store.WriteObject(destDir, GeometryFilename(granule, name), b); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}
	return nil
}
