package truecolor

import (
	"math"
	"testing"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func gridFrom(t *testing.T, w, h int, vals ...float64) emath.FloatGrid {
	t.Helper()
	g, err := emath.NewFloatGridFromValues(w, h, vals)
	if err != nil {
		t.Fatalf("building grid: %v", err)
	}
	return g
}

func flatBand(id string, unit Unit, w, h int, v float64) Band {
	return NewBand(id, unit, emath.NewFilledFloatGrid(w, h, v))
}

func flatParams(w, h int, lp, eg, tup, s float64) AtmosphericParameters {
	return AtmosphericParameters{
		Lp0: emath.NewFilledFloatGrid(w, h, lp),
		Eg0: emath.NewFilledFloatGrid(w, h, eg),
		TUp: emath.NewFilledFloatGrid(w, h, tup),
		S:   emath.NewFilledFloatGrid(w, h, s),
	}
}

// flatGeometry is a sun at 30 degrees zenith, sensor looking straight down.
func flatGeometry(w, h int) map[string]emath.FloatGrid {
	return map[string]emath.FloatGrid{
		GeomSolarZenith:      emath.NewFilledFloatGrid(w, h, 30),
		GeomSolarAzimuth:     emath.NewFilledFloatGrid(w, h, 140),
		GeomSatelliteView:    emath.NewFilledFloatGrid(w, h, 0),
		GeomSatelliteAzimuth: emath.NewFilledFloatGrid(w, h, 102),
	}
}

// gradientBand has DN values that vary over the grid, so every stage has
// something to chew on.
func gradientBand(id string, w, h int, base float64) Band {
	g := emath.NewFloatGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, base+float64(100*x+37*y))
		}
	}
	return NewBand(id, UnitDigitalNumber, g)
}

// syntheticScene is a tiny scene with a B8 at twice the resolution.
func syntheticScene(w, h int) SceneData {
	cal := CalibrationTable{}
	sd := SceneData{DN: map[string]Band{}, Calibration: cal, Geometry: flatGeometry(w, h)}
	for i, id := range VisibleBands {
		sd.DN[id] = gradientBand(id, w, h, 10000+float64(i)*500)
		cal[id] = ScaleOffset{Scale: 0.012, Offset: -60}
	}
	sd.DN[BandPan] = gradientBand(BandPan, 2*w, 2*h, 10200)
	cal[BandPan] = ScaleOffset{Scale: 0.011, Offset: -55}
	return sd
}
