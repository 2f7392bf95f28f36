package truecolor

import (
	"math"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// AtmosphericCorrector turns radiance into surface reflectance (x10000),
// using per-pixel atmospheric terms from its model.
type AtmosphericCorrector struct {
	Model AtmosphereModel
}

func NewAtmosphericCorrector(m AtmosphereModel) AtmosphericCorrector {
	return AtmosphericCorrector{Model: m}
}

func (ac AtmosphericCorrector) Correct(rad Band, geom GeometryParameters) (Band, error) {
	g, err := geometryForBand(rad, geom)
	if err != nil {
		return Band{}, err
	}
	params, err := ac.Model.Parameters(rad.ID, g)
	if err != nil {
		return Band{}, err
	}
	return ApplyAtmosphericCorrection(rad, params)
}

// ApplyAtmosphericCorrection inverts the radiative transfer equation, per pixel:
//
//	A = pi * (radiance/10 - Lp0) / (Eg0 * Tup)
//	reflectance = round(A / (1 + A*S) * 10000)
//
// Rounding is half to even. A zero denominator yields a NumericDegeneracyError.
func ApplyAtmosphericCorrection(rad Band, p AtmosphericParameters) (Band, error) {
	if err := p.validate(); err != nil {
		return Band{}, err
	}
	if err := checkShape("atmospheric correction "+rad.ID, p.Lp0, rad.FloatGrid); err != nil {
		return Band{}, err
	}

	w, h := rad.Dx(), rad.Dy()
	out := emath.NewFloatGrid(w, h)
	emath.ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				a := math.Pi * (rad.Get(x, y)/10.0 - p.Lp0.Get(x, y)) / (p.Eg0.Get(x, y) * p.TUp.Get(x, y))
				out.Set(x, y, math.RoundToEven(a/(1+a*p.S.Get(x, y))*10000))
			}
		}
	})

	refl := rad.withGrid(UnitReflectance, out)
	if err := checkFinite("atmospheric correction", refl); err != nil {
		return Band{}, err
	}
	return refl, nil
}

// PassThroughReflectance relabels radiance as reflectance, unchanged.
// The units do not actually agree; callers that pick this mode accept
// the approximation.
func PassThroughReflectance(rad Band) Band {
	return rad.withGrid(UnitReflectance, rad.FloatGrid)
}
