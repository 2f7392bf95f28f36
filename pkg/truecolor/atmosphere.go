package truecolor

import (
	"fmt"
	"math"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// AtmosphericParameters are the per-pixel radiative transfer terms for
// one band. All four grids share a shape.
type AtmosphericParameters struct {
	Lp0 emath.FloatGrid // path radiance
	Eg0 emath.FloatGrid // global irradiance at the surface
	TUp emath.FloatGrid // upward transmittance
	S   emath.FloatGrid // spherical albedo
}

func (ap AtmosphericParameters) validate() error {
	for _, g := range []emath.FloatGrid{ap.Eg0, ap.TUp, ap.S} {
		if err := checkShape("atmosphere", ap.Lp0, g); err != nil {
			return err
		}
	}
	return nil
}

// An AtmosphereModel derives the atmospheric terms for a band from the
// viewing geometry. The geometry has already been brought onto the
// band's grid.
type AtmosphereModel interface {
	Parameters(bandID string, geom GeometryParameters) (AtmosphericParameters, error)
}

// BandOptics are the fixed per-band constants a model needs.
type BandOptics struct {
	Wavelength float64 // band centre, in micrometres
	E0         float64 // exo-atmospheric solar irradiance, W/(m^2 um)
}

// RayleighAtmosphere is a clear sky, molecular scattering only, single
// scattering model.
type RayleighAtmosphere struct {
	Optics map[string]BandOptics
}

func NewRayleighAtmosphere() RayleighAtmosphere {
	return RayleighAtmosphere{
		Optics: map[string]BandOptics{
			BandBlue:  {Wavelength: 0.482, E0: 2067},
			BandGreen: {Wavelength: 0.561, E0: 1893},
			BandRed:   {Wavelength: 0.655, E0: 1603},
			BandPan:   {Wavelength: 0.590, E0: 1721},
		},
	}
}

// RayleighDepth is the Hansen & Travis (1974) sea level optical depth.
func RayleighDepth(um float64) float64 {
	l2 := um * um
	l4 := l2 * l2
	return 0.008569 / l4 * (1 + 0.0113/l2 + 0.00013/l4)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }

func (ra RayleighAtmosphere) Parameters(bandID string, geom GeometryParameters) (AtmosphericParameters, error) {
	optics, exists := ra.Optics[bandID]
	if !exists {
		return AtmosphericParameters{}, fmt.Errorf("atmosphere: no optics for band %s", bandID)
	}

	tau := RayleighDepth(optics.Wavelength)
	e0 := optics.E0 / 10.0 // match the radiance/10 convention of the corrector
	sphericalAlbedo := 0.92 * tau * math.Exp(-tau)

	w, h := geom.SolarZenith.Dx(), geom.SolarZenith.Dy()
	ap := AtmosphericParameters{
		Lp0: emath.NewFloatGrid(w, h),
		Eg0: emath.NewFloatGrid(w, h),
		TUp: emath.NewFloatGrid(w, h),
		S:   emath.NewFilledFloatGrid(w, h, sphericalAlbedo),
	}

	emath.ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				thetaS := deg2rad(geom.SolarZenith.Get(x, y))
				thetaV := deg2rad(geom.SensorZenith.Get(x, y))
				relAz := deg2rad(geom.SolarAzimuth.Get(x, y) - geom.SensorAzimuth.Get(x, y))
				muS, muV := math.Cos(thetaS), math.Cos(thetaV)

				cosScatter := -muS*muV - math.Sin(thetaS)*math.Sin(thetaV)*math.Cos(relAz)
				phase := 0.75 * (1 + cosScatter*cosScatter)

				ap.TUp.Set(x, y, math.Exp(-tau/muV))
				ap.Eg0.Set(x, y, e0*muS*math.Exp(-tau/(2*muS)))
				ap.Lp0.Set(x, y, e0*phase*muS/(4*math.Pi*(muS+muV))*(1-math.Exp(-tau*(1/muS+1/muV))))
			}
		}
	})

	return ap, nil
}

// geometryForBand brings the geometry onto the band's grid. Only the
// panchromatic band is allowed to differ in shape; it is sampled at
// twice the resolution of the geometry rasters.
func geometryForBand(b Band, geom GeometryParameters) (GeometryParameters, error) {
	if b.Shape() == geom.Shape() {
		return geom, nil
	}
	if b.ID != BandPan {
		return GeometryParameters{}, &ShapeMismatchError{Op: "atmospheric correction " + b.ID, Want: geom.Shape(), Got: b.Shape()}
	}
	return geom.Resample(b.Dx(), b.Dy()), nil
}
