package truecolor

import (
	"fmt"
	"image"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// Names of the per-pixel geometry rasters, as they appear in extracted
// filenames ({granule}_{NAME}.TIF).
const (
	GeomSolarZenith      = "SOLAR-ZENITH"
	GeomSolarAzimuth     = "SOLAR-AZIMUTH"
	GeomSatelliteView    = "SATELLITE-VIEW"
	GeomSatelliteAzimuth = "SATELLITE-AZIMUTH"
)

// GeometryNames lists the geometry rasters in the order they're written;
// the solar zenith raster comes last, since its presence marks a completed extraction.
var GeometryNames = []string{GeomSolarAzimuth, GeomSatelliteView, GeomSatelliteAzimuth, GeomSolarZenith}

// GeometryParameters holds the four angular arrays, in degrees.
type GeometryParameters struct {
	SolarZenith   emath.FloatGrid
	SolarAzimuth  emath.FloatGrid
	SensorZenith  emath.FloatGrid
	SensorAzimuth emath.FloatGrid
}

// NewGeometryRaster checks the four arrays agree on shape, and bundles them up unchanged.
func NewGeometryRaster(solarZenith, solarAzimuth, sensorZenith, sensorAzimuth emath.FloatGrid) (GeometryParameters, error) {
	g := GeometryParameters{
		SolarZenith:   solarZenith,
		SolarAzimuth:  solarAzimuth,
		SensorZenith:  sensorZenith,
		SensorAzimuth: sensorAzimuth,
	}
	for _, other := range []emath.FloatGrid{solarAzimuth, sensorZenith, sensorAzimuth} {
		if err := checkShape("geometry", solarZenith, other); err != nil {
			return GeometryParameters{}, err
		}
	}
	return g, nil
}

// GeometryFromGrids picks the four arrays out of a map keyed by the Geom* names.
func GeometryFromGrids(grids map[string]emath.FloatGrid) (GeometryParameters, error) {
	for _, name := range GeometryNames {
		if _, exists := grids[name]; !exists {
			return GeometryParameters{}, fmt.Errorf("geometry: raster %s was not loaded", name)
		}
	}
	return NewGeometryRaster(grids[GeomSolarZenith], grids[GeomSolarAzimuth],
		grids[GeomSatelliteView], grids[GeomSatelliteAzimuth])
}

func (g GeometryParameters) Shape() image.Point { return g.SolarZenith.Shape() }

// Resample returns the geometry nearest-neighbour sampled onto a w x h grid.
func (g GeometryParameters) Resample(w, h int) GeometryParameters {
	if g.Shape() == (image.Point{w, h}) {
		return g
	}
	return GeometryParameters{
		SolarZenith:   g.SolarZenith.UpSample(w, h),
		SolarAzimuth:  g.SolarAzimuth.UpSample(w, h),
		SensorZenith:  g.SensorZenith.UpSample(w, h),
		SensorAzimuth: g.SensorAzimuth.UpSample(w, h),
	}
}

func (g GeometryParameters) String() string {
	return fmt.Sprintf("geometry[sz%s sa%s vz%s va%s]",
		g.SolarZenith.Stats(), g.SolarAzimuth.Stats(), g.SensorZenith.Stats(), g.SensorAzimuth.Stats())
}
