package truecolor

import (
	"math"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// ToneMapper compresses composited reflectance into [0,255], then
// applies a gamma of 1/Brightness.
type ToneMapper struct {
	MaxReflectance float64
	Brightness     float64
}

func NewToneMapper(maxReflectance, brightness float64) (ToneMapper, error) {
	if !(brightness > 0) || math.IsInf(brightness, 0) {
		return ToneMapper{}, &InvalidParameterError{Param: "brightness", Reason: "must be a positive number"}
	}
	if !(maxReflectance > 0) || math.IsInf(maxReflectance, 0) {
		return ToneMapper{}, &InvalidParameterError{Param: "max-reflectance", Reason: "must be a positive number"}
	}
	return ToneMapper{MaxReflectance: maxReflectance, Brightness: brightness}, nil
}

// Curve maps a single reflectance value.
func (tm ToneMapper) Curve(v float64) float64 {
	scaled := emath.Clip(v/tm.MaxReflectance*255.0, 0, 255)
	return math.Pow(scaled/255.0, 1.0/tm.Brightness) * 255.0
}

// MapBand returns the tone mapped band, still as floats; truncating
// to 8 bits happens when the image is rendered.
func (tm ToneMapper) MapBand(b Band) (Band, error) {
	if err := checkFinite("tonemap", b); err != nil {
		return Band{}, err
	}
	return b.withGrid(UnitNormalized8Bit, b.Map(tm.Curve)), nil
}

// Map tone maps each channel of the composite.
func (tm ToneMapper) Map(ci CompositeImage) (CompositeImage, error) {
	var out [3]Band
	for i, b := range ci.Channels() {
		mapped, err := tm.MapBand(b)
		if err != nil {
			return CompositeImage{}, err
		}
		out[i] = mapped
	}
	return CompositeImage{Red: out[0], Green: out[1], Blue: out[2]}, nil
}
