package truecolor

import (
	"fmt"
	"image"
	"strings"
)

// A ConfigurationError is an invalid flag combination, or a parameter
// that is out of range (e.g. brightness <= 0).
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Param, e.Reason)
}

// InvalidParameterError is what the tone mapper raises for a bad
// brightness; it is the same thing as a ConfigurationError.
type InvalidParameterError = ConfigurationError

// A MissingCalibrationError means the scale/offset table has no entry
// for a band we need to normalize.
type MissingCalibrationError struct {
	BandID string
}

func (e *MissingCalibrationError) Error() string {
	return fmt.Sprintf("no scale/offset calibration for band %s", e.BandID)
}

// A ShapeMismatchError means two arrays that take part in a per-pixel
// operation have different dimensions.
type ShapeMismatchError struct {
	Op   string
	Want image.Point
	Got  image.Point
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch, want %dx%d, got %dx%d", e.Op, e.Want.X, e.Want.Y, e.Got.X, e.Got.Y)
}

// An UnsupportedDatasetError is raised for level-1 datasets that don't
// hold exactly one granule.
type UnsupportedDatasetError struct {
	Granules []string
}

func (e *UnsupportedDatasetError) Error() string {
	if len(e.Granules) == 0 {
		return "unsupported dataset: no granules found"
	}
	return fmt.Sprintf("cannot handle multi-granule datasets (%d granules: %s)",
		len(e.Granules), strings.Join(e.Granules, ", "))
}

// A NumericDegeneracyError reports non-finite values in a band, e.g.
// from a zero denominator in atmospheric correction.
type NumericDegeneracyError struct {
	Stage  string
	BandID string
	Count  int
	First  image.Point
}

func (e *NumericDegeneracyError) Error() string {
	return fmt.Sprintf("%s: band %s has %d non-finite values (first at %d,%d)",
		e.Stage, e.BandID, e.Count, e.First.X, e.First.Y)
}
