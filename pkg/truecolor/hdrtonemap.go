package truecolor

import (
	"fmt"
	"image"

	"github.com/mdouchement/hdr/tmo"
)

// These operators are not part of the true colour chain; they render
// the HDR composite a few other ways, for side-by-side comparison.
var Tonemappers = []string{"drago03", "durand", "icam06", "linear", "reinhard05"}

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

func isTonemapper(name string) bool {
	for _, n := range Tonemappers {
		if n == name {
			return true
		}
	}
	return false
}

func setupTonemapper(ci CompositeImage, name string) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		op := tmo.NewDefaultDrago03(ci)
		op.Bias = 1.0 // bright water and cloud blow out otherwise
		return op, nil

	case "durand":
		return tmo.NewDefaultDurand(ci), nil

	case "icam06":
		op := tmo.NewDefaultICam06(ci)
		op.Contrast = 0.65
		op.MaxClipping = 0.99999
		return op, nil

	case "linear":
		return tmo.NewLinear(ci), nil

	case "reinhard05":
		op := tmo.NewDefaultReinhard05(ci)
		op.Chromatic = 0.005
		op.Light = 0.005
		return op, nil
	}

	return nil, &ConfigurationError{Param: "tonemapper", Reason: fmt.Sprintf("%q not recognized, wanted %s", name, ListTonemappers())}
}

// ComparisonTonemap renders the composite with one of the named HDR operators.
func ComparisonTonemap(ci CompositeImage, name string) (image.Image, error) {
	op, err := setupTonemapper(ci, name)
	if err != nil {
		return nil, err
	}
	return op.Perform(), nil
}
