package truecolor

import (
	"errors"
	"math"
	"testing"
)

func TestToneMapperCurve(t *testing.T) {
	tests := []struct {
		brightness float64
		in         float64
		want       float64
	}{
		{1.0, DefaultMaxReflectance, 255},
		{1.0, 6000, 127.5},
		{1.0, 0, 0},
		{1.0, -500, 0},
		{1.0, 2 * DefaultMaxReflectance, 255},
		{2.0, 3000, 127.5}, // sqrt(0.25)*255
		{2.0, DefaultMaxReflectance, 255},
	}

	for _, tst := range tests {
		tm, err := NewToneMapper(DefaultMaxReflectance, tst.brightness)
		if err != nil {
			t.Fatal(err)
		}
		if got := tm.Curve(tst.in); !almostEqual(got, tst.want, 1e-9) {
			t.Errorf("brightness %v, Curve(%v): got %v, want %v", tst.brightness, tst.in, got, tst.want)
		}
	}
}

func TestToneMapperIdentityAtBrightnessOne(t *testing.T) {
	tm, _ := NewToneMapper(DefaultMaxReflectance, 1.0)
	for v := 0.0; v <= DefaultMaxReflectance; v += 250 {
		scaled := v / DefaultMaxReflectance * 255
		if got := tm.Curve(v); !almostEqual(got, scaled, 1e-9) {
			t.Errorf("Curve(%v): got %v, want %v", v, got, scaled)
		}
	}
}

func TestToneMapperInvalidBrightness(t *testing.T) {
	for _, b := range []float64{0, -1, math.NaN()} {
		_, err := NewToneMapper(DefaultMaxReflectance, b)
		var ipe *InvalidParameterError
		if !errors.As(err, &ipe) {
			t.Errorf("brightness %v: got %v, wanted InvalidParameterError", b, err)
		}
	}
}

func TestToneMapperMap(t *testing.T) {
	ci, _ := NewCompositeImage(
		flatBand(BandRed, UnitCompositedReflectance, 2, 2, 12000),
		flatBand(BandGreen, UnitCompositedReflectance, 2, 2, 3000),
		flatBand(BandBlue, UnitCompositedReflectance, 2, 2, 0),
	)
	tm, _ := NewToneMapper(DefaultMaxReflectance, 2.0)

	out, err := tm.Map(ci)
	if err != nil {
		t.Fatal(err)
	}
	if out.Red.Unit != UnitNormalized8Bit || out.Red.Get(0, 0) != 255 ||
		!almostEqual(out.Green.Get(1, 1), 127.5, 1e-9) || out.Blue.Get(0, 1) != 0 {
		t.Errorf("got %s", out)
	}
	if ci.Red.Get(0, 0) != 12000 {
		t.Errorf("input was mutated")
	}

	ci.Blue = NewBand(BandBlue, UnitCompositedReflectance, gridFrom(t, 2, 2, 0, math.NaN(), 0, 0))
	_, err = tm.Map(ci)
	var nde *NumericDegeneracyError
	if !errors.As(err, &nde) {
		t.Errorf("got %v, wanted NumericDegeneracyError", err)
	}
}
