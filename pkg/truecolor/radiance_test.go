package truecolor

import (
	"errors"
	"testing"
)

func TestNormalizeRadiance(t *testing.T) {
	tests := []struct {
		name   string
		so     ScaleOffset
		linear bool // whether normalize(2*dn) == 2*normalize(dn)
	}{
		{"zero offset", ScaleOffset{Scale: 0.01, Offset: 0}, true},
		{"with offset", ScaleOffset{Scale: 0.01, Offset: -63.5}, false},
	}

	for _, tst := range tests {
		cal := CalibrationTable{BandRed: tst.so}
		dn := NewBand(BandRed, UnitDigitalNumber, gridFrom(t, 2, 2, 100, 200, 300, 400))
		dn2 := NewBand(BandRed, UnitDigitalNumber, gridFrom(t, 2, 2, 200, 400, 600, 800))

		r1, err := NormalizeRadiance(dn, cal)
		if err != nil {
			t.Fatalf("%s: %v", tst.name, err)
		}
		r2, _ := NormalizeRadiance(dn2, cal)

		if r1.Unit != UnitRadiance || r1.ID != BandRed {
			t.Errorf("%s: got band %s/%s", tst.name, r1.ID, r1.Unit)
		}
		for i, v := range r1.Values() {
			want := dn.Values()[i]*tst.so.Scale + tst.so.Offset
			if !almostEqual(v, want, 1e-9) {
				t.Errorf("%s: [%d] got %f, want %f", tst.name, i, v, want)
			}
			if got := almostEqual(r2.Values()[i], 2*v, 1e-9); got != tst.linear {
				t.Errorf("%s: [%d] doubling linear=%v, want %v", tst.name, i, got, tst.linear)
			}
		}

		if dn.Get(0, 0) != 100 {
			t.Errorf("%s: input was mutated", tst.name)
		}
	}
}

func TestNormalizeRadianceMissing(t *testing.T) {
	cal := CalibrationTable{BandRed: {Scale: 1}}
	_, err := NormalizeRadiance(flatBand(BandPan, UnitDigitalNumber, 2, 2, 1), cal)

	var mce *MissingCalibrationError
	if !errors.As(err, &mce) {
		t.Fatalf("got %v, wanted MissingCalibrationError", err)
	}
	if mce.BandID != BandPan {
		t.Errorf("got band %q", mce.BandID)
	}
}

func TestNormalizeBands(t *testing.T) {
	dn := map[string]Band{
		BandBlue:  flatBand(BandBlue, UnitDigitalNumber, 2, 2, 10),
		BandGreen: flatBand(BandGreen, UnitDigitalNumber, 2, 2, 20),
	}
	cal := CalibrationTable{BandBlue: {Scale: 2, Offset: 1}, BandGreen: {Scale: 3, Offset: -1}}

	out, err := NormalizeBands(dn, cal, []string{BandBlue, BandGreen})
	if err != nil {
		t.Fatal(err)
	}
	if out[BandBlue].Get(1, 1) != 21 || out[BandGreen].Get(0, 0) != 59 {
		t.Errorf("got %s, %s", out[BandBlue], out[BandGreen])
	}

	if _, err := NormalizeBands(dn, cal, []string{BandBlue, BandRed}); err == nil {
		t.Errorf("expected error for a band that was not loaded")
	}
}
