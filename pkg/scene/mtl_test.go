package scene

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abworrall/ls8-truecolor/pkg/truecolor"
)

func TestParseMTL(t *testing.T) {
	mtl, err := ParseMTL(strings.NewReader(testMTL))
	if err != nil {
		t.Fatal(err)
	}

	if mtl["LANDSAT_PRODUCT_ID"] != testGranule {
		t.Errorf("quotes not stripped: %q", mtl["LANDSAT_PRODUCT_ID"])
	}
	if _, exists := mtl["GROUP"]; exists {
		t.Errorf("GROUP lines should be ignored")
	}

	cal, err := mtl.Calibration()
	if err != nil {
		t.Fatal(err)
	}
	want := truecolor.CalibrationTable{
		"B2": {Scale: 1.2519e-02, Offset: -62.596},
		"B3": {Scale: 1.1536e-02, Offset: -57.682},
		"B4": {Scale: 9.7277e-03, Offset: -48.638},
		"B8": {Scale: 1.1273e-02, Offset: -56.365},
	}
	if len(cal) != len(want) {
		t.Errorf("got %v", cal)
	}
	for id, so := range want {
		if cal[id] != so {
			t.Errorf("%s: got %v, want %v", id, cal[id], so)
		}
	}

	zenith, azimuth, err := mtl.SunAngles()
	if err != nil || math.Abs(zenith-29.5) > 1e-9 || azimuth != 75.25 {
		t.Errorf("sun angles: %f %f %v", zenith, azimuth, err)
	}

	c, err := mtl.Corners()
	if err != nil || c.ULLat != -30 || c.LRLon != 151 {
		t.Errorf("corners: %+v %v", c, err)
	}
}

func TestParseMTLErrors(t *testing.T) {
	if _, err := ParseMTL(strings.NewReader("GROUP = X\n  NOT A KEY VALUE\n")); err == nil {
		t.Errorf("expected error for a line without '='")
	}

	mtl, _ := ParseMTL(strings.NewReader("RADIANCE_MULT_BAND_2 = 0.01\n"))
	if _, err := mtl.Calibration(); err == nil {
		t.Errorf("expected error for a missing RADIANCE_ADD_BAND_2")
	}

	mtl, _ = ParseMTL(strings.NewReader("SUN_ELEVATION = high\n"))
	if _, _, err := mtl.SunAngles(); err == nil {
		t.Errorf("expected error for a non-numeric value")
	}

	if _, err := (MTL{}).Calibration(); err == nil {
		t.Errorf("expected error for no calibration at all")
	}
}

func TestMTLParser(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "other_name_MTL.txt"), []byte(testMTL), 0644); err != nil {
		t.Fatal(err)
	}

	// Falls back to any *_MTL.txt in the directory
	cal, err := MTLParser{}.ParseScaleOffset(dir, testGranule)
	if err != nil {
		t.Fatal(err)
	}
	if cal["B4"].Scale != 9.7277e-03 {
		t.Errorf("got %v", cal)
	}

	if _, err := (MTLParser{}).ParseScaleOffset(t.TempDir(), testGranule); err == nil {
		t.Errorf("expected error for a directory with no MTL")
	}
}
