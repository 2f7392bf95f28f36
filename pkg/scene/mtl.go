package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
	"github.com/abworrall/ls8-truecolor/pkg/truecolor"
)

// MTL is the flattened KEY = VALUE content of a Landsat MTL metadata
// file. GROUP structure is thrown away; the keys we need are unique.
type MTL map[string]string

func ParseMTL(r io.Reader) (MTL, error) {
	mtl := MTL{}
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "END" {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("MTL line %d: no '=' in %q", lineNum, line)
		}
		key = strings.TrimSpace(key)
		if key == "GROUP" || key == "END_GROUP" {
			continue
		}
		mtl[key] = strings.Trim(strings.TrimSpace(val), `"`)
	}
	return mtl, scanner.Err()
}

func LoadMTL(filename string) (MTL, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mtl, err := ParseMTL(f)
	return mtl, errors.Wrapf(err, "parse %s", filepath.Base(filename))
}

func (m MTL) Float(key string) (float64, error) {
	s, exists := m[key]
	if !exists {
		return 0, fmt.Errorf("MTL has no %s", key)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "MTL %s", key)
	}
	return f, nil
}

// Calibration collects the RADIANCE_MULT_BAND_n / RADIANCE_ADD_BAND_n
// pairs, keyed "Bn". A band with only one half of the pair is an error.
func (m MTL) Calibration() (truecolor.CalibrationTable, error) {
	cal := truecolor.CalibrationTable{}
	for key := range m {
		n, found := strings.CutPrefix(key, "RADIANCE_MULT_BAND_")
		if !found {
			continue
		}
		scale, err := m.Float(key)
		if err != nil {
			return nil, err
		}
		offset, err := m.Float("RADIANCE_ADD_BAND_" + n)
		if err != nil {
			return nil, err
		}
		cal["B"+n] = truecolor.ScaleOffset{Scale: scale, Offset: offset}
	}
	if len(cal) == 0 {
		return nil, fmt.Errorf("MTL has no RADIANCE_MULT_BAND_n entries")
	}
	return cal, nil
}

// Corners are the lat/lon of the product's upper-left and lower-right
// corners.
type Corners struct {
	ULLat, ULLon float64
	LRLat, LRLon float64
}

func (m MTL) Corners() (Corners, error) {
	var c Corners
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"CORNER_UL_LAT_PRODUCT", &c.ULLat},
		{"CORNER_UL_LON_PRODUCT", &c.ULLon},
		{"CORNER_LR_LAT_PRODUCT", &c.LRLat},
		{"CORNER_LR_LON_PRODUCT", &c.LRLon},
	} {
		v, err := m.Float(f.key)
		if err != nil {
			return Corners{}, err
		}
		*f.dst = v
	}
	return c, nil
}

// PixelTransform maps lat/lon onto a w x h pixel grid covering the
// product. The grid is really UTM, so away from the corners this is an
// approximation.
func (c Corners) PixelTransform(w, h int) (emath.Aff3, error) {
	return emath.BoxToGrid(c.ULLon, c.ULLat, c.LRLon, c.LRLat, w, h)
}

// SunAngles returns the scene centre solar zenith and azimuth, in degrees.
func (m MTL) SunAngles() (zenith, azimuth float64, err error) {
	elevation, err := m.Float("SUN_ELEVATION")
	if err != nil {
		return 0, 0, err
	}
	if azimuth, err = m.Float("SUN_AZIMUTH"); err != nil {
		return 0, 0, err
	}
	return 90 - elevation, azimuth, nil
}

// MTLParser finds the *_MTL.txt in an extracted directory and reads the scale/offsets out of it.
type MTLParser struct{}

func (MTLParser) ParseScaleOffset(dir, granule string) (truecolor.CalibrationTable, error) {
	filename, err := findMTL(dir, granule)
	if err != nil {
		return nil, err
	}
	mtl, err := LoadMTL(filename)
	if err != nil {
		return nil, err
	}
	return mtl.Calibration()
}

func findMTL(dir, granule string) (string, error) {
	filename := filepath.Join(dir, granule+MTLSuffix)
	if _, err := os.Stat(filename); err == nil {
		return filename, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*"+MTLSuffix))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no *%s in %s", MTLSuffix, dir)
	}
	return matches[0], nil
}
