package truecolor

import "fmt"

// A ScaleOffset is the affine calibration that turns a digital number
// into radiance: radiance = DN*Scale + Offset.
type ScaleOffset struct {
	Scale  float64
	Offset float64
}

func (so ScaleOffset) String() string {
	return fmt.Sprintf("x%g%+g", so.Scale, so.Offset)
}

// CalibrationTable maps band id ("B2" etc) to its ScaleOffset
type CalibrationTable map[string]ScaleOffset

// NormalizeRadiance converts a band of digital numbers into radiance.
func NormalizeRadiance(dn Band, cal CalibrationTable) (Band, error) {
	so, ok := cal[dn.ID]
	if !ok {
		return Band{}, &MissingCalibrationError{BandID: dn.ID}
	}
	return dn.withGrid(UnitRadiance, dn.ScaleOffset(so.Scale, so.Offset)), nil
}

// NormalizeBands runs NormalizeRadiance over the requested bands, each
// one independently.
func NormalizeBands(dn map[string]Band, cal CalibrationTable, ids []string) (map[string]Band, error) {
	out := make(map[string]Band, len(ids))
	for _, id := range ids {
		b, ok := dn[id]
		if !ok {
			return nil, fmt.Errorf("normalize: band %s was not loaded", id)
		}
		rad, err := NormalizeRadiance(b, cal)
		if err != nil {
			return nil, err
		}
		out[id] = rad
	}
	return out, nil
}
