package truecolor

import (
	"fmt"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
)

// Unit is the physical unit the values of a Band are in
type Unit int

const (
	UnitDigitalNumber Unit = iota
	UnitRadiance
	UnitReflectance
	UnitCompositedReflectance
	UnitCompositedSharpened
	UnitNormalized8Bit
)

var unitNames = map[Unit]string{
	UnitDigitalNumber:         "digital-number",
	UnitRadiance:              "radiance",
	UnitReflectance:           "reflectance",
	UnitCompositedReflectance: "composited-reflectance",
	UnitCompositedSharpened:   "composited-sharpened",
	UnitNormalized8Bit:        "normalized-8bit",
}

func (u Unit) String() string {
	if s, ok := unitNames[u]; ok {
		return s
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// The Landsat 8 OLI bands we use
const (
	BandBlue  = "B2"
	BandGreen = "B3"
	BandRed   = "B4"
	BandPan   = "B8"
)

// VisibleBands are the bands a direct composite needs, in the order B,G,R
var VisibleBands = []string{BandBlue, BandGreen, BandRed}

// A Band is a 2D array of per-pixel values, tagged with which band it
// came from and what units the values are in. Bands are never mutated
// once built; every stage returns a new one.
type Band struct {
	ID   string
	Unit Unit
	emath.FloatGrid
}

func NewBand(id string, unit Unit, g emath.FloatGrid) Band {
	return Band{ID: id, Unit: unit, FloatGrid: g}
}

func (b Band) String() string {
	return fmt.Sprintf("%s(%s) %s", b.ID, b.Unit, b.FloatGrid.Stats())
}

func (b Band) withGrid(unit Unit, g emath.FloatGrid) Band {
	return Band{ID: b.ID, Unit: unit, FloatGrid: g}
}

func checkShape(op string, want, got emath.FloatGrid) error {
	if !want.SameShape(got) {
		return &ShapeMismatchError{Op: op, Want: want.Shape(), Got: got.Shape()}
	}
	return nil
}

func checkFinite(stage string, b Band) error {
	if n, first := b.NonFinite(); n > 0 {
		return &NumericDegeneracyError{Stage: stage, BandID: b.ID, Count: n, First: first}
	}
	return nil
}
