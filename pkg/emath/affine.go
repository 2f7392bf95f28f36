package emath

// Some basic affine transformations, used to map geographic
// coordinates onto raster pixel coordinates

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64" // Will be "image/math/f64" at some point, hopefully make this file redundant
)

// Use a local type so we can hang methods off it
type Aff3 f64.Aff3

// Cut-n-pasted from image@0.7.0/draw/scale:matMul
func (p Aff3) Mult(q Aff3) Aff3 {
	return Aff3{
		p[3*0+0]*q[3*0+0] + p[3*0+1]*q[3*1+0],
		p[3*0+0]*q[3*0+1] + p[3*0+1]*q[3*1+1],
		p[3*0+0]*q[3*0+2] + p[3*0+1]*q[3*1+2] + p[3*0+2],
		p[3*1+0]*q[3*0+0] + p[3*1+1]*q[3*1+0],
		p[3*1+0]*q[3*0+1] + p[3*1+1]*q[3*1+1],
		p[3*1+0]*q[3*0+2] + p[3*1+1]*q[3*1+2] + p[3*1+2],
	}
}

func Identity() Aff3 {
	return Aff3{1, 0, 0, 0, 1, 0}
}

func (m1 Aff3) Translate(tx, ty float64) Aff3 {
	return m1.Mult(Aff3{1, 0, tx, 0, 1, ty})
}

func (m1 Aff3) Scale(sx, sy float64) Aff3 {
	return m1.Mult(Aff3{sx, 0, 0, 0, sy, 0})
}

// Apply maps the point (x,y). Remember transforms compose back to
// front, so the rightmost operation in a chain is applied first.
func (m Aff3) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// BoxToGrid maps a north-up geographic box, given by its upper-left
// and lower-right (lon, lat) corners, onto a pixel grid of size w x h,
// so that the UL corner lands on (0,0) and LR on (w,h).
func BoxToGrid(ulLon, ulLat, lrLon, lrLat float64, w, h int) (Aff3, error) {
	dLon := lrLon - ulLon
	dLat := ulLat - lrLat
	if dLon == 0 || dLat == 0 || math.IsNaN(dLon) || math.IsNaN(dLat) {
		return Aff3{}, fmt.Errorf("degenerate box UL(%f,%f) LR(%f,%f)", ulLon, ulLat, lrLon, lrLat)
	}

	// Latitude grows upwards, rows grow downwards
	return Identity().Scale(float64(w)/dLon, -float64(h)/dLat).Translate(-ulLon, -ulLat), nil
}

func (m Aff3) String() string {
	return fmt.Sprintf("[%10f, %10f, %10f]\n[%10f, %10f, %10f]\n", m[0], m[1], m[2], m[3], m[4], m[5])
}
