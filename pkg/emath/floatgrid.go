package emath

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"gonum.org/v1/gonum/floats"
)

// A FloatGrid is a grid of floats, with some operations. Every
// operation that produces values returns a new grid; nothing mutates
// the receiver except Set, which is only used while building a grid.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFromValues copies vals, which are in row-major order.
func NewFloatGridFromValues(w, h int, vals []float64) (FloatGrid, error) {
	if w*h != len(vals) {
		return FloatGrid{}, fmt.Errorf("grid %dx%d needs %d values, got %d", w, h, w*h, len(vals))
	}
	g := NewFloatGrid(w, h)
	copy(g.values, vals)
	return g, nil
}

// NewFilledFloatGrid is a grid where every value is v.
func NewFilledFloatGrid(w, h int, v float64) FloatGrid {
	g := NewFloatGrid(w, h)
	for i := range g.values {
		g.values[i] = v
	}
	return g
}

func (g1 FloatGrid) NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid) Set(x, y int, v float64) { fg.values[fg.stride*y+x] = v }
func (fg FloatGrid) Get(x, y int) float64     { return fg.values[fg.stride*y+x] }
func (fg FloatGrid) Dx() int                  { return fg.stride }
func (fg FloatGrid) Len() int                 { return len(fg.values) }
func (fg FloatGrid) Shape() image.Point       { return image.Point{fg.Dx(), fg.Dy()} }

func (fg FloatGrid) Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

// Values exposes the backing slice, in row-major order. Callers must
// treat it as read-only.
func (fg FloatGrid) Values() []float64 { return fg.values }

func (g1 FloatGrid) SameShape(g2 FloatGrid) bool {
	return g1.Dx() == g2.Dx() && g1.Dy() == g2.Dy()
}

func (g1 FloatGrid) Copy() FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values: make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return g2
}

// Map applies f to every value, returning a new grid. Rows are
// farmed out across goroutines; f must be pure.
func (g1 FloatGrid) Map(f func(float64) float64) FloatGrid {
	g2 := g1.NewFromThis()
	ParallelFor(g1.Dy(), func(start, end int) {
		for i := start * g1.stride; i < end*g1.stride; i++ {
			g2.values[i] = f(g1.values[i])
		}
	})
	return g2
}

// ScaleOffset returns v*scale + offset for every value.
func (g1 FloatGrid) ScaleOffset(scale, offset float64) FloatGrid {
	g2 := g1.Copy()
	floats.Scale(scale, g2.values)
	floats.AddConst(offset, g2.values)
	return g2
}

// NonFinite counts the NaN and Inf values, and returns the position
// of the first one found (or -1,-1).
func (fg FloatGrid) NonFinite() (int, image.Point) {
	n := 0
	first := image.Point{-1, -1}
	for i, v := range fg.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if n == 0 {
				first = image.Point{i % fg.stride, i / fg.stride}
			}
			n++
		}
	}
	return n, first
}

func (g1 FloatGrid) GaussianBlur() FloatGrid {
	width := g1.Dx()
	height := g1.Dy()
	g2 := g1.NewFromThis()
	if width < 2 || height < 2 {
		return g1.Copy()
	}

	T := g1.NewFromThis()

	//--- X blur, build up in T
	for y := 0; y < height; y++ {
		for x := 1; x < width-1; x++ {
			t := 2.0 * g1.Get(x, y)
			t += g1.Get(x-1, y)
			t += g1.Get(x+1, y)
			T.Set(x, y, t/4.0)
		}
		T.Set(0, y, (3.0*g1.Get(0, y)+g1.Get(1, y))/4.0)
		T.Set(width-1, y, (3.0*g1.Get(width-1, y)+g1.Get(width-2, y))/4.0)
	}

	//--- Y blur, read from T and generate output
	for x := 0; x < width; x++ {
		for y := 1; y < height-1; y++ {
			t := 2.0 * T.Get(x, y)
			t += T.Get(x, y-1)
			t += T.Get(x, y+1)
			g2.Set(x, y, t/4.0)
		}
		g2.Set(x, 0, (3.0*T.Get(x, 0)+T.Get(x, 1))/4.0)
		g2.Set(x, height-1, (3.0*T.Get(x, height-1)+T.Get(x, height-2))/4.0)
	}

	return g2
}

// UpSampleInto populates a grid `B`, which is usually bigger, by
// copying the nearest value from `A`. When B is exactly 2x as big,
// each value from `A` lands four times, in a 2x2 block of `B`.
func (A FloatGrid) UpSampleInto(B *FloatGrid) {
	awidth := A.Dx()
	aheight := A.Dy()
	width := B.Dx()
	height := B.Dy()

	for y := 0; y < height; y++ {
		ay := y * aheight / height
		if ay >= aheight {
			ay = aheight - 1
		}
		for x := 0; x < width; x++ {
			ax := x * awidth / width
			if ax >= awidth {
				ax = awidth - 1
			}
			B.Set(x, y, A.Get(ax, ay))
		}
	}
}

// UpSample is UpSampleInto, allocating the destination.
func (A FloatGrid) UpSample(w, h int) FloatGrid {
	B := NewFloatGrid(w, h)
	A.UpSampleInto(&B)
	return B
}

// MinMax ignores non-finite values. An empty (or all non-finite) grid gives 0,0.
func (fg FloatGrid) MinMax() (float64, float64) {
	finite := fg.finiteValues()
	if len(finite) == 0 {
		return 0, 0
	}
	return floats.Min(finite), floats.Max(finite)
}

func (fg FloatGrid) finiteValues() []float64 {
	out := make([]float64, 0, len(fg.values))
	for _, v := range fg.values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func (fg FloatGrid) Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToImg renders a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg FloatGrid) ToImg(title string) image.Image {
	min, max := fg.MinMax()
	if max == min {
		max = min + 1
	}

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{fg.Dx(), fg.Dy()}})
	for x := 0; x < fg.Dx(); x++ {
		for y := 0; y < fg.Dy(); y++ {
			lum := Clip((fg.Get(x, y)-min)/(max-min), 0, 1)
			if math.IsNaN(lum) {
				lum = 0
			}
			gray := GammaExpand_F64(lum)
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 50, 50)
	return dc.Image()
}
