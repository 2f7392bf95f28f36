package truecolor

import (
	"fmt"
	"math"

	"github.com/codahale/hdrhistogram"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const maxHistogramSpan = 1 << 40

// BandStats summarizes the distribution of values in a band.
type BandStats struct {
	ID        string
	Unit      Unit
	Min, Max  float64
	Mean      float64
	StdDev    float64
	P2        float64
	P50       float64
	P98       float64
	NonFinite int
}

func (bs BandStats) String() string {
	return fmt.Sprintf("%s(%s) min=%.2f max=%.2f mean=%.2f sd=%.2f p2=%.2f p50=%.2f p98=%.2f nonfinite=%d",
		bs.ID, bs.Unit, bs.Min, bs.Max, bs.Mean, bs.StdDev, bs.P2, bs.P50, bs.P98, bs.NonFinite)
}

// SummarizeBand computes stats over the finite values of a band. The
// percentiles come from a histogram with 3 significant figures, so are
// approximate.
func SummarizeBand(b Band) BandStats {
	bs := BandStats{ID: b.ID, Unit: b.Unit}

	finite := make([]float64, 0, b.Len())
	for _, v := range b.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bs.NonFinite++
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return bs
	}

	bs.Min, bs.Max = floats.Min(finite), floats.Max(finite)
	bs.Mean, bs.StdDev = stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		bs.StdDev = 0
	}

	// The histogram only takes non-negative integers, so record values
	// as offsets from the minimum. Wide ranges are binned down to
	// maxHistogramSpan buckets; past 2^62 the histogram never finishes
	// sizing itself.
	width := bs.Max - bs.Min
	if math.IsInf(width, 0) {
		bs.P2, bs.P50, bs.P98 = math.NaN(), math.NaN(), math.NaN()
		return bs
	}
	binSize := 1.0
	if width > maxHistogramSpan {
		binSize = width / maxHistogramSpan
	}
	span := int64(math.Ceil(width/binSize)) + 2
	h := hdrhistogram.New(1, span, 3)
	for _, v := range finite {
		h.RecordValue(int64((v - bs.Min) / binSize))
	}
	quantile := func(q float64) float64 {
		return math.Min(float64(h.ValueAtQuantile(q))*binSize+bs.Min, bs.Max)
	}
	bs.P2, bs.P50, bs.P98 = quantile(2), quantile(50), quantile(98)

	return bs
}
