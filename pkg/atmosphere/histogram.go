package atmosphere

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/menta2k/image-dehazer/pkg/types"
)

// Histogram is an equal-width histogram over the observed value range.
// Edges has one more entry than Counts; the last bin is closed on the
// right so the maximum value is counted.
type Histogram struct {
	Counts []int
	Edges  []float64
	CDF    []float64 // cumulative fraction of samples up to each bin
}

// NewHistogram bins values into the given number of bins spanning
// [min, max]. When all values are equal the range is widened to
// [v-0.5, v+0.5].
func NewHistogram(values []float64, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("%w: histogram needs at least one bin, got %d", types.ErrInvalidParameter, bins)
	}
	if len(values) == 0 {
		return Histogram{}, fmt.Errorf("%w: histogram of no values", types.ErrDegenerateInput)
	}

	if floats.HasNaN(values) {
		return Histogram{}, fmt.Errorf("%w: histogram of NaN values", types.ErrDegenerateInput)
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Histogram{}, fmt.Errorf("%w: non-finite values in range [%g, %g]", types.ErrDegenerateInput, lo, hi)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	h := Histogram{
		Counts: make([]int, bins),
		Edges:  make([]float64, bins+1),
		CDF:    make([]float64, bins),
	}
	floats.Span(h.Edges, lo, hi)

	norm := float64(bins) / (hi - lo)
	for _, v := range values {
		h.Counts[h.bin(v, norm)]++
	}

	total := 0
	n := float64(len(values))
	for i, c := range h.Counts {
		total += c
		h.CDF[i] = float64(total) / n
	}
	return h, nil
}

// bin locates v, correcting the scaled estimate against the edges so
// rounding never puts a value on the wrong side of a boundary.
func (h Histogram) bin(v, norm float64) int {
	last := len(h.Counts) - 1
	i := int((v - h.Edges[0]) * norm)
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	if i > 0 && v < h.Edges[i] {
		i--
	}
	if i < last && v >= h.Edges[i+1] {
		i++
	}
	return i
}

// CutoffBin returns the highest bin whose cumulative fraction is at most
// fraction. The scan runs once from the top bin down and falls back to
// bin 0 when no bin qualifies.
func (h Histogram) CutoffBin(fraction float64) int {
	for l := len(h.CDF) - 1; l >= 0; l-- {
		if h.CDF[l] <= fraction {
			return l
		}
	}
	return 0
}
