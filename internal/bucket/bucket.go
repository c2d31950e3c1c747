// Package bucket derives ordered categorical labels from numeric columns.
package bucket

import (
	"errors"
	"math"
	"sort"
)

// Discount bins are right-closed: (-0.01, 0], (0, 5], (5, 10], (10, 20], (20, 100].
var (
	DiscountEdges  = []float64{-0.01, 0, 5, 10, 20, 100}
	DiscountLabels = []string{"0%", "0-5%", "5-10%", "10-20%", "20%+"}
	WeightLabels   = []string{"Q1", "Q2", "Q3", "Q4"}
)

// ErrNonUniqueEdges is returned by QuantileEdges when tied values collapse
// two or more quantile edges together.
var ErrNonUniqueEdges = errors.New("bin edges must be unique")

// Method names how a weight bucketing was produced.
type Method string

const (
	MethodQuantile   Method = "quantile"
	MethodEqualWidth Method = "equal-width"
	MethodNone       Method = "none"
)

// Cut assigns each valid value to a right-closed bin over edges and returns
// its label, or "" when the value is invalid or falls outside the edges.
// With includeLowest the first bin also contains edges[0].
func Cut(values []float64, valid []bool, edges []float64, labels []string, includeLowest bool) []string {
	out := make([]string, len(values))
	if len(edges) < 2 || len(labels) != len(edges)-1 {
		return out
	}
	for i, x := range values {
		if !valid[i] {
			continue
		}
		idx := sort.SearchFloat64s(edges, x)
		switch {
		case idx == 0 && includeLowest && x == edges[0]:
			idx = 1
		case idx == 0, idx == len(edges):
			continue
		}
		out[i] = labels[idx-1]
	}
	return out
}

// Discount buckets discount percentages into DiscountLabels.
func Discount(values []float64, valid []bool) []string {
	return Cut(values, valid, DiscountEdges, DiscountLabels, false)
}

// QuantileEdges returns the q+1 edges splitting the valid values into q
// equal-population bins, using linear interpolation between order statistics.
func QuantileEdges(values []float64, valid []bool, q int) ([]float64, error) {
	sorted := collect(values, valid)
	if len(sorted) == 0 {
		return nil, errors.New("no values to bucket")
	}
	sort.Float64s(sorted)
	edges := make([]float64, q+1)
	for k := 0; k <= q; k++ {
		edges[k] = quantile(sorted, float64(k)/float64(q))
	}
	for k := 1; k < len(edges); k++ {
		if edges[k] <= edges[k-1] {
			return edges, ErrNonUniqueEdges
		}
	}
	return edges, nil
}

// EqualWidthEdges splits [min, max] of the valid values into n equal-width
// bins. The lowest edge is pulled down by 0.1% of the range so the minimum
// lands in the first right-closed bin; a zero range is widened on both sides.
func EqualWidthEdges(values []float64, valid []bool, n int) ([]float64, error) {
	vals := collect(values, valid)
	if len(vals) == 0 {
		return nil, errors.New("no values to bucket")
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= widen(lo)
		hi += widen(hi)
		return linspace(lo, hi, n+1), nil
	}
	edges := linspace(lo, hi, n+1)
	edges[0] -= (hi - lo) * 0.001
	return edges, nil
}

// Weight buckets weights into WeightLabels by quantile, falling back to equal
// widths when the quantile edges are not unique.
func Weight(values []float64, valid []bool) ([]string, Method) {
	n := len(WeightLabels)
	edges, err := QuantileEdges(values, valid, n)
	if err == nil {
		return Cut(values, valid, edges, WeightLabels, true), MethodQuantile
	}
	if edges, err = EqualWidthEdges(values, valid, n); err == nil {
		return Cut(values, valid, edges, WeightLabels, false), MethodEqualWidth
	}
	return make([]string, len(values)), MethodNone
}

// Count is the number of rows carrying one label.
type Count struct {
	Label string
	N     int
}

// Distribution counts assigned labels in declared order and returns the
// number of unlabeled rows separately.
func Distribution(assigned []string, labels []string) ([]Count, int) {
	byLabel := make(map[string]int, len(labels))
	missing := 0
	for _, a := range assigned {
		if a == "" {
			missing++
			continue
		}
		byLabel[a]++
	}
	out := make([]Count, len(labels))
	for i, l := range labels {
		out[i] = Count{Label: l, N: byLabel[l]}
	}
	return out, missing
}

func collect(values []float64, valid []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if valid[i] {
			out = append(out, v)
		}
	}
	return out
}

func widen(v float64) float64 {
	if v == 0 {
		return 0.001
	}
	return 0.001 * math.Abs(v)
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func quantile(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
