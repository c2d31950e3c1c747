// Package kpi aggregates the binary on-time outcome by grouping dimension.
package kpi

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/ontime-kpi/internal/table"
	"gonum.org/v1/gonum/stat"
)

// Kind tells which columns of a Summary are meaningful.
type Kind string

const (
	// KindRates holds count and rate, ordered by rate.
	KindRates Kind = "rates"
	// KindImpact adds gap, impact and the low-confidence flag.
	KindImpact Kind = "impact"
	// KindBucket holds count and rate in declared bucket order.
	KindBucket Kind = "bucket"
)

// Row is one group of a Summary.
type Row struct {
	Label         string
	Count         int
	Rate          float64
	Gap           float64
	Impact        float64
	LowConfidence bool
}

// Summary is the aggregation of the outcome over one dimension. Absent is
// set when the dimension or the outcome column does not exist.
type Summary struct {
	Dimension string
	Kind      Kind
	Absent    bool
	Overall   float64
	Rows      []Row
}

// Empty reports whether there is nothing to print or write.
func (s Summary) Empty() bool { return s.Absent || len(s.Rows) == 0 }

// SortedByRate returns a copy ordered by rate, ties broken by label.
func (s Summary) SortedByRate(ascending bool) Summary {
	out := s
	out.Rows = append([]Row(nil), s.Rows...)
	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i], out.Rows[j]
		if a.Rate != b.Rate {
			if ascending {
				return a.Rate < b.Rate
			}
			return a.Rate > b.Rate
		}
		return a.Label < b.Label
	})
	return out
}

// Aggregator computes summaries against one outcome column.
type Aggregator struct {
	Outcome string
	// LowConfidence is the group size under which a row is flagged.
	LowConfidence int
}

// OverallRate is the mean outcome over every row with a non-missing outcome,
// and the number of such rows.
func (a Aggregator) OverallRate(t *table.Table) (float64, int, error) {
	vals, valid, err := t.Floats(a.Outcome)
	if err != nil {
		return 0, 0, err
	}
	xs := make([]float64, 0, len(vals))
	for i, v := range vals {
		if valid[i] {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return 0, 0, fmt.Errorf("outcome %s has no values", a.Outcome)
	}
	return stat.Mean(xs, nil), len(xs), nil
}

// LabelCount is the number of rows carrying one outcome value.
type LabelCount struct {
	Value string
	N     int
}

// LabelCounts counts outcome values, sorted by value; missing outcomes are
// reported as the empty value at the end.
func (a Aggregator) LabelCounts(t *table.Table) ([]LabelCount, error) {
	cells, err := t.Column(a.Outcome)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, c := range cells {
		counts[c]++
	}
	out := make([]LabelCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, LabelCount{Value: v, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		vi, vj := out[i].Value, out[j].Value
		if vi == "" || vj == "" {
			return vj == ""
		}
		fi, oki := table.ParseNumber(vi)
		fj, okj := table.ParseNumber(vj)
		if oki && okj {
			return fi < fj
		}
		return vi < vj
	})
	return out, nil
}

type group struct {
	label string
	xs    []float64
}

// groups collects outcome values per present group label, in first-seen order.
func (a Aggregator) groups(t *table.Table, dim string) ([]*group, bool) {
	labels, err := t.Column(dim)
	if err != nil {
		return nil, false
	}
	vals, valid, err := t.Floats(a.Outcome)
	if err != nil {
		return nil, false
	}
	byLabel := map[string]*group{}
	var order []*group
	for i, l := range labels {
		if l == "" || !valid[i] {
			continue
		}
		g, ok := byLabel[l]
		if !ok {
			g = &group{label: l}
			byLabel[l] = g
			order = append(order, g)
		}
		g.xs = append(g.xs, vals[i])
	}
	return order, true
}

func (a Aggregator) summarize(t *table.Table, dim string, kind Kind) Summary {
	s := Summary{Dimension: dim, Kind: kind}
	overall, _, err := a.OverallRate(t)
	if err != nil {
		s.Absent = !t.Has(a.Outcome)
		return s
	}
	s.Overall = overall
	groups, ok := a.groups(t, dim)
	if !ok {
		s.Absent = true
		return s
	}
	for _, g := range groups {
		rate := stat.Mean(g.xs, nil)
		gap := overall - rate
		s.Rows = append(s.Rows, Row{
			Label:         g.label,
			Count:         len(g.xs),
			Rate:          rate,
			Gap:           gap,
			Impact:        gap * float64(len(g.xs)),
			LowConfidence: len(g.xs) < a.LowConfidence,
		})
	}
	return s
}

// Rates returns count and rate per group, highest rate first.
func (a Aggregator) Rates(t *table.Table, dim string) Summary {
	return a.summarize(t, dim, KindRates).SortedByRate(false)
}

// Impact ranks groups by how much on-time volume they cost against the
// overall rate: impact = (overall - rate) * count, highest first.
func (a Aggregator) Impact(t *table.Table, dim string) Summary {
	s := a.summarize(t, dim, KindImpact)
	sort.SliceStable(s.Rows, func(i, j int) bool {
		if s.Rows[i].Impact != s.Rows[j].Impact {
			return s.Rows[i].Impact > s.Rows[j].Impact
		}
		return s.Rows[i].Label < s.Rows[j].Label
	})
	return s
}

// Bucket returns count and rate per bucket label in the given order. Labels
// outside order follow in lexical order.
func (a Aggregator) Bucket(t *table.Table, dim string, order []string) Summary {
	s := a.summarize(t, dim, KindBucket)
	rank := make(map[string]int, len(order))
	for i, l := range order {
		rank[l] = i
	}
	sort.SliceStable(s.Rows, func(i, j int) bool {
		ri, iok := rank[s.Rows[i].Label]
		rj, jok := rank[s.Rows[j].Label]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return s.Rows[i].Label < s.Rows[j].Label
	})
	return s
}
