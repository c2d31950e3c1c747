// Package clean implements the corrective passes run on the merged table:
// exact-duplicate removal, the duplicate-identifier report and the
// high-missingness column drop. None of them fail.
package clean

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/ontime-kpi/internal/table"
)

// DropDuplicateRows keeps the first occurrence of every row that is identical
// across all columns and returns how many rows were removed.
func DropDuplicateRows(t *table.Table) (*table.Table, int) {
	seen := make(map[string]struct{}, t.Len())
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		key := strings.Join(t.Row(i), "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	removed := t.Len() - len(keep)
	if removed == 0 {
		return t, 0
	}
	return t.SelectRows(keep), removed
}

// DuplicateIDs is the outcome of the duplicate-identifier check.
type DuplicateIDs struct {
	// Checked is false when the identifier column is absent.
	Checked bool
	// Count is the number of rows whose identifier already appeared earlier.
	Count int
	// Sample holds rows whose identifier occurs more than once, sorted by
	// identifier, capped at the requested size.
	Sample *table.Table
}

// FindDuplicateIDs reports repeated identifiers without removing anything.
func FindDuplicateIDs(t *table.Table, idCol string, sampleSize int) DuplicateIDs {
	ids, err := t.Column(idCol)
	if err != nil {
		return DuplicateIDs{}
	}
	res := DuplicateIDs{Checked: true}
	occurrences := map[string]int{}
	for _, v := range ids {
		occurrences[table.KeyOf(v)]++
	}
	for k, n := range occurrences {
		if n > 1 {
			res.Count += n - 1
		} else {
			delete(occurrences, k)
		}
	}
	if res.Count == 0 {
		return res
	}

	var idx []int
	numeric := true
	for i, v := range ids {
		if _, ok := occurrences[table.KeyOf(v)]; !ok {
			continue
		}
		idx = append(idx, i)
		if _, ok := table.ParseNumber(v); !ok {
			numeric = false
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := ids[idx[a]], ids[idx[b]]
		if numeric {
			fa, _ := table.ParseNumber(va)
			fb, _ := table.ParseNumber(vb)
			return fa < fb
		}
		return va < vb
	})
	if sampleSize > 0 && len(idx) > sampleSize {
		idx = idx[:sampleSize]
	}
	res.Sample = t.SelectRows(idx)
	return res
}

// ColumnMissing is the missing fraction of one column.
type ColumnMissing struct {
	Name     string
	Fraction float64
}

// MissingFractions returns the per-column missing fraction, highest first.
// Ties keep the column order of the table.
func MissingFractions(t *table.Table) []ColumnMissing {
	cols := t.Columns()
	out := make([]ColumnMissing, len(cols))
	for j, c := range cols {
		out[j].Name = c
		if t.Len() == 0 {
			continue
		}
		cells, _ := t.Column(c)
		missing := 0
		for _, v := range cells {
			if v == "" {
				missing++
			}
		}
		out[j].Fraction = float64(missing) / float64(t.Len())
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Fraction > out[b].Fraction })
	return out
}

// SparseColumns is the result of DropSparseColumns.
type SparseColumns struct {
	Fractions []ColumnMissing
	Dropped   []string
}

// DropSparseColumns removes every column whose missing fraction is strictly
// greater than threshold.
func DropSparseColumns(t *table.Table, threshold float64) (*table.Table, SparseColumns) {
	res := SparseColumns{Fractions: MissingFractions(t)}
	for _, m := range res.Fractions {
		if m.Fraction > threshold {
			res.Dropped = append(res.Dropped, m.Name)
		}
	}
	if len(res.Dropped) == 0 {
		return t, res
	}
	return t.DropColumns(res.Dropped...), res
}
