package table

import (
	"fmt"
	"math"
	"strconv"
)

// Join suffixes applied when both sides carry a non-key column of the same name.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// KeyOf canonicalizes an identifier so that "7", "7.0" and " 7" compare equal.
// Missing identifiers return "".
func KeyOf(v string) string {
	v = Normalize(v)
	if v == "" {
		return ""
	}
	if f, ok := ParseNumber(v); ok && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return v
}

// InnerJoin keeps only rows whose key appears in both tables. Left row order
// is preserved; a left row matching k right rows yields k output rows. The
// output holds every left column followed by the right non-key columns.
// Rows with a missing key never match.
func InnerJoin(left, right *Table, key string) (*Table, error) {
	lk, ok := left.index[key]
	if !ok {
		return nil, fmt.Errorf("join left %s: %w: %s", left.name, ErrColumnNotFound, key)
	}
	rk, ok := right.index[key]
	if !ok {
		return nil, fmt.Errorf("join right %s: %w: %s", right.name, ErrColumnNotFound, key)
	}

	rightCols := make([]int, 0, len(right.cols))
	clash := map[string]bool{}
	for j, c := range right.cols {
		if j == rk {
			continue
		}
		rightCols = append(rightCols, j)
		if _, dup := left.index[c]; dup && c != key {
			clash[c] = true
		}
	}

	cols := make([]string, 0, len(left.cols)+len(rightCols))
	for _, c := range left.cols {
		if clash[c] {
			c += LeftSuffix
		}
		cols = append(cols, c)
	}
	for _, j := range rightCols {
		c := right.cols[j]
		if clash[c] {
			c += RightSuffix
		}
		cols = append(cols, c)
	}

	byKey := make(map[string][]int, len(right.rows))
	for i, r := range right.rows {
		k := KeyOf(r[rk])
		if k == "" {
			continue
		}
		byKey[k] = append(byKey[k], i)
	}

	var rows [][]string
	for _, lr := range left.rows {
		k := KeyOf(lr[lk])
		if k == "" {
			continue
		}
		for _, ri := range byKey[k] {
			rr := right.rows[ri]
			row := make([]string, 0, len(cols))
			row = append(row, lr...)
			for _, j := range rightCols {
				row = append(row, rr[j])
			}
			rows = append(rows, row)
		}
	}
	return fromTrusted(left.name+"+"+right.name, cols, rows), nil
}

// KeyStats reports how many rows carry a key and how many distinct keys exist.
type KeyStats struct {
	Rows     int
	Distinct int
	Missing  int
}

// Duplicates is the number of rows repeating an earlier key.
func (s KeyStats) Duplicates() int { return s.Rows - s.Missing - s.Distinct }

// Keys summarizes identifier uniqueness for col.
func (t *Table) Keys(col string) (KeyStats, error) {
	j, ok := t.index[col]
	if !ok {
		return KeyStats{}, fmt.Errorf("%w: %s", ErrColumnNotFound, col)
	}
	seen := make(map[string]struct{}, len(t.rows))
	st := KeyStats{Rows: len(t.rows)}
	for _, r := range t.rows {
		k := KeyOf(r[j])
		if k == "" {
			st.Missing++
			continue
		}
		seen[k] = struct{}{}
	}
	st.Distinct = len(seen)
	return st, nil
}
