// Package table holds the in-memory tabular model the report pipeline threads
// through its stages. Cells are kept as text; numeric views are parsed on demand.
package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrColumnNotFound is returned when a named column is not part of the schema.
var ErrColumnNotFound = errors.New("column not found")

// NATokens are cell values treated as missing, in addition to the empty string.
var NATokens = []string{"NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "null", "NULL", "None", "#N/A", "<NA>"}

var naSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(NATokens))
	for _, tok := range NATokens {
		m[tok] = struct{}{}
	}
	return m
}()

// IsMissing reports whether a raw cell value counts as missing.
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := naSet[v]
	return ok
}

// Normalize trims a cell and maps every missing token to "".
func Normalize(v string) string {
	if IsMissing(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// ParseNumber parses a finite float from a cell.
func ParseNumber(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders a float in its shortest round-trip form.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Table is an ordered set of rows sharing a column list. Tables are treated
// as immutable: every transform returns a new Table.
type Table struct {
	name  string
	cols  []string
	index map[string]int
	rows  [][]string
}

// New builds a Table, normalizing missing cells and padding or truncating
// rows to the header width. Repeated header names get a numeric suffix.
func New(name string, cols []string, rows [][]string) *Table {
	t := &Table{name: name, index: make(map[string]int, len(cols))}
	seen := map[string]int{}
	for _, c := range cols {
		c = strings.TrimSpace(c)
		if n, dup := seen[c]; dup {
			seen[c] = n + 1
			c = fmt.Sprintf("%s_%d", c, n+1)
		} else {
			seen[c] = 0
		}
		t.index[c] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	t.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, len(t.cols))
		for j := range row {
			if j < len(r) {
				row[j] = Normalize(r[j])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// fromTrusted wraps already-normalized data without copying.
func fromTrusted(name string, cols []string, rows [][]string) *Table {
	t := &Table{name: name, cols: cols, rows: rows, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.index[c] = i
	}
	return t
}

// Name is the label the table was loaded or derived under.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Shape formats (rows, columns) for console diagnostics.
func (t *Table) Shape() string { return fmt.Sprintf("(%d, %d)", t.Len(), t.Width()) }

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Cell returns the value at row i for col; "" when missing.
func (t *Table) Cell(i int, col string) (string, error) {
	j, ok := t.index[col]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrColumnNotFound, col)
	}
	return t.rows[i][j], nil
}

// Column returns a copy of one column's cells.
func (t *Table) Column(col string) ([]string, error) {
	j, ok := t.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, col)
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Floats parses a column as numbers. valid[i] is false for missing or
// unparsable cells.
func (t *Table) Floats(col string) (vals []float64, valid []bool, err error) {
	cells, err := t.Column(col)
	if err != nil {
		return nil, nil, err
	}
	vals = make([]float64, len(cells))
	valid = make([]bool, len(cells))
	for i, c := range cells {
		vals[i], valid[i] = ParseNumber(c)
	}
	return vals, valid, nil
}

// Records returns the header followed by every row, as copies.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, t.Columns())
	for i := range t.rows {
		out = append(out, t.Row(i))
	}
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	return fromTrusted(t.name, t.Columns(), t.rows[:n:n])
}

// SelectRows returns the rows at idx, in that order.
func (t *Table) SelectRows(idx []int) *Table {
	rows := make([][]string, len(idx))
	for k, i := range idx {
		rows[k] = t.rows[i]
	}
	return fromTrusted(t.name, t.Columns(), rows)
}

// WithColumn appends a column, or replaces it when the name already exists.
func (t *Table) WithColumn(col string, values []string) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, fmt.Errorf("column %s: %d values for %d rows", col, len(values), len(t.rows))
	}
	cols := t.Columns()
	j, exists := t.index[col]
	if !exists {
		j = len(cols)
		cols = append(cols, col)
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(cols))
		copy(row, r)
		row[j] = Normalize(values[i])
		rows[i] = row
	}
	return fromTrusted(t.name, cols, rows), nil
}

// DropColumns removes the named columns; unknown names are ignored.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var keep []int
	var cols []string
	for j, c := range t.cols {
		if _, ok := drop[c]; ok {
			continue
		}
		keep = append(keep, j)
		cols = append(cols, c)
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(keep))
		for k, j := range keep {
			row[k] = r[j]
		}
		rows[i] = row
	}
	return fromTrusted(t.name, cols, rows)
}

// CoerceNumeric rewrites the named columns so every non-missing cell is a
// number; cells that do not parse become missing. Absent columns are skipped.
func (t *Table) CoerceNumeric(names ...string) *Table {
	var idx []int
	for _, n := range names {
		if j, ok := t.index[n]; ok {
			idx = append(idx, j)
		}
	}
	if len(idx) == 0 {
		return t
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(r))
		copy(row, r)
		for _, j := range idx {
			if f, ok := ParseNumber(row[j]); ok {
				row[j] = FormatNumber(f)
			} else {
				row[j] = ""
			}
		}
		rows[i] = row
	}
	return fromTrusted(t.name, t.Columns(), rows)
}

// Rename returns the same data under a new name.
func (t *Table) Rename(name string) *Table {
	return fromTrusted(name, t.cols, t.rows)
}
