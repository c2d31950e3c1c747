package table

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesMissingAndPadsRows(t *testing.T) {
	tb := New("x.csv", []string{"ID", "Gender", "Weight_in_gms"}, [][]string{
		{"1", " F ", "NA"},
		{"2", "NaN"},
		{"3", "M", "1200", "extra"},
	})
	require.Equal(t, 3, tb.Len())
	require.Equal(t, 3, tb.Width())
	assert.Equal(t, []string{"1", "F", ""}, tb.Row(0))
	assert.Equal(t, []string{"2", "", ""}, tb.Row(1))
	assert.Equal(t, []string{"3", "M", "1200"}, tb.Row(2))
	assert.Equal(t, "(3, 3)", tb.Shape())
}

func TestNewRenamesRepeatedHeaders(t *testing.T) {
	tb := New("dup", []string{"a", "a", "b"}, nil)
	assert.Equal(t, []string{"a", "a_1", "b"}, tb.Columns())
}

func TestSchemaInfersKinds(t *testing.T) {
	tb := New("s", []string{"ID", "Mode_of_Shipment", "Discount_offered", "empty"}, [][]string{
		{"1", "Ship", "10", ""},
		{"2", "Flight", "", "NA"},
	})
	s := tb.Schema()
	want := Schema{
		{Name: "ID", Kind: KindNumeric},
		{Name: "Mode_of_Shipment", Kind: KindCategorical},
		{Name: "Discount_offered", Kind: KindNumeric},
		{Name: "empty", Kind: KindEmpty},
	}
	assert.Equal(t, want, s)

	f, ok := s.Lookup("Discount_offered")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, f.Kind)
	_, ok = s.Lookup("Warehouse_block")
	assert.False(t, ok)
}

func TestColumnNotFound(t *testing.T) {
	tb := New("t", []string{"ID"}, [][]string{{"1"}})
	_, err := tb.Column("nope")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	_, _, err = tb.Floats("nope")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestWithColumnAndDropColumns(t *testing.T) {
	tb := New("t", []string{"ID", "v"}, [][]string{{"1", "a"}, {"2", "b"}})
	added, err := tb.WithColumn("bin", []string{"Q1", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "v", "bin"}, added.Columns())
	assert.Equal(t, []string{"Q1", ""}, mustColumn(t, added, "bin"))
	// original untouched
	assert.Equal(t, 2, tb.Width())

	replaced, err := added.WithColumn("v", []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, mustColumn(t, replaced, "v"))

	_, err = tb.WithColumn("short", []string{"only-one"})
	assert.Error(t, err)

	dropped := added.DropColumns("v", "unknown")
	assert.Equal(t, []string{"ID", "bin"}, dropped.Columns())
	assert.Equal(t, []string{"2", ""}, dropped.Row(1))
}

func TestCoerceNumeric(t *testing.T) {
	tb := New("t", []string{"ID", "Weight_in_gms", "Gender"}, [][]string{
		{"1", "1200.50", "F"},
		{"2", "heavy", "M"},
		{"3", "07", "F"},
	})
	out := tb.CoerceNumeric("Weight_in_gms", "absent")
	assert.Equal(t, []string{"1200.5", "", "7"}, mustColumn(t, out, "Weight_in_gms"))
	assert.Equal(t, []string{"F", "M", "F"}, mustColumn(t, out, "Gender"))
}

func TestInnerJoinKeepsIntersection(t *testing.T) {
	x := New("X_train.csv", []string{"ID", "Mode_of_Shipment", "Discount_offered"}, [][]string{
		{"1", "Flight", "0"},
		{"2", "Ship", "10"},
		{"4", "Road", "3"},
	})
	y := New("y_train.csv", []string{"ID", "Reached.on.Time_Y.N"}, [][]string{
		{"1.0", "1"},
		{"2", "0"},
		{"3", "1"},
	})
	m, err := InnerJoin(x, y, "ID")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Mode_of_Shipment", "Discount_offered", "Reached.on.Time_Y.N"}, m.Columns())
	require.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"1", "Flight", "0", "1"}, m.Row(0))
	assert.Equal(t, []string{"2", "Ship", "10", "0"}, m.Row(1))

	ids := keySet(t, m)
	assert.Equal(t, intersect(keySet(t, x), keySet(t, y)), ids)
}

func TestInnerJoinDuplicateKeysMultiply(t *testing.T) {
	x := New("x", []string{"ID", "a"}, [][]string{{"1", "p"}, {"1", "q"}, {"", "missing"}})
	y := New("y", []string{"ID", "b"}, [][]string{{"1", "r"}, {"1", "s"}, {"", "z"}})
	m, err := InnerJoin(x, y, "ID")
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())
	st, err := m.Keys("ID")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Duplicates())
}

func TestInnerJoinSuffixesClashingColumns(t *testing.T) {
	x := New("x", []string{"ID", "note"}, [][]string{{"1", "left"}})
	y := New("y", []string{"note", "ID"}, [][]string{{"right", "1"}})
	m, err := InnerJoin(x, y, "ID")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "note_x", "note_y"}, m.Columns())
	assert.Equal(t, []string{"1", "left", "right"}, m.Row(0))
}

func TestInnerJoinMissingKeyColumn(t *testing.T) {
	x := New("x", []string{"ID"}, nil)
	y := New("y", []string{"id"}, nil)
	_, err := InnerJoin(x, y, "ID")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestPreviewRendersHead(t *testing.T) {
	tb := New("t", []string{"ID", "Mode_of_Shipment"}, [][]string{{"1", "Flight"}, {"2", ""}, {"3", "Ship"}, {"4", "Road"}})
	out := tb.Preview(3)
	assert.Contains(t, out, "Mode_of_Shipment")
	assert.Contains(t, out, "Flight")
	assert.NotContains(t, out, "Road")
	assert.Contains(t, New("e", []string{"ID"}, nil).Preview(3), "columns")
}

func TestPreviewPrintsBeyondTenRows(t *testing.T) {
	var rows [][]string
	for i := 0; i < 15; i++ {
		rows = append(rows, []string{FormatNumber(float64(100 + i)), "Ship"})
	}
	out := New("t", []string{"ID", "Mode_of_Shipment"}, rows).Preview(20)
	assert.Contains(t, out, "[15x2]")
	for i := 0; i < 15; i++ {
		assert.Contains(t, out, FormatNumber(float64(100+i)))
	}
	assert.NotContains(t, out, "...")
}

func TestProfileMarkdown(t *testing.T) {
	tb := New("X_train.csv", []string{"ID", "Gender", "Weight_in_gms"}, [][]string{
		{"1", "F", "1000"},
		{"2", "M", "3000"},
		{"3", "F", ""},
	})
	p := tb.Profile()
	require.Len(t, p.Cols, 3)
	w := p.Cols[2]
	assert.Equal(t, KindNumeric, w.Kind)
	assert.Equal(t, 1, w.Missing)
	assert.InDelta(t, 2000, w.Mean, 1e-9)
	assert.InDelta(t, 1.0/3.0, w.MissingFraction(), 1e-9)

	md := p.Markdown()
	assert.Contains(t, md, "File: X_train.csv")
	assert.Contains(t, md, "Gender: categorical (non-null 3, missing 0.0%) — top: F(2), M(1)")
	assert.Contains(t, md, "Weight_in_gms: numeric")
}

func mustColumn(t *testing.T, tb *Table, col string) []string {
	t.Helper()
	c, err := tb.Column(col)
	require.NoError(t, err)
	return c
}

func keySet(t *testing.T, tb *Table) []string {
	t.Helper()
	seen := map[string]struct{}{}
	for _, v := range mustColumn(t, tb, "ID") {
		if k := KeyOf(v); k != "" {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func intersect(a, b []string) []string {
	in := map[string]bool{}
	for _, v := range b {
		in[v] = true
	}
	var out []string
	for _, v := range a {
		if in[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func TestKeyOf(t *testing.T) {
	cases := map[string]string{"7": "7", "7.0": "7", " 7 ": "7", "A-7": "A-7", "NA": "", "7.5": "7.5"}
	for in, want := range cases {
		if got := KeyOf(in); got != want {
			t.Errorf("KeyOf(%q) = %q, want %q", in, got, want)
		}
	}
}
