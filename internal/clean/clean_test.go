package clean

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/ontime-kpi/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropDuplicateRows(t *testing.T) {
	tb := table.New("m", []string{"ID", "Gender", "Reached.on.Time_Y.N"}, [][]string{
		{"1", "F", "1"},
		{"2", "M", "0"},
		{"1", "F", "1"},
		{"1", "F", "0"},
		{"2", "M", "0"},
	})
	out, removed := DropDuplicateRows(tb)
	assert.Equal(t, 2, removed)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"1", "F", "1"}, out.Row(0))
	assert.Equal(t, []string{"2", "M", "0"}, out.Row(1))
	assert.Equal(t, []string{"1", "F", "0"}, out.Row(2))

	seen := map[string]bool{}
	for i := 0; i < out.Len(); i++ {
		k := strings.Join(out.Row(i), ",")
		assert.False(t, seen[k], "row %q repeated", k)
		seen[k] = true
	}

	same, removed := DropDuplicateRows(out)
	assert.Zero(t, removed)
	assert.Equal(t, out.Len(), same.Len())
}

func TestDropDuplicateRowsTreatsMissingAlike(t *testing.T) {
	tb := table.New("m", []string{"ID", "Gender"}, [][]string{{"1", "NA"}, {"1", ""}})
	out, removed := DropDuplicateRows(tb)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, out.Len())
}

func TestFindDuplicateIDs(t *testing.T) {
	tb := table.New("m", []string{"ID", "Gender"}, [][]string{
		{"10", "F"},
		{"2", "M"},
		{"10", "M"},
		{"3", "F"},
		{"2", "F"},
		{"10", "F"},
	})
	res := FindDuplicateIDs(tb, "ID", 20)
	require.True(t, res.Checked)
	assert.Equal(t, 3, res.Count)
	require.NotNil(t, res.Sample)
	ids, err := res.Sample.Column("ID")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "2", "10", "10", "10"}, ids)

	capped := FindDuplicateIDs(tb, "ID", 2)
	assert.Equal(t, 2, capped.Sample.Len())
}

func TestFindDuplicateIDsNone(t *testing.T) {
	tb := table.New("m", []string{"ID"}, [][]string{{"1"}, {"2"}})
	res := FindDuplicateIDs(tb, "ID", 20)
	assert.True(t, res.Checked)
	assert.Zero(t, res.Count)
	assert.Nil(t, res.Sample)

	absent := FindDuplicateIDs(tb, "Order", 20)
	assert.False(t, absent.Checked)
}

func TestDropSparseColumns(t *testing.T) {
	tb := table.New("m", []string{"ID", "mostly_empty", "some_empty", "exactly_60"}, [][]string{
		{"1", "", "x", ""},
		{"2", "", "", ""},
		{"3", "", "y", ""},
		{"4", "", "z", "a"},
		{"5", "v", "w", "b"},
	})
	out, res := DropSparseColumns(tb, 0.6)
	assert.Equal(t, []string{"mostly_empty"}, res.Dropped)
	assert.Equal(t, []string{"ID", "some_empty", "exactly_60"}, out.Columns())

	require.Len(t, res.Fractions, 4)
	assert.Equal(t, ColumnMissing{Name: "mostly_empty", Fraction: 0.8}, res.Fractions[0])
	assert.Equal(t, "exactly_60", res.Fractions[1].Name)
	assert.InDelta(t, 0.6, res.Fractions[1].Fraction, 1e-12)
	assert.Equal(t, "some_empty", res.Fractions[2].Name)
	assert.Equal(t, "ID", res.Fractions[3].Name)

	for _, m := range res.Fractions {
		if m.Fraction > 0.6 {
			assert.False(t, out.Has(m.Name))
		} else {
			assert.True(t, out.Has(m.Name))
		}
	}
}
