package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/ontime-kpi/internal/loader"
	"github.com/KaramelBytes/ontime-kpi/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSVKeepsTextAndMissing(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "X_train.csv")
	content := "ID,Warehouse_block,Mode_of_Shipment,Weight_in_gms\n" +
		"1,D,Flight,1233\n" +
		"2,F,Flight,NA\n" +
		"3,A,,3088\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	tb, err := loader.Load(p, loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, "X_train.csv", tb.Name())
	assert.Equal(t, []string{"ID", "Warehouse_block", "Mode_of_Shipment", "Weight_in_gms"}, tb.Columns())
	require.Equal(t, 3, tb.Len())
	assert.Equal(t, []string{"1", "D", "Flight", "1233"}, tb.Row(0))
	assert.Equal(t, []string{"2", "F", "Flight", ""}, tb.Row(1))
	assert.Equal(t, []string{"3", "A", "", "3088"}, tb.Row(2))
}

func TestLoadTSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "y_train.tsv")
	require.NoError(t, os.WriteFile(p, []byte("ID\tReached.on.Time_Y.N\n1\t1\n2\t0\n"), 0o644))
	tb, err := loader.Load(p, loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Reached.on.Time_Y.N"}, tb.Columns())
	assert.Equal(t, 2, tb.Len())
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	p := filepath.Join(t.TempDir(), "y_train.csv")
	require.NoError(t, os.WriteFile(p, []byte("ID,Reached.on.Time_Y.N\n"), 0o644))
	tb, err := loader.Load(p, loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Reached.on.Time_Y.N"}, tb.Columns())
	assert.Equal(t, 0, tb.Len())
	assert.NoError(t, loader.Require(tb, "ID", "Reached.on.Time_Y.N"))

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = loader.Load(empty, loader.Options{})
	assert.Error(t, err)
}

func TestLoadCSVStripsBOM(t *testing.T) {
	p := filepath.Join(t.TempDir(), "X_train.csv")
	require.NoError(t, os.WriteFile(p, []byte("\xEF\xBB\xBFID,Gender\n1,F\n"), 0o644))
	tb, err := loader.Load(p, loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Gender"}, tb.Columns())
	assert.NoError(t, loader.Require(tb, "ID"))

	hp := filepath.Join(t.TempDir(), "y_train.csv")
	require.NoError(t, os.WriteFile(hp, []byte("\xEF\xBB\xBFID,Reached.on.Time_Y.N\n"), 0o644))
	tb, err = loader.Load(hp, loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Reached.on.Time_Y.N"}, tb.Columns())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.csv"), loader.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadUnsupported(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.parquet")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	_, err := loader.Load(p, loader.Options{})
	assert.True(t, errors.Is(err, loader.ErrUnsupported))
}

func TestLoadXLSXSelectsSheet(t *testing.T) {
	p := filepath.Join(t.TempDir(), "X_train.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Shipments")
	require.NoError(t, err)
	rows := [][]interface{}{
		{"ID", "Gender", "Discount_offered"},
		{1, "F", 44},
		{2, "M", 59},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Shipments", cell, &r))
	}
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	tb, err := loader.Load(p, loader.Options{Sheet: "shipments"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Gender", "Discount_offered"}, tb.Columns())
	assert.Equal(t, []string{"2", "M", "59"}, tb.Row(1))

	_, err = loader.Load(p, loader.Options{Sheet: "Missing"})
	assert.ErrorContains(t, err, "Available sheets")
}

func TestRequire(t *testing.T) {
	tb := table.New("y_train.csv", []string{"ID", "Reached.on.Time_Y.N"}, nil)
	assert.NoError(t, loader.Require(tb, "ID", "Reached.on.Time_Y.N"))
	err := loader.Require(tb, "ID", "Gender")
	assert.True(t, errors.Is(err, table.ErrColumnNotFound))
}
