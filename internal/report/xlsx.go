package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/ontime-kpi/internal/utils"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteXLSX stores every non-empty output as its own sheet of one workbook,
// named after the output file.
func WriteXLSX(path string, outputs []Output) error {
	f := excelize.NewFile()
	defer f.Close()

	written := 0
	for _, o := range outputs {
		if o.Summary.Empty() {
			continue
		}
		name := sheetName(o.File)
		if written == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, o); err != nil {
			return err
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("no summaries to write")
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, o Output) error {
	header := Header(o.Summary)
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write header %s: %w", sheet, err)
	}
	for i, r := range o.Summary.Rows {
		vals := []interface{}{r.Label, r.Count, r.Rate}
		if len(header) > 3 {
			vals = append(vals, r.Gap, r.Impact, r.LowConfidence)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write row %s: %w", sheet, err)
		}
	}
	return nil
}

func sheetName(file string) string {
	name := strings.TrimSuffix(file, filepath.Ext(file))
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
