package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/ontime-kpi/internal/table"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Read loads a delimited file with a header row. Type detection is off so
// every cell reaches the table as text; NA tokens come back as NaN and are
// normalized to missing by table.New. A leading UTF-8 BOM is dropped, and a
// file holding only a header yields an empty table with those columns.
func (csvReader) Read(path string, opt Options) (*table.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	name := filepath.Base(path)

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithDelimiter(delim),
		dataframe.NaNValues(table.NATokens),
	)
	if df.Err != nil {
		if header, ok := headerOnly(raw, delim); ok {
			return table.New(name, header, nil), nil
		}
		return nil, fmt.Errorf("read csv %s: %w", name, df.Err)
	}
	recs := df.Records()
	if len(recs) == 0 {
		return table.New(name, nil, nil), nil
	}
	return table.New(name, recs[0], recs[1:]), nil
}

// headerOnly reports the header of a file that has one and no data rows.
func headerOnly(raw []byte, delim rune) ([]string, bool) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = delim
	recs, err := r.ReadAll()
	if err != nil || len(recs) != 1 {
		return nil, false
	}
	return recs[0], true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
