// Package report renders KPI summaries to the console and to flat files.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/ontime-kpi/internal/kpi"
	"github.com/KaramelBytes/ontime-kpi/internal/table"
	"github.com/KaramelBytes/ontime-kpi/internal/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Output pairs a summary with the file it is written to.
type Output struct {
	File    string
	Summary kpi.Summary
}

// Header is the CSV header of a summary.
func Header(s kpi.Summary) []string {
	h := []string{s.Dimension, "n_orders", "on_time_rate"}
	if s.Kind == kpi.KindImpact {
		h = append(h, "gap", "impact", "low_confidence")
	}
	return h
}

// Records returns the header followed by one record per summary row.
func Records(s kpi.Summary) [][]string {
	out := [][]string{Header(s)}
	for _, r := range s.Rows {
		rec := []string{r.Label, strconv.Itoa(r.Count), FormatFloat(r.Rate)}
		if s.Kind == kpi.KindImpact {
			rec = append(rec, FormatFloat(r.Gap), FormatFloat(r.Impact), FormatBool(r.LowConfidence))
		}
		out = append(out, rec)
	}
	return out
}

// FormatFloat writes the shortest round-trip decimal, keeping a fractional
// part on whole numbers (1 -> "1.0").
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatBool writes True/False.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// WriteCSV writes a non-empty summary into dir/file and returns the path.
func WriteCSV(dir, file string, s kpi.Summary) (string, error) {
	if s.Empty() {
		return "", fmt.Errorf("summary %s is empty", s.Dimension)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(Records(s)); err != nil {
		return "", fmt.Errorf("encode %s: %w", file, err)
	}
	path := filepath.Join(dir, file)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", file, err)
	}
	return path, nil
}

// Frame converts a summary into a gota DataFrame for display.
func Frame(s kpi.Summary) dataframe.DataFrame {
	n := len(s.Rows)
	labels := make([]string, n)
	counts := make([]int, n)
	rates := make([]float64, n)
	gaps := make([]float64, n)
	impacts := make([]float64, n)
	low := make([]bool, n)
	for i, r := range s.Rows {
		labels[i], counts[i], rates[i] = r.Label, r.Count, r.Rate
		gaps[i], impacts[i], low[i] = r.Gap, r.Impact, r.LowConfidence
	}
	cols := []series.Series{
		series.New(labels, series.String, s.Dimension),
		series.New(counts, series.Int, "n_orders"),
		series.New(rates, series.Float, "on_time_rate"),
	}
	if s.Kind == kpi.KindImpact {
		cols = append(cols,
			series.New(gaps, series.Float, "gap"),
			series.New(impacts, series.Float, "impact"),
			series.New(low, series.Bool, "low_confidence"),
		)
	}
	return dataframe.New(cols...)
}

// Print writes a titled summary table, or a one-line notice when there is
// nothing to show.
func Print(w io.Writer, title string, s kpi.Summary) {
	fmt.Fprintf(w, "\n%s\n", title)
	switch {
	case s.Absent:
		fmt.Fprintf(w, "⚠ %s not available, skipped\n", s.Dimension)
	case len(s.Rows) == 0:
		fmt.Fprintf(w, "⚠ %s has no rows with an outcome\n", s.Dimension)
	default:
		fmt.Fprintln(w, table.RenderFrame(Frame(s)))
	}
}
