package table

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DataFrame converts the table into a gota DataFrame with string columns.
// Missing cells become NaN elements.
func (t *Table) DataFrame() dataframe.DataFrame {
	cols := make([]series.Series, len(t.cols))
	for j, name := range t.cols {
		vals := make([]string, len(t.rows))
		for i, r := range t.rows {
			if r[j] == "" {
				vals[i] = "NaN"
				continue
			}
			vals[i] = r[j]
		}
		cols[j] = series.New(vals, series.String, name)
	}
	return dataframe.New(cols...)
}

// Preview renders the first n rows for console output.
func (t *Table) Preview(n int) string {
	h := t.Head(n)
	if h.Width() == 0 {
		return "[0x0] (empty table)\n"
	}
	if h.Len() == 0 {
		return fmt.Sprintf("[0x%d] columns: %v\n", h.Width(), h.cols)
	}
	df := h.DataFrame()
	if df.Err != nil {
		return fmt.Sprintf("(preview unavailable: %v)\n", df.Err)
	}
	return RenderFrame(df)
}

// RenderFrame prints every row of df as an aligned text table. Unlike
// DataFrame.String it does not stop at ten rows.
func RenderFrame(df dataframe.DataFrame) string {
	recs := df.Records()
	var b strings.Builder
	fmt.Fprintf(&b, "[%dx%d] DataFrame\n\n", df.Nrow(), df.Ncol())
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(recs[0], "\t"))
	for i, r := range recs[1:] {
		fmt.Fprintf(tw, "%d:\t%s\t\n", i, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
	return b.String()
}
