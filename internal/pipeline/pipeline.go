// Package pipeline runs the on-time KPI report end to end: load, merge,
// clean, bucket, aggregate and write.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/ontime-kpi/internal/bucket"
	"github.com/KaramelBytes/ontime-kpi/internal/clean"
	"github.com/KaramelBytes/ontime-kpi/internal/config"
	"github.com/KaramelBytes/ontime-kpi/internal/kpi"
	"github.com/KaramelBytes/ontime-kpi/internal/loader"
	"github.com/KaramelBytes/ontime-kpi/internal/report"
	"github.com/KaramelBytes/ontime-kpi/internal/runlog"
	"github.com/KaramelBytes/ontime-kpi/internal/table"
)

// Derived bucket columns.
const (
	DiscountBin = "discount_bin"
	WeightBin   = "weight_bin_q"
)

// Output file names.
const (
	WarehouseImpactFile = "warehouse_impact.csv"
	ModeImpactFile      = "mode_impact.csv"
	DiscountKPIFile     = "discount_kpi.csv"
	WeightKPIFile       = "weight_kpi.csv"
	XLSXReportFile      = "kpi_report.xlsx"
)

// Columns names the source columns the report reads.
type Columns struct {
	ID             string
	Outcome        string
	Mode           string
	Warehouse      string
	Importance     string
	Gender         string
	Weight         string
	Discount       string
	Rating         string
	PriorPurchases string
}

// Options configures one run.
type Options struct {
	FeaturesPath string
	LabelsPath   string
	OutputDir    string
	Sheet        string
	Columns      Columns

	MissingThreshold float64
	LowConfidence    int
	PreviewRows      int
	MissingTop       int
	DuplicateSample  int
	XLSXReport       bool
}

// FromConfig resolves paths against base and copies the remaining settings.
func FromConfig(c *config.Global, base string) Options {
	return Options{
		FeaturesPath: dataFile(c.DataDir, c.FeaturesFile, base),
		LabelsPath:   dataFile(c.DataDir, c.LabelsFile, base),
		OutputDir:    resolve(c.OutputDir, base),
		Sheet:        c.Sheet,
		Columns: Columns{
			ID:             c.IDColumn,
			Outcome:        c.OutcomeColumn,
			Mode:           c.ModeColumn,
			Warehouse:      c.WarehouseColumn,
			Importance:     c.ImportanceColumn,
			Gender:         c.GenderColumn,
			Weight:         c.WeightColumn,
			Discount:       c.DiscountColumn,
			Rating:         c.RatingColumn,
			PriorPurchases: c.PriorPurchasesColumn,
		},
		MissingThreshold: c.MissingThreshold,
		LowConfidence:    c.LowConfidenceThreshold,
		PreviewRows:      c.PreviewRows,
		MissingTop:       c.MissingTop,
		DuplicateSample:  c.DuplicateSample,
		XLSXReport:       c.XLSXReport,
	}
}

// dataFile places a relative input file under the data dir.
func dataFile(dataDir, file, base string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(resolve(dataDir, base), file)
}

func resolve(p, base string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Result carries what a run produced.
type Result struct {
	Merged       *table.Table
	Clean        *table.Table
	Overall      float64
	HasOutcome   bool
	Rates        []kpi.Summary
	Outputs      []report.Output
	Written      []string
	Manifest     *runlog.Manifest
	ManifestAt   string
	WeightMethod bucket.Method
}

// Run executes the report, writing human-readable diagnostics to w. Load and
// write failures abort the run; files already written are left in place.
func Run(opt Options, w io.Writer, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cols := opt.Columns
	m := runlog.New()
	res := &Result{Manifest: m}
	logger.Debug("run started", slog.String("run_id", m.ID))

	features, labels, err := load(opt, m, logger)
	if err != nil {
		return nil, err
	}
	for _, src := range []*table.Table{features, labels} {
		warnDuplicateKeys(w, src, cols.ID)
	}

	merged, err := table.InnerJoin(features, labels, cols.ID)
	if err != nil {
		return nil, fmt.Errorf("merge on %s: %w", cols.ID, err)
	}
	res.Merged = merged
	m.MergedRows = merged.Len()
	logger.Debug("merged", slog.Int("rows", merged.Len()), slog.Int("cols", merged.Width()))
	fmt.Fprintln(w, "Rows, columns:", merged.Shape())
	fmt.Fprintf(w, "First %d rows:\n", opt.PreviewRows)
	fmt.Fprintln(w, merged.Preview(opt.PreviewRows))

	df := cleanStage(opt, merged, w, m)
	df = df.CoerceNumeric(cols.Outcome, cols.Weight, cols.Rating, cols.PriorPurchases, cols.Discount)

	agg := kpi.Aggregator{Outcome: cols.Outcome, LowConfidence: opt.LowConfidence}
	res.Overall, res.HasOutcome = overview(df, agg, w, m)

	for _, dim := range []string{cols.Mode, cols.Warehouse, cols.Importance, cols.Gender} {
		if !df.Has(dim) {
			continue
		}
		s := agg.Rates(df, dim)
		res.Rates = append(res.Rates, s)
		report.Print(w, fmt.Sprintf("On-time rate by %s:", dim), s)
	}

	df, res.WeightMethod, err = bucketStage(df, cols, agg, w)
	if err != nil {
		return nil, err
	}
	if res.WeightMethod != "" {
		m.WeightMethod = string(res.WeightMethod)
	}
	logger.Debug("bucketed", slog.String("weight_method", string(res.WeightMethod)))

	warehouse := agg.Impact(df, cols.Warehouse)
	mode := agg.Impact(df, cols.Mode)
	if res.HasOutcome {
		fmt.Fprintf(w, "\nOverall on-time rate: %.3f\n", res.Overall)
	}
	report.Print(w, fmt.Sprintf("### %s impact (sorted by impact) ===", cols.Warehouse), warehouse)
	report.Print(w, fmt.Sprintf("### %s impact (sorted by impact) ===", cols.Mode), mode)

	res.Outputs = []report.Output{
		{File: WarehouseImpactFile, Summary: warehouse},
		{File: ModeImpactFile, Summary: mode},
		{File: DiscountKPIFile, Summary: agg.Bucket(df, DiscountBin, bucket.DiscountLabels)},
		{File: WeightKPIFile, Summary: agg.Bucket(df, WeightBin, bucket.WeightLabels)},
	}
	res.Clean = df
	m.CleanRows = df.Len()
	m.Columns = df.Columns()

	fmt.Fprintln(w)
	for _, o := range res.Outputs {
		if o.Summary.Empty() {
			logger.Debug("skipping empty summary", slog.String("file", o.File))
			continue
		}
		path, err := report.WriteCSV(opt.OutputDir, o.File, o.Summary)
		if err != nil {
			return res, err
		}
		res.Written = append(res.Written, path)
		m.AddOutput(o.File, len(o.Summary.Rows))
		fmt.Fprintf(w, "✓ Saved %s\n", o.File)
	}
	if opt.XLSXReport && len(res.Written) > 0 {
		path := filepath.Join(opt.OutputDir, XLSXReportFile)
		if err := report.WriteXLSX(path, res.Outputs); err != nil {
			return res, err
		}
		res.Written = append(res.Written, path)
		m.AddOutput(XLSXReportFile, len(m.Outputs))
		fmt.Fprintf(w, "✓ Saved %s\n", XLSXReportFile)
	}

	at, err := m.Save(opt.OutputDir)
	if err != nil {
		return res, fmt.Errorf("save run manifest: %w", err)
	}
	res.ManifestAt = at
	logger.Debug("run finished", slog.String("manifest", at), slog.Int("outputs", len(res.Written)))
	return res, nil
}

func load(opt Options, m *runlog.Manifest, logger *slog.Logger) (*table.Table, *table.Table, error) {
	lopt := loader.Options{Sheet: opt.Sheet}
	features, err := loader.Load(opt.FeaturesPath, lopt)
	if err != nil {
		return nil, nil, fmt.Errorf("load features: %w", err)
	}
	labels, err := loader.Load(opt.LabelsPath, lopt)
	if err != nil {
		return nil, nil, fmt.Errorf("load labels: %w", err)
	}
	if err := loader.Require(features, opt.Columns.ID); err != nil {
		return nil, nil, fmt.Errorf("features %s: %w", features.Name(), err)
	}
	if err := loader.Require(labels, opt.Columns.ID, opt.Columns.Outcome); err != nil {
		return nil, nil, fmt.Errorf("labels %s: %w", labels.Name(), err)
	}
	for _, t := range []struct {
		path string
		tb   *table.Table
	}{{opt.FeaturesPath, features}, {opt.LabelsPath, labels}} {
		m.AddInput(t.path, t.tb.Len(), t.tb.Width())
		logger.Debug("loaded", slog.String("path", t.path), slog.Int("rows", t.tb.Len()), slog.Int("cols", t.tb.Width()))
	}
	return features, labels, nil
}

func warnDuplicateKeys(w io.Writer, t *table.Table, key string) {
	st, err := t.Keys(key)
	if err != nil {
		return
	}
	if d := st.Duplicates(); d > 0 {
		fmt.Fprintf(w, "⚠ %s: %d rows repeat an existing %s; matching rows will multiply in the merge\n", t.Name(), d, key)
	}
	if st.Missing > 0 {
		fmt.Fprintf(w, "⚠ %s: %d rows have no %s and cannot be merged\n", t.Name(), st.Missing, key)
	}
}

func cleanStage(opt Options, merged *table.Table, w io.Writer, m *runlog.Manifest) *table.Table {
	df, removed := clean.DropDuplicateRows(merged)
	m.DuplicateRows = removed
	fmt.Fprintln(w, "Dropped exact duplicate rows:", removed)
	fmt.Fprintln(w, "New shape:", df.Shape())
	if removed == 0 {
		fmt.Fprintln(w, "no duplicate rows found")
	}

	dups := clean.FindDuplicateIDs(df, opt.Columns.ID, opt.DuplicateSample)
	m.DuplicateIDs = dups.Count
	switch {
	case !dups.Checked:
		fmt.Fprintf(w, "⚠ %s column not present, duplicate ID check skipped\n", opt.Columns.ID)
	case dups.Count > 0:
		fmt.Fprintln(w, "Rows with duplicated ID:", dups.Count)
		fmt.Fprintln(w, "\nSample duplicate ID rows:")
		fmt.Fprintln(w, dups.Sample.Preview(dups.Sample.Len()))
	default:
		fmt.Fprintln(w, "Rows with duplicated ID:", 0)
		fmt.Fprintln(w, "No duplicate IDs found.")
	}

	df, sparse := clean.DropSparseColumns(df, opt.MissingThreshold)
	m.DroppedColumns = append(m.DroppedColumns, sparse.Dropped...)
	fmt.Fprintln(w, "Top columns by missing fraction:")
	top := sparse.Fractions
	if opt.MissingTop > 0 && len(top) > opt.MissingTop {
		top = top[:opt.MissingTop]
	}
	width := 0
	for _, f := range top {
		width = max(width, len(f.Name))
	}
	for _, f := range top {
		fmt.Fprintf(w, "  %-*s  %.3f\n", width, f.Name, f.Fraction)
	}
	fmt.Fprintf(w, "\nColumns to drop (>%g%% missing): [%s]\n", opt.MissingThreshold*100, strings.Join(sparse.Dropped, ", "))
	fmt.Fprintln(w, "\nNew shape after dropping high-missing columns:", df.Shape())
	return df
}

func overview(df *table.Table, agg kpi.Aggregator, w io.Writer, m *runlog.Manifest) (float64, bool) {
	overall, _, err := agg.OverallRate(df)
	if err != nil {
		fmt.Fprintf(w, "⚠ No on-time rate available: %v\n", err)
		return 0, false
	}
	m.SetOverallRate(overall)
	fmt.Fprintln(w, "Overall on-time rate:", overall)
	counts, _ := agg.LabelCounts(df)
	fmt.Fprintln(w, "\nLabel counts (0 = late, 1 = on-time):")
	for _, c := range counts {
		v := c.Value
		if v == "" {
			v = "NaN"
		}
		fmt.Fprintf(w, "  %s  %d\n", v, c.N)
	}
	return overall, true
}

func bucketStage(df *table.Table, cols Columns, agg kpi.Aggregator, w io.Writer) (*table.Table, bucket.Method, error) {
	if df.Has(cols.Discount) {
		vals, valid, err := df.Floats(cols.Discount)
		if err != nil {
			return nil, "", err
		}
		if df, err = df.WithColumn(DiscountBin, bucket.Discount(vals, valid)); err != nil {
			return nil, "", err
		}
		report.Print(w, fmt.Sprintf("On-time rate by %s:", DiscountBin), agg.Rates(df, DiscountBin).SortedByRate(true))
	}

	var method bucket.Method
	if df.Has(cols.Weight) {
		vals, valid, err := df.Floats(cols.Weight)
		if err != nil {
			return nil, "", err
		}
		var labels []string
		labels, method = bucket.Weight(vals, valid)
		if df, err = df.WithColumn(WeightBin, labels); err != nil {
			return nil, "", err
		}
		counts, missing := bucket.Distribution(labels, bucket.WeightLabels)
		fmt.Fprintf(w, "\n%s value counts (%s):\n", WeightBin, method)
		for _, c := range counts {
			fmt.Fprintf(w, "  %s  %d\n", c.Label, c.N)
		}
		fmt.Fprintf(w, "  NaN  %d\n", missing)
	}
	return df, method, nil
}
