package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/ontime-kpi/internal/pipeline"
	"github.com/KaramelBytes/ontime-kpi/internal/utils"
	"github.com/spf13/cobra"
)

var (
	repBaseDir       string
	repFeatures      string
	repLabels        string
	repOutputDir     string
	repSheet         string
	repMissingThresh float64
	repLowConfidence int
	repXLSX          bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Merge, clean and aggregate the shipment data into KPI files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func runReport(cmd *cobra.Command) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	conf := *c
	f := cmd.Flags()
	if f.Changed("base-dir") {
		conf.BaseDir = repBaseDir
	}
	if f.Changed("sheet") {
		conf.Sheet = repSheet
	}
	if f.Changed("missing-threshold") {
		if repMissingThresh < 0 || repMissingThresh > 1 {
			return fmt.Errorf("--missing-threshold must be within [0,1], got %v", repMissingThresh)
		}
		conf.MissingThreshold = repMissingThresh
	}
	if f.Changed("low-confidence") {
		if repLowConfidence < 0 {
			return fmt.Errorf("--low-confidence must be >= 0, got %d", repLowConfidence)
		}
		conf.LowConfidenceThreshold = repLowConfidence
	}
	if f.Changed("xlsx") {
		conf.XLSXReport = repXLSX
	}

	base, err := resolveBaseDir(conf.BaseDir, conf.DataDir)
	if err != nil {
		return err
	}
	opt := pipeline.FromConfig(&conf, base)
	// Path flags are taken relative to the working directory.
	if f.Changed("features") {
		opt.FeaturesPath = repFeatures
	}
	if f.Changed("labels") {
		opt.LabelsPath = repLabels
	}
	if f.Changed("output-dir") {
		opt.OutputDir = repOutputDir
	}

	out := cmd.OutOrStdout()
	res, err := pipeline.Run(opt, out, newLogger())
	if err != nil {
		return err
	}
	if len(res.Written) == 0 {
		fmt.Fprintln(out, "⚠ No summaries had data; nothing written besides the run manifest")
	}
	fmt.Fprintf(out, "✓ Wrote run manifest to %s\n", res.ManifestAt)
	return nil
}

// resolveBaseDir picks the explicit base dir, else the nearest ancestor of
// the working directory holding the data dir, else the working directory.
func resolveBaseDir(explicit, dataDir string) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("base dir: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("base dir %s is not a directory", explicit)
		}
		return filepath.Abs(explicit)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working dir: %w", err)
	}
	if filepath.IsAbs(dataDir) {
		return wd, nil
	}
	base, err := utils.FindBaseDir(wd, dataDir)
	if errors.Is(err, utils.ErrBaseDirNotFound) {
		return wd, nil
	}
	return base, err
}

func init() {
	rootCmd.AddCommand(reportCmd)
	for _, c := range []*cobra.Command{rootCmd, reportCmd} {
		fl := c.Flags()
		fl.StringVar(&repBaseDir, "base-dir", "", "project root holding data/ and outputs/ (default: nearest ancestor with data/)")
		fl.StringVar(&repFeatures, "features", "", "features file path (overrides data_dir/features_file)")
		fl.StringVar(&repLabels, "labels", "", "labels file path (overrides data_dir/labels_file)")
		fl.StringVarP(&repOutputDir, "output-dir", "o", "", "directory for summary files (overrides output_dir)")
		fl.StringVar(&repSheet, "sheet", "", "XLSX inputs: sheet name to read")
		fl.Float64Var(&repMissingThresh, "missing-threshold", 0.6, "drop columns whose missing fraction exceeds this")
		fl.IntVar(&repLowConfidence, "low-confidence", 50, "flag groups with fewer orders than this")
		fl.BoolVar(&repXLSX, "xlsx", false, "also write kpi_report.xlsx")
	}
}
