package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/ontime-kpi/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ontime configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, key := range cfgpkg.Keys {
			v, _ := configValue(c, key)
			fmt.Fprintf(out, "%s: %s\n", key, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func stringFields(c *cfgpkg.Global) map[string]*string {
	return map[string]*string{
		"base_dir":               &c.BaseDir,
		"data_dir":               &c.DataDir,
		"features_file":          &c.FeaturesFile,
		"labels_file":            &c.LabelsFile,
		"output_dir":             &c.OutputDir,
		"sheet":                  &c.Sheet,
		"id_column":              &c.IDColumn,
		"outcome_column":         &c.OutcomeColumn,
		"mode_column":            &c.ModeColumn,
		"warehouse_column":       &c.WarehouseColumn,
		"importance_column":      &c.ImportanceColumn,
		"gender_column":          &c.GenderColumn,
		"weight_column":          &c.WeightColumn,
		"discount_column":        &c.DiscountColumn,
		"rating_column":          &c.RatingColumn,
		"prior_purchases_column": &c.PriorPurchasesColumn,
	}
}

func intFields(c *cfgpkg.Global) map[string]*int {
	return map[string]*int{
		"low_confidence_threshold": &c.LowConfidenceThreshold,
		"preview_rows":             &c.PreviewRows,
		"missing_top":              &c.MissingTop,
		"duplicate_sample":         &c.DuplicateSample,
	}
}

func configValue(c *cfgpkg.Global, key string) (string, bool) {
	if p, ok := stringFields(c)[key]; ok {
		return *p, true
	}
	if p, ok := intFields(c)[key]; ok {
		return strconv.Itoa(*p), true
	}
	switch key {
	case "missing_threshold":
		return strconv.FormatFloat(c.MissingThreshold, 'f', -1, 64), true
	case "xlsx_report":
		return strconv.FormatBool(c.XLSXReport), true
	}
	return "", false
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	if p, ok := stringFields(c)[key]; ok {
		*p = val
		return nil
	}
	if p, ok := intFields(c)[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*p = i
		return nil
	}
	switch key {
	case "missing_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid float for missing_threshold: %v (use 0..1)", val)
		}
		c.MissingThreshold = f
	case "xlsx_report":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for xlsx_report: %w", err)
		}
		c.XLSXReport = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
