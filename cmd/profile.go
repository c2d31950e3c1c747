package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/ontime-kpi/internal/loader"
	"github.com/KaramelBytes/ontime-kpi/internal/utils"
	"github.com/spf13/cobra"
)

var (
	profOutputPath string
	profSheet      string
	profDelimiter  string
)

var profileCmd = &cobra.Command{
	Use:   "profile <files...>",
	Short: "Print a column profile of CSV/TSV/XLSX inputs (globs allowed)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := loader.Options{Sheet: profSheet}
		switch profDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", profDelimiter)
		}
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		var parts []string
		for _, path := range files {
			t, err := loader.Load(path, opt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			parts = append(parts, t.Profile().Markdown())
		}
		md := strings.Join(parts, "\n")
		if profOutputPath != "" {
			if err := utils.SafeWriteFile(profOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", profOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().StringVar(&profSheet, "sheet", "", "XLSX: sheet name to profile")
	profileCmd.Flags().StringVar(&profDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
}

// expandInputs resolves globs, keeps literal paths that exist, and drops
// repeats. Missing literal paths are kept so loading reports them.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil && strings.ContainsAny(arg, "*?[") {
				continue
			}
			matches = []string{arg}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	return files, nil
}
