package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"MarketScreener/internal/model"
	"MarketScreener/internal/report"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [symbols...]",
	Short: "Run one scan and print the ranked table",
	Long: `Scan the configured universe, or the symbols given as arguments,
and print results ranked by final score.

Example:
  screener scan
  screener scan RELIANCE.NS TCS.NS --sort rsi --order asc
  screener scan --label buy,hold --min-score 0.5 --csv out/scan.csv`,
	RunE: runScan,
}

var (
	scanCSV      string
	scanLabels   string
	scanMinScore float64
	scanQuery    string
	scanSort     string
	scanOrder    string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanCSV, "csv", "", "also write results to this CSV file")
	scanCmd.Flags().StringVar(&scanLabels, "label", "", "only show these labels (comma-separated: buy,hold,sell)")
	scanCmd.Flags().Float64Var(&scanMinScore, "min-score", 0, "only show results with final score >= this")
	scanCmd.Flags().StringVar(&scanQuery, "query", "", "only show symbols containing this text")
	scanCmd.Flags().StringVar(&scanSort, "sort", "", "sort key: symbol, price, fund, tech, final, rsi (default rank)")
	scanCmd.Flags().StringVar(&scanOrder, "order", "desc", "sort order: asc or desc")
}

func runScan(cmd *cobra.Command, args []string) error {
	labels, err := report.ParseLabels(scanLabels)
	if err != nil {
		return err
	}

	universe := cfg.Universe
	if len(args) > 0 {
		universe = args
	}

	a := newApp(cfg, log)
	defer a.Close()

	rep, err := a.scanner.Scan(cmd.Context(), universe)
	if err != nil {
		return err
	}

	results := report.Filter(rep.Results, report.Criteria{Labels: labels, MinScore: scanMinScore, Query: scanQuery})
	if scanSort != "" {
		if err := report.Sort(results, scanSort, !strings.EqualFold(scanOrder, "asc")); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s | %d symbols | Buy %d  Hold %d  Sell %d\n\n",
		rep.Source, rep.Universe, rep.Count(model.Buy), rep.Count(model.Hold), rep.Count(model.Sell))
	if err := report.WriteTable(out, results); err != nil {
		return err
	}
	if err := report.WriteSkipped(out, rep.Skipped); err != nil {
		return err
	}

	if scanCSV != "" {
		if err := writeCSVFile(scanCSV, results); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nwrote %d rows to %s\n", len(results), scanCSV)
	}
	return nil
}

func writeCSVFile(path string, results []model.ScanResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create csv dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteCSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
