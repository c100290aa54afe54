package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"MarketScreener/internal/model"
)

// WriteTable renders results as an aligned text table.
func WriteTable(w io.Writer, results []model.ScanResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tFUND\tTECH\tFINAL\tLABEL\tRSI\tMACD HIST\tP/E\tD/E\t")
	for _, r := range results {
		d := r.Diagnostics
		fmt.Fprintf(tw, "%s\t%.2f\t%.1f/%.0f\t%.1f/%.0f\t%.3f\t%s (%s)\t%.1f\t%+.3f\t%s\t%s\t\n",
			r.Symbol, r.Price,
			r.Fund.Points, r.Fund.Max, r.Tech.Points, r.Tech.Max,
			r.FinalScore, r.Recommendation, r.Confidence,
			d.RSI, d.MACDHist, dash(opt(d.PE)), dash(opt(d.DebtToEquity)))
	}
	return tw.Flush()
}

// WriteSkipped lists symbols that could not be evaluated.
func WriteSkipped(w io.Writer, skipped []model.SkippedSymbol) error {
	if len(skipped) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nskipped %d symbol(s):\n", len(skipped)); err != nil {
		return err
	}
	for _, s := range skipped {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", s.Symbol, s.Reason); err != nil {
			return err
		}
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
