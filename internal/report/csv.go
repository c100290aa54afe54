package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"MarketScreener/internal/model"

	"github.com/guregu/null/v6"
)

// Header is the CSV column order.
var Header = []string{
	"symbol", "price", "fund_score", "fund_max", "tech_score", "tech_max", "final_score",
	"recommendation", "confidence",
	"pe", "pb", "debt_to_equity", "profitability", "profitability_metric", "revenue_growth",
	"rsi", "macd", "macd_signal", "macd_hist", "sma_short", "sma_long", "position_52w", "bars",
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

// opt renders absent values as an empty cell.
func opt(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return num(v.Float64)
}

// Row flattens a result in Header order.
func Row(r model.ScanResult) []string {
	d := r.Diagnostics
	return []string{
		r.Symbol, num(r.Price),
		num(r.Fund.Points), num(r.Fund.Max), num(r.Tech.Points), num(r.Tech.Max), num(r.FinalScore),
		string(r.Recommendation), string(r.Confidence),
		opt(d.PE), opt(d.PB), opt(d.DebtToEquity), opt(d.Profitability), d.ProfitabilityMetric, opt(d.RevenueGrowth),
		num(d.RSI), num(d.MACD), num(d.MACDSignal), num(d.MACDHist), num(d.SMAShort), num(d.SMALong),
		num(d.Position52w), strconv.Itoa(d.Bars),
	}
}

// WriteCSV writes a header row followed by one row per result.
func WriteCSV(w io.Writer, results []model.ScanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
