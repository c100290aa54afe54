package notifier

import (
	"fmt"
	"html"
	"strings"

	"MarketScreener/internal/model"
)

// FormatScanReport summarizes a scan: label counts, top candidates and skipped symbols.
func FormatScanReport(r *model.ScanReport, top int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Equity scan</b> | %s\n", r.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Source: %s | Universe: %d | Evaluated: %d\n\n",
		html.EscapeString(r.Source), r.Universe, len(r.Results)))
	b.WriteString(fmt.Sprintf("🟢 Buy: %d   🟡 Hold: %d   🔴 Sell: %d\n",
		r.Count(model.Buy), r.Count(model.Hold), r.Count(model.Sell)))

	buys := make([]model.ScanResult, 0, top)
	for _, res := range r.Results {
		if res.Recommendation == model.Buy && len(buys) < top {
			buys = append(buys, res)
		}
	}
	if len(buys) > 0 {
		b.WriteString("\n<b>Top Buy candidates:</b>\n")
		for i, res := range buys {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, FormatResultLine(res)))
		}
	}

	if len(r.Skipped) > 0 {
		names := make([]string, len(r.Skipped))
		for i, s := range r.Skipped {
			names[i] = html.EscapeString(s.Symbol)
		}
		b.WriteString(fmt.Sprintf("\n⚠️ Skipped %d: %s\n", len(r.Skipped), strings.Join(names, ", ")))
	}
	return b.String()
}

// FormatResultLine renders one result on a single line.
func FormatResultLine(res model.ScanResult) string {
	return fmt.Sprintf("<code>%s</code> %.2f | score %.2f (F %.1f/%.0f, T %.1f/%.0f) | RSI %.0f",
		html.EscapeString(res.Symbol), res.Price, res.FinalScore,
		res.Fund.Points, res.Fund.Max, res.Tech.Points, res.Tech.Max, res.Diagnostics.RSI)
}

// FormatResult renders a detailed breakdown of one symbol.
func FormatResult(res model.ScanResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> → %s (%s)\n", html.EscapeString(res.Symbol), res.Recommendation, res.Confidence))
	b.WriteString(fmt.Sprintf("Price %.2f | final %.3f\n\n", res.Price, res.FinalScore))
	writeFactors(&b, "Fundamentals", res.Fund)
	writeFactors(&b, "Technicals", res.Tech)
	return b.String()
}

func writeFactors(b *strings.Builder, title string, s model.Score) {
	b.WriteString(fmt.Sprintf("<b>%s %.1f/%.0f</b>\n", title, s.Points, s.Max))
	for _, f := range s.Factors {
		b.WriteString(fmt.Sprintf("  %s: %+.1f (%s)\n", f.Name, f.Points, html.EscapeString(f.Commentary)))
	}
}
