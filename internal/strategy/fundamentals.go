package strategy

import (
	"fmt"

	"MarketScreener/internal/model"

	"github.com/guregu/null/v6"
)

// ScoreFundamentals scores a snapshot. Absent metrics contribute nothing.
func ScoreFundamentals(f *model.Fundamentals, r FundamentalsRules) (model.Score, model.Diagnostics) {
	if f == nil {
		f = &model.Fundamentals{}
	}
	profit, metric := f.Profitability()
	growth := f.RevenueGrowth()

	diag := model.Diagnostics{
		PE:                  f.TrailingPE,
		PB:                  f.PriceToBook,
		DebtToEquity:        f.DebtToEquity,
		Profitability:       profit,
		ProfitabilityMetric: metric,
		RevenueGrowth:       growth,
	}

	factors := []model.FactorScore{
		scoreValuation(f.TrailingPE, r),
		scoreLeverage(f.DebtToEquity, r),
		scoreProfitability(profit, metric, r),
		scoreRevenueTrend(growth, r),
	}
	return sumFactors(factors, r.Max), diag
}

func scoreValuation(pe null.Float, r FundamentalsRules) model.FactorScore {
	fs := model.FactorScore{Name: "P/E", Max: r.PECheapPoints}
	switch {
	case !pe.Valid:
		fs.Commentary = "n/a"
	case pe.Float64 <= 0:
		fs.Commentary = fmt.Sprintf("%.1f (no earnings)", pe.Float64)
	case pe.Float64 < r.PECheap:
		fs.Points = r.PECheapPoints
		fs.Commentary = fmt.Sprintf("%.1f cheap", pe.Float64)
	case pe.Float64 < r.PEFair:
		fs.Points = r.PEFairPoints
		fs.Commentary = fmt.Sprintf("%.1f fair", pe.Float64)
	default:
		fs.Commentary = fmt.Sprintf("%.1f rich", pe.Float64)
	}
	return fs
}

func scoreLeverage(de null.Float, r FundamentalsRules) model.FactorScore {
	fs := model.FactorScore{Name: "Debt/Equity", Max: r.DebtLowPoints}
	switch {
	case !de.Valid:
		fs.Commentary = "n/a"
	case de.Float64 < r.DebtLow:
		fs.Points = r.DebtLowPoints
		fs.Commentary = fmt.Sprintf("%.1f low", de.Float64)
	case de.Float64 < r.DebtModerate:
		fs.Points = r.DebtModeratePoints
		fs.Commentary = fmt.Sprintf("%.1f moderate", de.Float64)
	default:
		fs.Commentary = fmt.Sprintf("%.1f high", de.Float64)
	}
	return fs
}

func scoreProfitability(v null.Float, metric string, r FundamentalsRules) model.FactorScore {
	fs := model.FactorScore{Name: "Profitability", Max: r.ProfitStrongPoints}
	switch {
	case !v.Valid:
		fs.Commentary = "n/a"
	case v.Float64 >= r.ProfitStrong:
		fs.Points = r.ProfitStrongPoints
		fs.Commentary = fmt.Sprintf("%s %.1f%% strong", metric, v.Float64*100)
	case v.Float64 > r.ProfitFair:
		fs.Points = r.ProfitFairPoints
		fs.Commentary = fmt.Sprintf("%s %.1f%% fair", metric, v.Float64*100)
	default:
		fs.Commentary = fmt.Sprintf("%s %.1f%% weak", metric, v.Float64*100)
	}
	return fs
}

func scoreRevenueTrend(growth null.Float, r FundamentalsRules) model.FactorScore {
	fs := model.FactorScore{Name: "Revenue trend", Max: r.RevenueGrowthPoints}
	switch {
	case !growth.Valid:
		fs.Commentary = "n/a"
	case growth.Float64 > r.RevenueGrowthMin:
		fs.Points = r.RevenueGrowthPoints
		fs.Commentary = fmt.Sprintf("%+.1f%% growing", growth.Float64*100)
	default:
		fs.Commentary = fmt.Sprintf("%+.1f%% flat", growth.Float64*100)
	}
	return fs
}

func sumFactors(factors []model.FactorScore, limit float64) model.Score {
	total := 0.0
	for _, f := range factors {
		total += f.Points
	}
	return model.Score{Points: clamp(total, 0, limit), Max: limit, Factors: factors}
}
