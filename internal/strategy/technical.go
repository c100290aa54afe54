package strategy

import (
	"fmt"

	"MarketScreener/internal/model"
)

// ScoreTechnical scores trend, momentum and MACD from an IndicatorSet.
func ScoreTechnical(ind model.IndicatorSet, r TechnicalRules) (model.Score, model.Diagnostics) {
	diag := model.Diagnostics{
		RSI:         ind.RSI,
		MACD:        ind.MACD,
		MACDSignal:  ind.MACDSignal,
		MACDHist:    ind.MACDHist,
		SMAShort:    ind.SMAShort,
		SMALong:     ind.SMALong,
		Position52w: ind.Position52w,
		Bars:        ind.Bars,
	}

	factors := []model.FactorScore{
		scoreTrend(ind, r),
		scoreGoldenCross(ind, r),
		scoreRSI(ind.RSI, r),
		scoreMACD(ind.MACDHist, r),
	}
	return sumFactors(factors, r.Max), diag
}

// scoreTrend awards the strongest of close > long SMA or close > short SMA.
func scoreTrend(ind model.IndicatorSet, r TechnicalRules) model.FactorScore {
	fs := model.FactorScore{Name: "Trend", Max: r.AboveLongPoints}
	switch {
	case ind.Close > ind.SMALong:
		fs.Points = r.AboveLongPoints
		fs.Commentary = fmt.Sprintf("close %.2f above long SMA %.2f", ind.Close, ind.SMALong)
	case ind.Close > ind.SMAShort:
		fs.Points = r.AboveShortPoints
		fs.Commentary = fmt.Sprintf("close %.2f above short SMA %.2f", ind.Close, ind.SMAShort)
	default:
		fs.Commentary = fmt.Sprintf("close %.2f below averages", ind.Close)
	}
	return fs
}

func scoreGoldenCross(ind model.IndicatorSet, r TechnicalRules) model.FactorScore {
	fs := model.FactorScore{Name: "Golden cross", Max: r.GoldenCrossPoints, Commentary: "no"}
	if ind.SMAShort > ind.SMALong {
		fs.Points = r.GoldenCrossPoints
		fs.Commentary = "yes"
	}
	return fs
}

func scoreRSI(rsi float64, r TechnicalRules) model.FactorScore {
	fs := model.FactorScore{Name: "RSI", Max: r.RSINeutralPoints}
	switch {
	case rsi > r.RSIOversold && rsi < r.RSIOverbought:
		fs.Points = r.RSINeutralPoints
		fs.Commentary = fmt.Sprintf("%.0f neutral", rsi)
	case rsi < r.RSIOversold:
		fs.Points = r.RSIOversoldPoints
		fs.Commentary = fmt.Sprintf("%.0f oversold", rsi)
	case rsi >= r.RSIOverbought:
		fs.Points = -r.RSIOverboughtPenalty
		fs.Commentary = fmt.Sprintf("%.0f overbought", rsi)
	default:
		fs.Commentary = fmt.Sprintf("%.0f at band edge", rsi)
	}
	return fs
}

func scoreMACD(hist float64, r TechnicalRules) model.FactorScore {
	fs := model.FactorScore{Name: "MACD", Max: r.MACDBullishPoints, Commentary: fmt.Sprintf("hist %+.3f", hist)}
	if hist > 0 {
		fs.Points = r.MACDBullishPoints
	}
	return fs
}
