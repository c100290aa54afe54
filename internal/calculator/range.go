package calculator

import (
	"errors"
	"math"

	"MarketScreener/internal/model"
)

// TradingDaysPerYear is the bar count treated as 52 weeks of daily data.
const TradingDaysPerYear = 252

// Calculate52WeekRange scans the most recent 252 bars and returns the high and low.
// Bars without a high/low fall back to their close.
func Calculate52WeekRange(dailyBars []model.OHLCV) (high, low float64, err error) {
	if len(dailyBars) == 0 {
		return 0, 0, ErrEmptySeries
	}
	start := len(dailyBars) - TradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range dailyBars[start:] {
		h, l := b.High, b.Low
		if h <= 0 {
			h = b.Close
		}
		if l <= 0 {
			l = b.Close
		}
		high = math.Max(high, h)
		low = math.Min(low, l)
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Max(0, math.Min(1, pos)), nil
}
