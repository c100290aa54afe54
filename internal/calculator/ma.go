package calculator

import (
	"errors"

	"MarketScreener/internal/model"
)

var (
	// ErrEmptySeries means there is no price data at all to evaluate.
	ErrEmptySeries = errors.New("empty price series")
	// ErrInvalidWindow means a window or span was not positive.
	ErrInvalidWindow = errors.New("window must be positive")
)

// SMASeries computes a rolling simple moving average. Early elements average
// whatever bars are available, so the result is never undefined.
func SMASeries(prices []float64, window int) []float64 {
	if window <= 0 {
		return nil
	}
	out := make([]float64, len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// CalculateSMA returns the latest simple moving average over the trailing window.
func CalculateSMA(prices []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}
	if len(prices) == 0 {
		return 0, ErrEmptySeries
	}
	start := len(prices) - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, p := range prices[start:] {
		sum += p
	}
	return sum / float64(len(prices)-start), nil
}

// EMASeries computes the exponential moving average with alpha = 2/(span+1),
// seeded with the first price.
func EMASeries(prices []float64, span int) []float64 {
	if span <= 0 {
		return nil
	}
	return ewm(prices, 2.0/float64(span+1))
}

// CalculateEMA returns the latest EMA value.
func CalculateEMA(prices []float64, span int) (float64, error) {
	if span <= 0 {
		return 0, ErrInvalidWindow
	}
	if len(prices) == 0 {
		return 0, ErrEmptySeries
	}
	s := EMASeries(prices, span)
	return s[len(s)-1], nil
}

func ewm(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}

// Closes extracts close prices from bars.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
