package calculator

import (
	"fmt"

	"MarketScreener/internal/model"
)

// Params are the indicator windows used by Compute.
type Params struct {
	SMAShort   int `yaml:"sma_short"`
	SMALong    int `yaml:"sma_long"`
	RSIWindow  int `yaml:"rsi_window"`
	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`
}

// DefaultParams returns SMA 50/200, RSI 14 and MACD 12/26/9.
func DefaultParams() Params {
	return Params{
		SMAShort:   50,
		SMALong:    200,
		RSIWindow:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

// Validate checks that every window is positive and the MACD fast span is shorter than the slow one.
func (p Params) Validate() error {
	for name, v := range map[string]int{
		"sma_short": p.SMAShort, "sma_long": p.SMALong, "rsi_window": p.RSIWindow,
		"macd_fast": p.MACDFast, "macd_slow": p.MACDSlow, "macd_signal": p.MACDSignal,
	} {
		if v <= 0 {
			return fmt.Errorf("%s: %w", name, ErrInvalidWindow)
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be less than macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}
	return nil
}

// Compute derives the IndicatorSet for a series. Only an empty series or
// invalid params are errors; short history degrades to partial-window values.
func Compute(series *model.PriceSeries, p Params) (model.IndicatorSet, error) {
	if series.Len() == 0 {
		return model.IndicatorSet{}, ErrEmptySeries
	}
	if err := p.Validate(); err != nil {
		return model.IndicatorSet{}, err
	}

	closes := series.Closes()
	set := model.IndicatorSet{
		Close: closes[len(closes)-1],
		Bars:  len(closes),
	}

	var err error
	if set.SMAShort, err = CalculateSMA(closes, p.SMAShort); err != nil {
		return model.IndicatorSet{}, fmt.Errorf("sma short: %w", err)
	}
	if set.SMALong, err = CalculateSMA(closes, p.SMALong); err != nil {
		return model.IndicatorSet{}, fmt.Errorf("sma long: %w", err)
	}
	if set.RSI, err = CalculateRSI(closes, p.RSIWindow); err != nil {
		return model.IndicatorSet{}, fmt.Errorf("rsi: %w", err)
	}
	macd, err := CalculateMACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err != nil {
		return model.IndicatorSet{}, fmt.Errorf("macd: %w", err)
	}
	set.MACD, set.MACDSignal, set.MACDHist = macd.Line, macd.Signal, macd.Histogram

	set.High52w, set.Low52w, err = Calculate52WeekRange(series.Bars)
	if err != nil {
		return model.IndicatorSet{}, fmt.Errorf("52-week range: %w", err)
	}
	if set.Position52w, err = Calculate52WeekPosition(set.Close, set.High52w, set.Low52w); err != nil {
		set.Position52w = 0.5
	}
	return set, nil
}
