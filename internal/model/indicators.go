package model

// IndicatorSet holds the latest indicator values computed from one PriceSeries.
type IndicatorSet struct {
	Close       float64 `json:"close"`
	SMAShort    float64 `json:"sma_short"` // SMA(50) by default
	SMALong     float64 `json:"sma_long"`  // SMA(200) by default
	RSI         float64 `json:"rsi"`
	MACD        float64 `json:"macd"`
	MACDSignal  float64 `json:"macd_signal"`
	MACDHist    float64 `json:"macd_hist"`
	High52w     float64 `json:"high_52w"`
	Low52w      float64 `json:"low_52w"`
	Position52w float64 `json:"position_52w"` // 0.0 ~ 1.0
	Bars        int     `json:"bars"`
}
