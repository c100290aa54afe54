package calculator

// MACD is the latest MACD reading.
type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACDSeries returns the MACD line, its signal line and the histogram for every bar.
func MACDSeries(prices []float64, fast, slow, signal int) (line, sig, hist []float64) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, nil
	}
	emaFast := EMASeries(prices, fast)
	emaSlow := EMASeries(prices, slow)
	line = make([]float64, len(prices))
	for i := range prices {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMASeries(line, signal)
	hist = make([]float64, len(prices))
	for i := range line {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// CalculateMACD returns the latest MACD line, signal and histogram.
func CalculateMACD(prices []float64, fast, slow, signal int) (MACD, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACD{}, ErrInvalidWindow
	}
	if len(prices) == 0 {
		return MACD{}, ErrEmptySeries
	}
	line, sig, hist := MACDSeries(prices, fast, slow, signal)
	n := len(prices) - 1
	return MACD{Line: line[n], Signal: sig[n], Histogram: hist[n]}, nil
}
