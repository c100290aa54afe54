package calculator

// NeutralRSI is reported when there is not enough movement to measure.
const NeutralRSI = 50.0

// RSISeries computes Wilder's RSI for every bar. Gains and losses are smoothed
// with alpha = 1/window starting from the first delta; the first bar has no
// delta and reads neutral.
func RSISeries(prices []float64, window int) []float64 {
	if window <= 0 {
		return nil
	}
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	out[0] = NeutralRSI

	alpha := 1.0 / float64(window)
	var avgGain, avgLoss float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return NeutralRSI
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// CalculateRSI returns the latest RSI. Fewer than two prices reads neutral.
func CalculateRSI(prices []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}
	if len(prices) < 2 {
		return NeutralRSI, nil
	}
	s := RSISeries(prices, window)
	return s[len(s)-1], nil
}
