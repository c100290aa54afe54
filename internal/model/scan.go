package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// FactorScore is the contribution of a single scoring criterion.
type FactorScore struct {
	Name       string  `json:"name"`
	Points     float64 `json:"points"`
	Max        float64 `json:"max"`
	Commentary string  `json:"commentary"`
}

// Score is points earned out of points possible for one scoring dimension.
type Score struct {
	Points  float64       `json:"points"`
	Max     float64       `json:"max"`
	Factors []FactorScore `json:"factors,omitempty"`
}

// Pct returns Points/Max, or 0 when Max is not positive.
func (s Score) Pct() float64 {
	if s.Max <= 0 {
		return 0
	}
	return s.Points / s.Max
}

// Recommendation is the categorical outcome of a scan.
type Recommendation string

const (
	Buy  Recommendation = "Buy"
	Hold Recommendation = "Hold"
	Sell Recommendation = "Sell"
)

// Confidence is a display label derived from a Recommendation.
type Confidence string

const (
	Strong  Confidence = "Strong"
	Neutral Confidence = "Neutral"
	Weak    Confidence = "Weak"
)

// Confidence maps the label to its confidence wording.
func (r Recommendation) Confidence() Confidence {
	switch r {
	case Buy:
		return Strong
	case Hold:
		return Neutral
	default:
		return Weak
	}
}

// ParseRecommendation accepts a label in any case.
func ParseRecommendation(s string) (Recommendation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "hold":
		return Hold, nil
	case "sell":
		return Sell, nil
	}
	return "", fmt.Errorf("unknown recommendation %q", s)
}

// Diagnostics are the raw inputs that produced a result.
type Diagnostics struct {
	PE                  null.Float `json:"pe"`
	PB                  null.Float `json:"pb"`
	DebtToEquity        null.Float `json:"debt_to_equity"`
	Profitability       null.Float `json:"profitability"`
	ProfitabilityMetric string     `json:"profitability_metric,omitempty"` // "roe" or "roa"
	RevenueGrowth       null.Float `json:"revenue_growth"`
	RSI                 float64    `json:"rsi"`
	MACD                float64    `json:"macd"`
	MACDSignal          float64    `json:"macd_signal"`
	MACDHist            float64    `json:"macd_hist"`
	SMAShort            float64    `json:"sma_short"`
	SMALong             float64    `json:"sma_long"`
	Position52w         float64    `json:"position_52w"`
	Bars                int        `json:"bars"`
}

// ScanResult is the flat per-symbol record handed to renderers.
type ScanResult struct {
	Symbol         string         `json:"symbol"`
	Price          float64        `json:"price"`
	Fund           Score          `json:"fund"`
	Tech           Score          `json:"tech"`
	FinalScore     float64        `json:"final_score"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     Confidence     `json:"confidence"`
	Diagnostics    Diagnostics    `json:"diagnostics"`
	EvaluatedAt    time.Time      `json:"evaluated_at"`
}

// SkippedSymbol records a symbol that could not be evaluated.
type SkippedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// ScanReport is the outcome of one scan over a universe.
type ScanReport struct {
	Results    []ScanResult    `json:"results"`
	Skipped    []SkippedSymbol `json:"skipped"`
	Universe   int             `json:"universe"`
	Source     string          `json:"source"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Count returns how many results carry the given label.
func (r *ScanReport) Count(label Recommendation) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if res.Recommendation == label {
			n++
		}
	}
	return n
}

// Find returns the result for a symbol.
func (r *ScanReport) Find(symbol string) (ScanResult, bool) {
	if r == nil {
		return ScanResult{}, false
	}
	for _, res := range r.Results {
		if strings.EqualFold(res.Symbol, symbol) {
			return res, true
		}
	}
	return ScanResult{}, false
}
