package strategy

import (
	"fmt"
	"time"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/model"
)

// Engine evaluates one symbol at a time. It holds no per-symbol state and is
// safe to share between goroutines.
type Engine struct {
	Policy Policy
	Params calculator.Params
	Now    func() time.Time
}

// NewEngine creates an Engine stamping results with the wall clock.
func NewEngine(policy Policy, params calculator.Params) *Engine {
	return &Engine{Policy: policy, Params: params, Now: time.Now}
}

// Evaluate computes indicators, scores both dimensions and decides the label.
// The only error is an empty series (calculator.ErrEmptySeries), meaning the
// symbol cannot be evaluated; missing fundamentals just lower the score.
func (e *Engine) Evaluate(symbol string, series *model.PriceSeries, f *model.Fundamentals) (*model.ScanResult, error) {
	ind, err := calculator.Compute(series, e.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	fund, fundDiag := ScoreFundamentals(f, e.Policy.Fundamentals)
	tech, techDiag := ScoreTechnical(ind, e.Policy.Technical)
	final, rec := e.Policy.Decide(fund, tech)

	diag := techDiag
	diag.PE = fundDiag.PE
	diag.PB = fundDiag.PB
	diag.DebtToEquity = fundDiag.DebtToEquity
	diag.Profitability = fundDiag.Profitability
	diag.ProfitabilityMetric = fundDiag.ProfitabilityMetric
	diag.RevenueGrowth = fundDiag.RevenueGrowth

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	return &model.ScanResult{
		Symbol:         symbol,
		Price:          ind.Close,
		Fund:           fund,
		Tech:           tech,
		FinalScore:     final,
		Recommendation: rec,
		Confidence:     rec.Confidence(),
		Diagnostics:    diag,
		EvaluatedAt:    now(),
	}, nil
}
