package strategy

import (
	"testing"

	"MarketScreener/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sc(points float64) model.Score { return model.Score{Points: points, Max: 5} }

func TestDecide_Boundaries(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name      string
		fund      float64
		tech      float64
		wantFinal float64
		want      model.Recommendation
	}{
		{"max both", 5, 5, 1.0, model.Buy},
		{"buy boundary", 5, 1.25, 0.7, model.Buy},
		{"hold band", 4, 1, 0.56, model.Hold},
		{"hold boundary", 2.5, 3.9375, 0.6150, model.Hold},
		{"low final", 2.5, 0, 0.3, model.Sell},
		{"veto with max technicals", 2.4, 5, 0.688, model.Sell},
		{"zero fundamentals", 0, 5, 0.4, model.Sell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, rec := p.Decide(sc(tt.fund), sc(tt.tech))
			assert.InDelta(t, tt.wantFinal, final, 1e-9)
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestDecide_HoldLowerBoundary(t *testing.T) {
	p := DefaultPolicy()
	// 0.6*0.5 + 0.4*0.375 = 0.45
	final, rec := p.Decide(sc(2.5), sc(1.875))
	assert.InDelta(t, 0.45, final, 1e-9)
	assert.Equal(t, model.Hold, rec)
}

func TestDecide_VetoHoldsForEveryTechnicalScore(t *testing.T) {
	p := DefaultPolicy()
	for fund := 0.0; fund < p.FundThreshold; fund += 0.5 {
		for tech := 0.0; tech <= 5; tech += 0.5 {
			_, rec := p.Decide(sc(fund), sc(tech))
			assert.Equal(t, model.Sell, rec, "fund=%.1f tech=%.1f", fund, tech)
		}
	}
}

func labelRank(r model.Recommendation) int {
	switch r {
	case model.Buy:
		return 2
	case model.Hold:
		return 1
	}
	return 0
}

func TestDecide_MonotonicInTechnicalScore(t *testing.T) {
	p := DefaultPolicy()
	for fund := p.FundThreshold; fund <= 5; fund += 0.5 {
		prevFinal, prevRank := -1.0, -1
		for tech := 0.0; tech <= 5; tech += 0.5 {
			final, rec := p.Decide(sc(fund), sc(tech))
			assert.GreaterOrEqual(t, final, prevFinal, "fund=%.1f tech=%.1f", fund, tech)
			assert.GreaterOrEqual(t, labelRank(rec), prevRank, "fund=%.1f tech=%.1f", fund, tech)
			prevFinal, prevRank = final, labelRank(rec)
		}
	}
}

func TestFinalScore_Bounded(t *testing.T) {
	p := DefaultPolicy()
	for fund := 0.0; fund <= 5; fund += 0.25 {
		for tech := 0.0; tech <= 5; tech += 0.25 {
			f := p.FinalScore(sc(fund), sc(tech))
			assert.GreaterOrEqual(t, f, 0.0)
			assert.LessOrEqual(t, f, 1.0)
		}
	}
	assert.Equal(t, 0.0, p.FinalScore(model.Score{}, model.Score{}))
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	tests := []struct {
		name   string
		mutate func(*Policy)
		field  string
	}{
		{"weights do not sum", func(p *Policy) { p.TechWeight = 0.5 }, "policy.weights"},
		{"negative weight", func(p *Policy) { p.FundWeight, p.TechWeight = -0.2, 1.2 }, "policy.weights"},
		{"buy out of range", func(p *Policy) { p.BuyAt = 1.2 }, "policy.buy_at"},
		{"hold above buy", func(p *Policy) { p.HoldAt = 0.8 }, "policy.hold_at"},
		{"zero fund max", func(p *Policy) { p.Fundamentals.Max = 0 }, "policy.fundamentals.max"},
		{"zero tech max", func(p *Policy) { p.Technical.Max = 0 }, "policy.technical.max"},
		{"threshold above max", func(p *Policy) { p.FundThreshold = 6 }, "policy.fund_threshold"},
		{"inverted pe", func(p *Policy) { p.Fundamentals.PECheap = 30 }, "policy.fundamentals.pe_cheap"},
		{"inverted rsi band", func(p *Policy) { p.Technical.RSIOversold = 80 }, "policy.technical.rsi_oversold"},
		{"negative penalty", func(p *Policy) { p.Technical.RSIOverboughtPenalty = -1 }, "policy.technical.rsi_overbought_penalty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
