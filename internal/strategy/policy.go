package strategy

import (
	"fmt"
	"math"

	"MarketScreener/internal/model"
)

// ValidationError reports an invalid policy setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FundamentalsRules are the thresholds and point awards of the fundamentals scorer.
type FundamentalsRules struct {
	Max float64 `yaml:"max"`

	PECheap       float64 `yaml:"pe_cheap"`
	PEFair        float64 `yaml:"pe_fair"`
	PECheapPoints float64 `yaml:"pe_cheap_points"`
	PEFairPoints  float64 `yaml:"pe_fair_points"`

	DebtLow            float64 `yaml:"debt_low"`
	DebtModerate       float64 `yaml:"debt_moderate"`
	DebtLowPoints      float64 `yaml:"debt_low_points"`
	DebtModeratePoints float64 `yaml:"debt_moderate_points"`

	ProfitStrong       float64 `yaml:"profit_strong"`
	ProfitFair         float64 `yaml:"profit_fair"`
	ProfitStrongPoints float64 `yaml:"profit_strong_points"`
	ProfitFairPoints   float64 `yaml:"profit_fair_points"`

	RevenueGrowthMin    float64 `yaml:"revenue_growth_min"`
	RevenueGrowthPoints float64 `yaml:"revenue_growth_points"`
}

// TechnicalRules are the thresholds and point awards of the technical scorer.
type TechnicalRules struct {
	Max float64 `yaml:"max"`

	AboveLongPoints      float64 `yaml:"above_long_points"`
	AboveShortPoints     float64 `yaml:"above_short_points"`
	GoldenCrossPoints    float64 `yaml:"golden_cross_points"`
	RSIOversold          float64 `yaml:"rsi_oversold"`
	RSIOverbought        float64 `yaml:"rsi_overbought"`
	RSINeutralPoints     float64 `yaml:"rsi_neutral_points"`
	RSIOversoldPoints    float64 `yaml:"rsi_oversold_points"`
	RSIOverboughtPenalty float64 `yaml:"rsi_overbought_penalty"`
	MACDBullishPoints    float64 `yaml:"macd_bullish_points"`
}

// Policy combines the two scores into a recommendation.
type Policy struct {
	Fundamentals  FundamentalsRules `yaml:"fundamentals"`
	Technical     TechnicalRules    `yaml:"technical"`
	FundWeight    float64           `yaml:"fund_weight"`
	TechWeight    float64           `yaml:"tech_weight"`
	FundThreshold float64           `yaml:"fund_threshold"`
	BuyAt         float64           `yaml:"buy_at"`
	HoldAt        float64           `yaml:"hold_at"`
}

// DefaultPolicy returns the canonical mid-term policy: 60/40 weighting,
// fundamentals veto below 2.5 points, Buy from 0.70 and Hold from 0.45.
func DefaultPolicy() Policy {
	return Policy{
		Fundamentals: FundamentalsRules{
			Max:                 5,
			PECheap:             15,
			PEFair:              25,
			PECheapPoints:       2,
			PEFairPoints:        1,
			DebtLow:             50,
			DebtModerate:        100,
			DebtLowPoints:       1,
			DebtModeratePoints:  0.5,
			ProfitStrong:        0.15,
			ProfitFair:          0.08,
			ProfitStrongPoints:  1,
			ProfitFairPoints:    0.5,
			RevenueGrowthMin:    0.03,
			RevenueGrowthPoints: 1,
		},
		Technical: TechnicalRules{
			Max:               5,
			AboveLongPoints:   2,
			AboveShortPoints:  1,
			GoldenCrossPoints: 1,
			RSIOversold:       30,
			RSIOverbought:     70,
			RSINeutralPoints:  1,
			RSIOversoldPoints: 0.5,
			MACDBullishPoints: 0.5,
		},
		FundWeight:    0.6,
		TechWeight:    0.4,
		FundThreshold: 2.5,
		BuyAt:         0.7,
		HoldAt:        0.45,
	}
}

// Validate returns the first invalid setting as a ValidationError.
func (p Policy) Validate() error {
	if p.Fundamentals.Max <= 0 {
		return ValidationError{"policy.fundamentals.max", "must be > 0"}
	}
	if p.Technical.Max <= 0 {
		return ValidationError{"policy.technical.max", "must be > 0"}
	}
	if p.FundWeight < 0 || p.TechWeight < 0 {
		return ValidationError{"policy.weights", "must be >= 0"}
	}
	if math.Abs(p.FundWeight+p.TechWeight-1) > 1e-9 {
		return ValidationError{"policy.weights", fmt.Sprintf("fund_weight + tech_weight must equal 1, got %.4f", p.FundWeight+p.TechWeight)}
	}
	if p.BuyAt < 0 || p.BuyAt > 1 {
		return ValidationError{"policy.buy_at", "must be in [0, 1]"}
	}
	if p.HoldAt < 0 || p.HoldAt > 1 {
		return ValidationError{"policy.hold_at", "must be in [0, 1]"}
	}
	if p.HoldAt > p.BuyAt {
		return ValidationError{"policy.hold_at", "must be <= buy_at"}
	}
	if p.FundThreshold < 0 || p.FundThreshold > p.Fundamentals.Max {
		return ValidationError{"policy.fund_threshold", "must be in [0, fundamentals.max]"}
	}
	if p.Fundamentals.PECheap > p.Fundamentals.PEFair {
		return ValidationError{"policy.fundamentals.pe_cheap", "must be <= pe_fair"}
	}
	if p.Fundamentals.DebtLow > p.Fundamentals.DebtModerate {
		return ValidationError{"policy.fundamentals.debt_low", "must be <= debt_moderate"}
	}
	if p.Fundamentals.ProfitFair > p.Fundamentals.ProfitStrong {
		return ValidationError{"policy.fundamentals.profit_fair", "must be <= profit_strong"}
	}
	if p.Technical.RSIOversold > p.Technical.RSIOverbought {
		return ValidationError{"policy.technical.rsi_oversold", "must be <= rsi_overbought"}
	}
	if p.Technical.RSIOverboughtPenalty < 0 {
		return ValidationError{"policy.technical.rsi_overbought_penalty", "must be >= 0"}
	}
	return nil
}

// FinalScore blends the two dimensions into [0, 1].
func (p Policy) FinalScore(fund, tech model.Score) float64 {
	// explicit conversions stop fused multiply-add so threshold comparisons match on every arch
	weighted := float64(p.FundWeight*fund.Pct()) + float64(p.TechWeight*tech.Pct())
	return clamp(weighted, 0, 1)
}

// Decide returns the final score and label. Fundamentals below the threshold
// always yield Sell, whatever the technical picture.
func (p Policy) Decide(fund, tech model.Score) (float64, model.Recommendation) {
	final := p.FinalScore(fund, tech)
	switch {
	case fund.Points < p.FundThreshold:
		return final, model.Sell
	case final >= p.BuyAt:
		return final, model.Buy
	case final >= p.HoldAt:
		return final, model.Hold
	default:
		return final, model.Sell
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
