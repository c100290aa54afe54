package model

import (
	"math"
	"time"

	"github.com/guregu/null/v6"
)

// MinRevenuePeriods is the number of reported periods needed before a revenue trend is computed.
const MinRevenuePeriods = 3

const revenueEpsilon = 1e-6

// Fundamentals is a point-in-time snapshot of company metrics.
// Every metric may be absent; consumers must check Valid before use.
type Fundamentals struct {
	Symbol         string     `json:"symbol"`
	TrailingPE     null.Float `json:"trailing_pe"`
	PriceToBook    null.Float `json:"price_to_book"`
	DebtToEquity   null.Float `json:"debt_to_equity"` // percent, e.g. 45 means 0.45x
	ReturnOnEquity null.Float `json:"return_on_equity"`
	ReturnOnAssets null.Float `json:"return_on_assets"`
	Revenues       []float64  `json:"revenues"` // oldest first
	FetchedAt      time.Time  `json:"fetched_at"`
}

// Profitability returns ROE, falling back to ROA, and the name of the metric used.
func (f *Fundamentals) Profitability() (null.Float, string) {
	if f == nil {
		return null.Float{}, ""
	}
	if f.ReturnOnEquity.Valid {
		return f.ReturnOnEquity, "roe"
	}
	if f.ReturnOnAssets.Valid {
		return f.ReturnOnAssets, "roa"
	}
	return null.Float{}, ""
}

// RevenueGrowth is the relative change from the oldest to the newest reported revenue.
// It is invalid when fewer than MinRevenuePeriods values exist.
func (f *Fundamentals) RevenueGrowth() null.Float {
	if f == nil || len(f.Revenues) < MinRevenuePeriods {
		return null.Float{}
	}
	oldest := f.Revenues[0]
	newest := f.Revenues[len(f.Revenues)-1]
	return null.FloatFrom((newest - oldest) / (math.Abs(oldest) + revenueEpsilon))
}

// Empty reports whether no metric at all is present.
func (f *Fundamentals) Empty() bool {
	if f == nil {
		return true
	}
	return !f.TrailingPE.Valid && !f.PriceToBook.Valid && !f.DebtToEquity.Valid &&
		!f.ReturnOnEquity.Valid && !f.ReturnOnAssets.Valid && len(f.Revenues) == 0
}
