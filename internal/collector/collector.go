package collector

import (
	"context"
	"fmt"
	"time"

	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"
)

// DefaultLookbackDays covers one year of daily bars.
const DefaultLookbackDays = 365

// StaleAfter is how old the newest bar may be before a symbol is flagged as stale.
const StaleAfter = 10 * 24 * time.Hour

// Collector fetches and sanitizes everything needed to evaluate one symbol.
type Collector struct {
	Fetcher      Fetcher
	LookbackDays int
	log          *logger.Logger
	now          func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, lookbackDays int, log *logger.Logger) *Collector {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Collector{Fetcher: fetcher, LookbackDays: lookbackDays, log: log, now: time.Now}
}

// Collect fetches bars and fundamentals for a symbol. Missing bars are an
// error; a failed fundamentals fetch degrades to an empty snapshot.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.SymbolData, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	now := c.now()
	series := &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: now}
	series.Normalize()
	last, ok := series.Latest()
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoPriceData)
	}
	if age := now.Sub(last.Time); age > StaleAfter {
		c.log.WithField("symbol", symbol).WithField("last_bar", last.Time.Format("2006-01-02")).
			Warnf("price data is %d days old", int(age.Hours()/24))
	}

	fund, err := c.Fetcher.FetchFundamentals(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.WithField("symbol", symbol).WithError(err).Warn("fundamentals unavailable, scoring without them")
		fund = &model.Fundamentals{Symbol: symbol}
	}
	if fund.Empty() {
		c.log.WithField("symbol", symbol).Debug("no fundamentals reported")
		if fund == nil {
			fund = &model.Fundamentals{Symbol: symbol}
		}
	}

	return &model.SymbolData{Series: series, Fundamentals: fund}, nil
}
