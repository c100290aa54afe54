package collector

import (
	"context"
	"time"

	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"
	"MarketScreener/internal/store"
)

// CachedFetcher serves recent fetches from a Store and writes through on a miss.
// Cache read or write failures are logged and fall back to the wrapped fetcher.
type CachedFetcher struct {
	next  Fetcher
	store store.Store
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedFetcher wraps next with a cache whose entries live for ttl.
func NewCachedFetcher(next Fetcher, st store.Store, ttl time.Duration, log *logger.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, store: st, ttl: ttl, log: log}
}

func (c *CachedFetcher) Name() string { return c.next.Name() + "+cache" }

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	l := c.log.WithField("symbol", symbol)
	bars, ok, err := c.store.LoadBars(ctx, symbol, days, c.ttl)
	if err != nil {
		l.WithError(err).Warn("bar cache read failed")
	}
	if ok {
		l.Debug("bar cache hit")
		return trimToWindow(bars, days), nil
	}

	bars, err = c.next.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		if err := c.store.SaveBars(ctx, symbol, days, bars); err != nil {
			l.WithError(err).Warn("bar cache write failed")
		}
	}
	return bars, nil
}

func (c *CachedFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	l := c.log.WithField("symbol", symbol)
	f, ok, err := c.store.LoadFundamentals(ctx, symbol, c.ttl)
	if err != nil {
		l.WithError(err).Warn("fundamentals cache read failed")
	}
	if ok {
		l.Debug("fundamentals cache hit")
		return f, nil
	}

	f, err = c.next.FetchFundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := c.store.SaveFundamentals(ctx, f); err != nil {
		l.WithError(err).Warn("fundamentals cache write failed")
	}
	return f, nil
}
