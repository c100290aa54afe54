package store

import (
	"context"
	"time"

	"MarketScreener/internal/model"
)

// Store caches fetched inputs (daily bars and fundamentals) between scans.
// Scan results are never stored; every scan re-evaluates from inputs.
type Store interface {
	// LoadBars returns cached bars no older than maxAge whose fetch covered at
	// least days calendar days. ok is false on a miss.
	LoadBars(ctx context.Context, symbol string, days int, maxAge time.Duration) (bars []model.OHLCV, ok bool, err error)
	// SaveBars replaces the cached series, recording the window it was fetched for.
	SaveBars(ctx context.Context, symbol string, days int, bars []model.OHLCV) error
	// LoadFundamentals returns a cached snapshot no older than maxAge. ok is false on a miss.
	LoadFundamentals(ctx context.Context, symbol string, maxAge time.Duration) (f *model.Fundamentals, ok bool, err error)
	SaveFundamentals(ctx context.Context, f *model.Fundamentals) error
	// Purge drops entries older than the given age and returns how many cache entries were evicted.
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}
