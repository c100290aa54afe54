package store

import (
	"context"
	"time"

	"MarketScreener/internal/model"
)

// NoopStore is used when caching is disabled. Every load misses.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) LoadBars(_ context.Context, _ string, _ int, _ time.Duration) ([]model.OHLCV, bool, error) {
	return nil, false, nil
}
func (n *NoopStore) SaveBars(_ context.Context, _ string, _ int, _ []model.OHLCV) error { return nil }
func (n *NoopStore) LoadFundamentals(_ context.Context, _ string, _ time.Duration) (*model.Fundamentals, bool, error) {
	return nil, false, nil
}
func (n *NoopStore) SaveFundamentals(_ context.Context, _ *model.Fundamentals) error { return nil }
func (n *NoopStore) Purge(_ context.Context, _ time.Duration) (int64, error)          { return 0, nil }
func (n *NoopStore) Close() error                                                     { return nil }
