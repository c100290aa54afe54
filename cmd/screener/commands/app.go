package commands

import (
	"time"

	"MarketScreener/internal/collector"
	"MarketScreener/internal/config"
	"MarketScreener/internal/logger"
	"MarketScreener/internal/notifier"
	"MarketScreener/internal/scanner"
	"MarketScreener/internal/scheduler"
	"MarketScreener/internal/store"
	"MarketScreener/internal/strategy"
)

// app is the wired scan pipeline shared by the scan and serve commands.
type app struct {
	store   store.Store
	fetcher collector.Fetcher
	scanner *scanner.Scanner
}

func newFetcher(c *config.Config, l *logger.Logger) collector.Fetcher {
	opts := []collector.Option{
		collector.WithRateLimit(c.DataSource.RateLimit),
		collector.WithProxy(c.Proxy),
		collector.WithLogger(l),
	}
	if c.DataSource.BaseURL != "" {
		opts = append(opts, collector.WithBaseURL(c.DataSource.BaseURL))
	}

	switch c.DataSource.Provider {
	case config.ProviderEODHD:
		return collector.NewEODHDFetcher(c.DataSource.APIKey, opts...)
	case config.ProviderMock:
		return collector.NewMockFetcher(time.Now().UTC().Truncate(24 * time.Hour))
	default:
		return collector.NewYahooFetcher(opts...)
	}
}

// newApp wires fetcher, cache, collector, engine and scanner from config.
// A cache that fails to open degrades to no caching.
func newApp(c *config.Config, l *logger.Logger) *app {
	fetcher := newFetcher(c, l)
	var st store.Store = store.NewNoopStore()
	if c.Cache.Enabled {
		sqlite, err := store.NewSQLiteStore(c.Cache.SQLitePath, l)
		if err != nil {
			l.WithError(err).Warn("init sqlite cache failed, fetching without cache")
		} else {
			st = sqlite
			fetcher = collector.NewCachedFetcher(fetcher, st, c.Cache.TTL, l)
		}
	}
	l.WithField("source", fetcher.Name()).Info("data source ready")

	col := collector.NewCollector(fetcher, c.DataSource.LookbackDays, l)
	engine := strategy.NewEngine(c.Policy, c.Indicators)
	return &app{
		store:   st,
		fetcher: fetcher,
		scanner: scanner.New(col, engine, c.Scan.Concurrency, fetcher.Name(), l),
	}
}

// newTelegram returns the notifier and the scheduler's sender. Both are nil
// when credentials are missing, so the sender interface stays a true nil.
func newTelegram(c *config.Config, l *logger.Logger) (*notifier.TelegramNotifier, scheduler.Sender) {
	tn := notifier.NewTelegramNotifier(c.Telegram.BotToken, c.Telegram.ChatID, c.Proxy, l)
	if !tn.Enabled() {
		l.Warn("telegram credentials not set, notifications disabled")
		return nil, nil
	}
	return tn, tn
}

func (a *app) Close() error {
	return a.store.Close()
}
