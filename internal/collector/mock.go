package collector

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"MarketScreener/internal/model"

	"github.com/guregu/null/v6"
)

// MockFetcher returns deterministic synthetic data for development and tests.
// Explicit Bars, Fundamentals and Errors entries override the generated data;
// a symbol with explicit Bars but no Fundamentals entry gets an empty snapshot.
type MockFetcher struct {
	End          time.Time
	Bars         map[string][]model.OHLCV
	Fundamentals map[string]*model.Fundamentals
	Errors       map[string]error

	mu    sync.Mutex
	calls map[string]int
}

// NewMockFetcher creates a mock whose series end on the given day.
func NewMockFetcher(end time.Time) *MockFetcher {
	return &MockFetcher{End: end}
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many bar fetches a symbol received.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockFetcher) record(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[symbol]++
}

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	m.record(symbol)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(symbol, m.end(), days), nil
}

func (m *MockFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f, ok := m.Fundamentals[symbol]; ok {
		return f, nil
	}
	if _, ok := m.Bars[symbol]; ok {
		return &model.Fundamentals{Symbol: symbol}, nil
	}
	return generateMockFundamentals(symbol, m.end()), nil
}

func (m *MockFetcher) end() time.Time {
	if m.End.IsZero() {
		return time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return m.End
}

func seed(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}

// generateMockBars builds weekday bars with a symbol-specific drift and cycle.
func generateMockBars(symbol string, end time.Time, days int) []model.OHLCV {
	s := seed(symbol)
	base := 100 + float64(s%900)
	drift := (float64(s%21) - 10) / 10000 // -0.1% .. +0.1% per bar
	period := 20 + float64(s%40)

	var bars []model.OHLCV
	start := end.AddDate(0, 0, -days)
	i := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := base * (1 + drift*float64(i)) * (1 + 0.05*math.Sin(float64(i)/period))
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.998,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: float64(100000 + s%50000),
		})
		i++
	}
	return bars
}

func generateMockFundamentals(symbol string, end time.Time) *model.Fundamentals {
	s := seed(symbol)
	revBase := 1000 + float64(s%5000)
	growth := (float64(s%13) - 4) / 100
	return &model.Fundamentals{
		Symbol:         symbol,
		TrailingPE:     null.FloatFrom(8 + float64(s%30)),
		PriceToBook:    null.FloatFrom(1 + float64(s%8)/2),
		DebtToEquity:   null.FloatFrom(float64(s % 150)),
		ReturnOnEquity: null.FloatFrom(float64(s%30) / 100),
		Revenues:       []float64{revBase, revBase * (1 + growth/2), revBase * (1 + growth)},
		FetchedAt:      end,
	}
}
