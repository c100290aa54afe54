package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartJSON = `{"chart":{"result":[{"timestamp":[1704326400,1704153600,1704240000,1704412800],
"indicators":{"quote":[{"open":[12,10,11,null],"high":[12.5,10.5,11.5,null],
"low":[11.5,9.5,10.5,null],"close":[12.2,10.2,11.2,null],"volume":[300,100,200,null]}]}}],"error":null}}`

const quoteSummaryJSON = `{"quoteSummary":{"result":[{
"summaryDetail":{"trailingPE":{"raw":18.4,"fmt":"18.40"}},
"defaultKeyStatistics":{"priceToBook":{"raw":3.1}},
"financialData":{"debtToEquity":{"raw":42.0},"returnOnEquity":{"raw":0.17},"returnOnAssets":{}},
"incomeStatementHistoryQuarterly":{"incomeStatementHistory":[
 {"endDate":{"raw":1719705600},"totalRevenue":{"raw":1300}},
 {"endDate":{"raw":1711843200},"totalRevenue":{"raw":1200}},
 {"endDate":{"raw":1703980800},"totalRevenue":{"raw":1100}}]}}],"error":null}}`

func newYahooServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/TCS.NS", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.Write([]byte(chartJSON))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/TCS.NS", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(quoteSummaryJSON))
	})
	mux.HandleFunc("/v8/finance/chart/BAD.NS", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})
	mux.HandleFunc("/v8/finance/chart/DOWN.NS", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	srv := newYahooServer(t)
	f := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(100))

	bars, err := f.FetchDailyBars(context.Background(), "TCS.NS", 365)
	require.NoError(t, err)
	require.Len(t, bars, 3, "null bar is skipped")
	assert.Equal(t, []float64{10.2, 11.2, 12.2}, []float64{bars[0].Close, bars[1].Close, bars[2].Close})
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 300.0, bars[2].Volume)
}

func TestYahooFetcher_Errors(t *testing.T) {
	srv := newYahooServer(t)
	f := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(100))

	_, err := f.FetchDailyBars(context.Background(), "BAD.NS", 365)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")

	_, err = f.FetchDailyBars(context.Background(), "DOWN.NS", 365)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "yahoo", apiErr.Source)
}

func TestYahooFetcher_FetchFundamentals(t *testing.T) {
	srv := newYahooServer(t)
	f := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(100))

	fund, err := f.FetchFundamentals(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", fund.Symbol)
	assert.InDelta(t, 18.4, fund.TrailingPE.Float64, 1e-9)
	assert.InDelta(t, 3.1, fund.PriceToBook.Float64, 1e-9)
	assert.InDelta(t, 42.0, fund.DebtToEquity.Float64, 1e-9)
	assert.InDelta(t, 0.17, fund.ReturnOnEquity.Float64, 1e-9)
	assert.False(t, fund.ReturnOnAssets.Valid)
	assert.Equal(t, []float64{1100, 1200, 1300}, fund.Revenues, "ordered oldest first")
}

func TestChartRange(t *testing.T) {
	assert.Equal(t, "1mo", chartRange(20))
	assert.Equal(t, "6mo", chartRange(180))
	assert.Equal(t, "1y", chartRange(365))
	assert.Equal(t, "2y", chartRange(500))
	assert.Equal(t, "5y", chartRange(1500))
}

func TestYahooFetcher_ContextCancelled(t *testing.T) {
	srv := newYahooServer(t)
	f := NewYahooFetcher(WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.FetchDailyBars(ctx, "TCS.NS", 365)
	assert.Error(t, err)
}
