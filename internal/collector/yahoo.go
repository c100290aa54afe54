package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"MarketScreener/internal/model"

	"github.com/guregu/null/v6"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
// Symbols are Yahoo tickers, e.g. "RELIANCE.NS".
type YahooFetcher struct {
	src *httpSource
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts ...Option) *YahooFetcher {
	src := newHTTPSource("yahoo", DefaultYahooBaseURL, opts...)
	src.headers["User-Agent"] = "Mozilla/5.0"
	return &YahooFetcher{src: src}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

// chartRange picks the smallest Yahoo range covering the requested calendar days.
func chartRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

// FetchDailyBars returns daily bars covering the last `days` calendar days, oldest first.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", chartRange(days))

	var chart yahooChart
	if err := f.src.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoPriceData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == 0 {
			continue // null bars (holidays, halts)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return trimToWindow(bars, days), nil
}

// yahooValue is the {"raw": 1.23, "fmt": "1.23"} wrapper used by quoteSummary.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

func (v yahooValue) null() null.Float { return null.FloatFromPtr(v.Raw) }

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE yahooValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				PriceToBook yahooValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				DebtToEquity   yahooValue `json:"debtToEquity"`
				ReturnOnEquity yahooValue `json:"returnOnEquity"`
				ReturnOnAssets yahooValue `json:"returnOnAssets"`
			} `json:"financialData"`
			IncomeStatementHistoryQuarterly struct {
				IncomeStatementHistory []struct {
					EndDate      yahooValue `json:"endDate"`
					TotalRevenue yahooValue `json:"totalRevenue"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistoryQuarterly"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals returns the quoteSummary snapshot. Fields Yahoo omits stay invalid.
func (f *YahooFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	params := url.Values{}
	params.Set("modules", "summaryDetail,defaultKeyStatistics,financialData,incomeStatementHistoryQuarterly")

	var qs yahooQuoteSummary
	if err := f.src.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &qs); err != nil {
		return nil, err
	}
	if qs.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return &model.Fundamentals{Symbol: symbol, FetchedAt: time.Now()}, nil
	}

	r := qs.QuoteSummary.Result[0]
	fund := &model.Fundamentals{
		Symbol:         symbol,
		TrailingPE:     r.SummaryDetail.TrailingPE.null(),
		PriceToBook:    r.DefaultKeyStatistics.PriceToBook.null(),
		DebtToEquity:   r.FinancialData.DebtToEquity.null(),
		ReturnOnEquity: r.FinancialData.ReturnOnEquity.null(),
		ReturnOnAssets: r.FinancialData.ReturnOnAssets.null(),
		FetchedAt:      time.Now(),
	}

	type period struct {
		end     float64
		revenue float64
	}
	var periods []period
	for _, st := range r.IncomeStatementHistoryQuarterly.IncomeStatementHistory {
		if st.TotalRevenue.Raw == nil || st.EndDate.Raw == nil {
			continue
		}
		periods = append(periods, period{end: *st.EndDate.Raw, revenue: *st.TotalRevenue.Raw})
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].end < periods[j].end })
	for _, p := range periods {
		fund.Revenues = append(fund.Revenues, p.revenue)
	}
	return fund, nil
}
