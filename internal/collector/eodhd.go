package collector

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"MarketScreener/internal/model"

	"github.com/guregu/null/v6"
)

const DefaultEODHDBaseURL = "https://eodhd.com/api"

// EODHDFetcher implements Fetcher against the EODHD end-of-day API.
// Yahoo-style suffixes (.NS, .BO) are translated to EODHD exchange codes.
type EODHDFetcher struct {
	src    *httpSource
	apiKey string
	now    func() time.Time
}

// NewEODHDFetcher creates an EODHD fetcher.
func NewEODHDFetcher(apiKey string, opts ...Option) *EODHDFetcher {
	return &EODHDFetcher{
		src:    newHTTPSource("eodhd", DefaultEODHDBaseURL, opts...),
		apiKey: apiKey,
		now:    time.Now,
	}
}

func (f *EODHDFetcher) Name() string { return "eodhd" }

var eodhdExchanges = map[string]string{
	".NS": ".NSE",
	".BO": ".BSE",
}

// eodhdSymbol maps "RELIANCE.NS" to "RELIANCE.NSE"; unknown suffixes pass through.
func eodhdSymbol(symbol string) string {
	for suffix, code := range eodhdExchanges {
		if strings.HasSuffix(symbol, suffix) {
			return strings.TrimSuffix(symbol, suffix) + code
		}
	}
	return symbol
}

func (f *EODHDFetcher) params() url.Values {
	p := url.Values{}
	p.Set("api_token", f.apiKey)
	p.Set("fmt", "json")
	return p
}

type eodhdBar struct {
	Date   string   `json:"date"`
	Open   float64  `json:"open"`
	High   float64  `json:"high"`
	Low    float64  `json:"low"`
	Close  float64  `json:"close"`
	Volume *float64 `json:"volume"`
}

func (f *EODHDFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	params := f.params()
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", f.now().AddDate(0, 0, -days).Format("2006-01-02"))

	var raw []eodhdBar
	if err := f.src.getJSON(ctx, "/eod/"+url.PathEscape(eodhdSymbol(symbol)), params, &raw); err != nil {
		return nil, err
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, r := range raw {
		t, err := time.Parse("2006-01-02", r.Date)
		if err != nil || r.Close <= 0 {
			continue
		}
		b := model.OHLCV{Time: t, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close}
		if r.Volume != nil {
			b.Volume = *r.Volume
		}
		bars = append(bars, b)
	}
	return bars, nil
}

type eodhdFundamentals struct {
	Highlights *struct {
		PERatio           *float64 `json:"PERatio"`
		ReturnOnEquityTTM *float64 `json:"ReturnOnEquityTTM"`
		ReturnOnAssetsTTM *float64 `json:"ReturnOnAssetsTTM"`
	} `json:"Highlights"`
	Valuation *struct {
		PriceBookMRQ *float64 `json:"PriceBookMRQ"`
	} `json:"Valuation"`
	Financials *struct {
		BalanceSheet    *eodhdStatement `json:"Balance_Sheet"`
		IncomeStatement *eodhdStatement `json:"Income_Statement"`
	} `json:"Financials"`
}

type eodhdStatement struct {
	Quarterly map[string]map[string]interface{} `json:"quarterly"`
}

// EODHD reports statement values as strings, numbers or null.
func statementValue(row map[string]interface{}, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// quarters returns statement rows ordered by period date, oldest first.
func (s *eodhdStatement) quarters() []map[string]interface{} {
	if s == nil {
		return nil
	}
	dates := make([]string, 0, len(s.Quarterly))
	for d := range s.Quarterly {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	rows := make([]map[string]interface{}, len(dates))
	for i, d := range dates {
		rows[i] = s.Quarterly[d]
	}
	return rows
}

// revenueQuarters is how many recent quarters feed the revenue trend.
const revenueQuarters = 4

func (f *EODHDFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	var raw eodhdFundamentals
	if err := f.src.getJSON(ctx, "/fundamentals/"+url.PathEscape(eodhdSymbol(symbol)), f.params(), &raw); err != nil {
		return nil, err
	}

	fund := &model.Fundamentals{Symbol: symbol, FetchedAt: f.now()}
	if h := raw.Highlights; h != nil {
		fund.TrailingPE = null.FloatFromPtr(h.PERatio)
		fund.ReturnOnEquity = null.FloatFromPtr(h.ReturnOnEquityTTM)
		fund.ReturnOnAssets = null.FloatFromPtr(h.ReturnOnAssetsTTM)
	}
	if v := raw.Valuation; v != nil {
		fund.PriceToBook = null.FloatFromPtr(v.PriceBookMRQ)
	}
	if fin := raw.Financials; fin != nil {
		if q := fin.BalanceSheet.quarters(); len(q) > 0 {
			latest := q[len(q)-1]
			debt, okDebt := statementValue(latest, "shortLongTermDebtTotal")
			equity, okEq := statementValue(latest, "totalStockholderEquity")
			if okDebt && okEq && equity > 0 {
				fund.DebtToEquity = null.FloatFrom(debt / equity * 100)
			}
		}
		q := fin.IncomeStatement.quarters()
		if len(q) > revenueQuarters {
			q = q[len(q)-revenueQuarters:]
		}
		for _, row := range q {
			if rev, ok := statementValue(row, "totalRevenue"); ok {
				fund.Revenues = append(fund.Revenues, rev)
			}
		}
	}
	return fund, nil
}
