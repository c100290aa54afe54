package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"MarketScreener/internal/model"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []model.ScanResult {
	return []model.ScanResult{
		{Symbol: "TCS.NS", Price: 3900, FinalScore: 0.82, Recommendation: model.Buy, Confidence: model.Strong,
			Fund: model.Score{Points: 4.5, Max: 5}, Tech: model.Score{Points: 3.5, Max: 5},
			Diagnostics: model.Diagnostics{PE: null.FloatFrom(28.1), RSI: 61, ProfitabilityMetric: "roe", Profitability: null.FloatFrom(0.45)}},
		{Symbol: "ITC.NS", Price: 430, FinalScore: 0.55, Recommendation: model.Hold, Confidence: model.Neutral,
			Fund: model.Score{Points: 3, Max: 5}, Tech: model.Score{Points: 2.5, Max: 5},
			Diagnostics: model.Diagnostics{RSI: 48}},
		{Symbol: "UPL.NS", Price: 510, FinalScore: 0.30, Recommendation: model.Sell, Confidence: model.Weak,
			Fund: model.Score{Points: 1, Max: 5}, Tech: model.Score{Points: 3, Max: 5},
			Diagnostics: model.Diagnostics{RSI: 72}},
		{Symbol: "INFY.NS", Price: 1500, FinalScore: 0.55, Recommendation: model.Hold, Confidence: model.Neutral,
			Diagnostics: model.Diagnostics{RSI: 35}},
	}
}

func symbols(rs []model.ScanResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Symbol
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, []string{"TCS.NS", "ITC.NS", "UPL.NS", "INFY.NS"}},
		{"labels", Criteria{Labels: []model.Recommendation{model.Buy, model.Hold}}, []string{"TCS.NS", "ITC.NS", "INFY.NS"}},
		{"min score", Criteria{MinScore: 0.55}, []string{"TCS.NS", "ITC.NS", "INFY.NS"}},
		{"query", Criteria{Query: "nfy"}, []string{"INFY.NS"}},
		{"combined", Criteria{Labels: []model.Recommendation{model.Hold}, Query: "itc"}, []string{"ITC.NS"}},
		{"nothing", Criteria{MinScore: 0.9}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(Filter(sample(), tt.c)))
		})
	}
}

func TestParseLabels(t *testing.T) {
	got, err := ParseLabels("buy, HOLD,,")
	require.NoError(t, err)
	assert.Equal(t, []model.Recommendation{model.Buy, model.Hold}, got)

	got, err = ParseLabels("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseLabels("buy,strong")
	assert.Error(t, err)
}

func TestSort(t *testing.T) {
	rs := sample()
	require.NoError(t, Sort(rs, "final", true))
	assert.Equal(t, []string{"TCS.NS", "INFY.NS", "ITC.NS", "UPL.NS"}, symbols(rs), "ties by symbol")

	require.NoError(t, Sort(rs, "rsi", false))
	assert.Equal(t, []string{"INFY.NS", "ITC.NS", "TCS.NS", "UPL.NS"}, symbols(rs))

	require.NoError(t, Sort(rs, "symbol", true))
	assert.Equal(t, []string{"UPL.NS", "TCS.NS", "ITC.NS", "INFY.NS"}, symbols(rs))

	require.NoError(t, Sort(rs, "PRICE", false))
	assert.Equal(t, "ITC.NS", rs[0].Symbol)

	assert.Error(t, Sort(rs, "volume", false))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()[:2]))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])

	col := func(name string) int {
		for i, h := range Header {
			if h == name {
				return i
			}
		}
		t.Fatalf("no column %s", name)
		return -1
	}
	tcs, itc := rows[1], rows[2]
	assert.Equal(t, "TCS.NS", tcs[col("symbol")])
	assert.Equal(t, "Buy", tcs[col("recommendation")])
	assert.Equal(t, "Strong", tcs[col("confidence")])
	assert.Equal(t, "28.1000", tcs[col("pe")])
	assert.Equal(t, "roe", tcs[col("profitability_metric")])
	assert.Equal(t, "0.8200", tcs[col("final_score")])
	assert.Equal(t, "", itc[col("pe")], "absent metric is blank")
	assert.Equal(t, "", itc[col("debt_to_equity")])
	for _, r := range rows {
		assert.Len(t, r, len(Header))
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sample()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "SYMBOL")
	assert.Contains(t, lines[1], "TCS.NS")
	assert.Contains(t, lines[1], "Buy (Strong)")
	assert.Contains(t, lines[2], "-")
}

func TestWriteSkipped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSkipped(&buf, nil))
	assert.Empty(t, buf.String())

	require.NoError(t, WriteSkipped(&buf, []model.SkippedSymbol{{Symbol: "HDFC.NS", Reason: "no price data"}}))
	assert.Contains(t, buf.String(), "HDFC.NS: no price data")
}
