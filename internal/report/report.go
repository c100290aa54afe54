package report

import (
	"fmt"
	"sort"
	"strings"

	"MarketScreener/internal/model"
)

// Criteria filters scan results. Zero values match everything.
type Criteria struct {
	Labels   []model.Recommendation
	MinScore float64
	Query    string // case-insensitive symbol substring
}

// Filter returns the results matching c, preserving order.
func Filter(results []model.ScanResult, c Criteria) []model.ScanResult {
	q := strings.ToUpper(strings.TrimSpace(c.Query))
	out := make([]model.ScanResult, 0, len(results))
	for _, r := range results {
		if len(c.Labels) > 0 && !hasLabel(c.Labels, r.Recommendation) {
			continue
		}
		if r.FinalScore < c.MinScore {
			continue
		}
		if q != "" && !strings.Contains(strings.ToUpper(r.Symbol), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasLabel(labels []model.Recommendation, l model.Recommendation) bool {
	for _, x := range labels {
		if x == l {
			return true
		}
	}
	return false
}

// ParseLabels parses a comma-separated label list such as "buy,hold".
func ParseLabels(s string) ([]model.Recommendation, error) {
	var out []model.Recommendation
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := model.ParseRecommendation(part)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

var sortKeys = map[string]func(r model.ScanResult) float64{
	"price": func(r model.ScanResult) float64 { return r.Price },
	"fund":  func(r model.ScanResult) float64 { return r.Fund.Points },
	"tech":  func(r model.ScanResult) float64 { return r.Tech.Points },
	"final": func(r model.ScanResult) float64 { return r.FinalScore },
	"rsi":   func(r model.ScanResult) float64 { return r.Diagnostics.RSI },
}

// Sort orders results in place by key: symbol, price, fund, tech, final or rsi.
// Ties fall back to symbol ascending.
func Sort(results []model.ScanResult, key string, desc bool) error {
	key = strings.ToLower(key)
	if key == "" || key == "symbol" {
		sort.SliceStable(results, func(i, j int) bool {
			if desc {
				return results[i].Symbol > results[j].Symbol
			}
			return results[i].Symbol < results[j].Symbol
		})
		return nil
	}
	val, ok := sortKeys[key]
	if !ok {
		return fmt.Errorf("unknown sort key %q", key)
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := val(results[i]), val(results[j])
		if a != b {
			if desc {
				return a > b
			}
			return a < b
		}
		return results[i].Symbol < results[j].Symbol
	})
	return nil
}
