package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"
	"MarketScreener/internal/strategy"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many symbols are fetched and evaluated at once.
const DefaultConcurrency = 8

// Source supplies per-symbol inputs. *collector.Collector satisfies it.
type Source interface {
	Collect(ctx context.Context, symbol string) (*model.SymbolData, error)
}

// Scanner evaluates a universe of symbols in parallel.
type Scanner struct {
	source      Source
	engine      *strategy.Engine
	concurrency int
	sourceName  string
	log         *logger.Logger
}

// New creates a Scanner. concurrency <= 0 uses DefaultConcurrency.
func New(source Source, engine *strategy.Engine, concurrency int, sourceName string, log *logger.Logger) *Scanner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Scanner{
		source:      source,
		engine:      engine,
		concurrency: concurrency,
		sourceName:  sourceName,
		log:         log,
	}
}

// NormalizeUniverse trims and upper-cases symbols, drops blanks and removes
// duplicates while keeping first-seen order. The input is not modified.
func NormalizeUniverse(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

type outcome struct {
	result *model.ScanResult
	reason string
}

// Scan evaluates every symbol. A symbol that fails is recorded in
// ScanReport.Skipped and never stops the others; only ctx cancellation
// aborts the scan. Results are ranked by final score, then symbol.
func (s *Scanner) Scan(ctx context.Context, universe []string) (*model.ScanReport, error) {
	symbols := NormalizeUniverse(universe)
	report := &model.ScanReport{
		Universe:  len(symbols),
		Source:    s.sourceName,
		StartedAt: time.Now(),
	}
	s.log.WithField("symbols", len(symbols)).WithField("concurrency", s.concurrency).Info("scan started")

	outcomes := make([]outcome, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.evaluate(gctx, sym)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.WithField("symbol", sym).WithError(err).Warn("symbol skipped")
				outcomes[i] = outcome{reason: err.Error()}
				return nil
			}
			outcomes[i] = outcome{result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan aborted: %w", err)
	}

	for i, o := range outcomes {
		if o.result != nil {
			report.Results = append(report.Results, *o.result)
		} else {
			report.Skipped = append(report.Skipped, model.SkippedSymbol{Symbol: symbols[i], Reason: o.reason})
		}
	}
	Rank(report.Results)
	report.FinishedAt = time.Now()

	s.log.WithFields(map[string]interface{}{
		"evaluated": len(report.Results),
		"skipped":   len(report.Skipped),
		"buy":       report.Count(model.Buy),
		"hold":      report.Count(model.Hold),
		"sell":      report.Count(model.Sell),
		"elapsed":   report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("scan finished")
	return report, nil
}

// Evaluate runs a single symbol outside of a full scan.
func (s *Scanner) Evaluate(ctx context.Context, symbol string) (*model.ScanResult, error) {
	syms := NormalizeUniverse([]string{symbol})
	if len(syms) == 0 {
		return nil, errors.New("empty symbol")
	}
	return s.evaluate(ctx, syms[0])
}

func (s *Scanner) evaluate(ctx context.Context, symbol string) (*model.ScanResult, error) {
	data, err := s.source.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return s.engine.Evaluate(symbol, data.Series, data.Fundamentals)
}

// Rank orders results by final score descending, ties broken by symbol.
func Rank(results []model.ScanResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].Symbol < results[j].Symbol
	})
}
