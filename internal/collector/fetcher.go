package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"

	"golang.org/x/time/rate"
)

// ErrNoPriceData means a source returned no usable bars for a symbol.
var ErrNoPriceData = errors.New("no price data")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
	Name() string
}

// APIError is a non-200 response from an upstream data API.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d, endpoint: %s)", e.Source, e.Message, e.StatusCode, e.Endpoint)
}

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// httpSource holds what the HTTP-backed fetchers share: transport, throttle and logging.
type httpSource struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
	headers map[string]string
}

// Option configures an HTTP-backed fetcher.
type Option func(*httpSource)

// WithBaseURL points the fetcher at a different API host (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(s *httpSource) { s.baseURL = baseURL }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *httpSource) { s.client = c }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(requestsPerSecond int) Option {
	return func(s *httpSource) {
		if requestsPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithProxy routes requests through an HTTP(S) proxy.
func WithProxy(proxyURL string) Option {
	return func(s *httpSource) {
		if proxyURL == "" {
			return
		}
		if u, err := url.Parse(proxyURL); err == nil {
			s.client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *httpSource) { s.log = l }
}

func newHTTPSource(name, baseURL string, opts ...Option) *httpSource {
	s := &httpSource{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		log:     logger.Nop(),
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *httpSource) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", s.name, err)
	}

	reqURL := s.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	s.log.WithField("source", s.name).WithField("path", path).Debug("api request")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s fetch: %w", s.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read body: %w", s.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return &APIError{Source: s.name, StatusCode: resp.StatusCode, Message: msg, Endpoint: path}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode: %w", s.name, err)
	}
	return nil
}

// trimToWindow keeps bars within `days` calendar days of the newest bar.
func trimToWindow(bars []model.OHLCV, days int) []model.OHLCV {
	if len(bars) == 0 || days <= 0 {
		return bars
	}
	cutoff := bars[len(bars)-1].Time.AddDate(0, 0, -days)
	for i, b := range bars {
		if b.Time.After(cutoff) {
			return bars[i:]
		}
	}
	return bars[len(bars)-1:]
}
