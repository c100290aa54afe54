package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"MarketScreener/internal/collector"
	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"
	"MarketScreener/internal/report"
	"MarketScreener/internal/scheduler"

	"github.com/gorilla/mux"
)

// ScanService runs scans and holds the latest report. *scheduler.Scheduler satisfies it.
type ScanService interface {
	RunNow(ctx context.Context) (*model.ScanReport, error)
	Latest() *model.ScanReport
}

// Evaluator scores a single symbol on demand. *scanner.Scanner satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, symbol string) (*model.ScanResult, error)
}

// Server exposes scan results over HTTP.
type Server struct {
	scans  ScanService
	eval   Evaluator
	log    *logger.Logger
	router *mux.Router
}

// NewServer creates a Server with all routes registered.
func NewServer(scans ScanService, eval Evaluator, log *logger.Logger) *Server {
	s := &Server{scans: scans, eval: eval, log: log, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	// Full paths on the root router so a wrong method yields 405, not 404.
	s.router.HandleFunc("/api/scan", s.handleGetScan).Methods(http.MethodGet)
	s.router.HandleFunc("/api/scan", s.handleRunScan).Methods(http.MethodPost)
	s.router.HandleFunc("/api/scan.csv", s.handleScanCSV).Methods(http.MethodGet)
	s.router.HandleFunc("/api/symbols/{symbol}", s.handleSymbol).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("http request")
	})
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidParameter = "INVALID_PARAMETER"
	codeNotFound         = "NOT_FOUND"
	codeConflict         = "CONFLICT"
	codeExternalAPI      = "EXTERNAL_API_ERROR"
	codeInternal         = "INTERNAL_SERVER_ERROR"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("encode response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if latest := s.scans.Latest(); latest != nil {
		body["last_scan"] = latest.FinishedAt
	}
	s.writeJSON(w, http.StatusOK, body)
}

// view applies the label, min_score, q, sort and order query parameters to
// a copy of the report. The stored report is never modified.
func view(rep *model.ScanReport, q map[string][]string) (*model.ScanReport, error) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	var c report.Criteria
	labels, err := report.ParseLabels(get("label"))
	if err != nil {
		return nil, err
	}
	c.Labels = labels
	if v := get("min_score"); v != "" {
		minScore, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.New("min_score must be a number")
		}
		c.MinScore = minScore
	}
	c.Query = get("q")

	out := *rep
	out.Results = report.Filter(rep.Results, c)
	if key := get("sort"); key != "" {
		desc := !strings.EqualFold(get("order"), "asc")
		if err := report.Sort(out.Results, key, desc); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (s *Server) latestView(w http.ResponseWriter, r *http.Request) (*model.ScanReport, bool) {
	latest := s.scans.Latest()
	if latest == nil {
		s.writeError(w, http.StatusNotFound, codeNotFound, "no scan has completed yet")
		return nil, false
	}
	v, err := view(latest, r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidParameter, err.Error())
		return nil, false
	}
	return v, true
}

// handleGetScan handles GET /api/scan
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	if v, ok := s.latestView(w, r); ok {
		s.writeJSON(w, http.StatusOK, v)
	}
}

// handleRunScan handles POST /api/scan
func (s *Server) handleRunScan(w http.ResponseWriter, r *http.Request) {
	rep, err := s.scans.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrScanInProgress) {
			s.writeError(w, http.StatusConflict, codeConflict, err.Error())
			return
		}
		s.log.WithError(err).Error("scan request failed")
		s.writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// handleScanCSV handles GET /api/scan.csv
func (s *Server) handleScanCSV(w http.ResponseWriter, r *http.Request) {
	v, ok := s.latestView(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="scan.csv"`)
	if err := report.WriteCSV(w, v.Results); err != nil {
		s.log.WithError(err).Error("write csv failed")
	}
}

// handleSymbol handles GET /api/symbols/{symbol}
func (s *Server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))
	res, err := s.eval.Evaluate(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, collector.ErrNoPriceData) {
			s.writeError(w, http.StatusNotFound, codeNotFound, err.Error())
			return
		}
		s.log.WithError(err).WithField("symbol", symbol).Warn("symbol evaluation failed")
		s.writeError(w, http.StatusBadGateway, codeExternalAPI, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// Serve runs an http.Server on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
