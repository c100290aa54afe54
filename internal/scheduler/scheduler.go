package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"
	"MarketScreener/internal/notifier"

	"github.com/robfig/cron/v3"
)

// ErrScanInProgress is returned when a scan is requested while one is running.
var ErrScanInProgress = errors.New("scan already in progress")

// Scanner runs one scan over the configured universe.
type Scanner interface {
	Scan(ctx context.Context, universe []string) (*model.ScanReport, error)
}

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the scan job on a cron schedule and keeps the latest report.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  Scanner
	Notifier Sender
	Universe []string
	TopN     int
	Ctx      context.Context

	log     *logger.Logger
	running sync.Mutex

	mu      sync.RWMutex
	latest  *model.ScanReport
	lastAt  time.Time
	lastErr error
}

// NewScheduler creates a new Scheduler. A nil notifier disables messages.
func NewScheduler(ctx context.Context, sc Scanner, n Sender, universe []string, topN int, log *logger.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Notifier: n,
		Universe: universe,
		TopN:     topN,
		Ctx:      ctx,
		log:      log,
	}
}

// Register adds the scan job on the given cron spec (with seconds).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// TriggerNow runs the scheduled job immediately, including its notification.
func (s *Scheduler) TriggerNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	report, err := s.RunNow(s.Ctx)
	if err != nil {
		if errors.Is(err, ErrScanInProgress) {
			s.log.Warn("scheduled scan skipped, previous scan still running")
			return
		}
		s.log.WithError(err).Error("scheduled scan failed")
		s.trySend(fmt.Sprintf("❌ Scan failed: %v", err))
		return
	}
	s.trySend(notifier.FormatScanReport(report, s.TopN))
}

// RunNow executes a scan immediately and stores the result as the latest report.
// Only one scan runs at a time.
func (s *Scheduler) RunNow(ctx context.Context) (*model.ScanReport, error) {
	if !s.running.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.running.Unlock()

	s.log.WithField("universe", len(s.Universe)).Info("running scan")
	report, err := s.Scanner.Scan(ctx, s.Universe)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAt = time.Now()
	s.lastErr = err
	if err != nil {
		return nil, err
	}
	s.latest = report
	return report, nil
}

// Latest returns the most recent successful report, or nil.
func (s *Scheduler) Latest() *model.ScanReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram group commands may carry a bot suffix: /top@screener_bot
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])

	switch cmd {
	case "/scan":
		report, err := s.RunNow(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Scan failed: %v", err)
		}
		return notifier.FormatScanReport(report, s.TopN)
	case "/top":
		report := s.Latest()
		if report == nil {
			return "No scan has completed yet. Send /scan to run one."
		}
		return notifier.FormatScanReport(report, s.TopN)
	case "/symbol":
		if len(fields) < 2 {
			return "Usage: /symbol TCS.NS"
		}
		res, ok := s.Latest().Find(fields[1])
		if !ok {
			return fmt.Sprintf("%s is not in the latest scan.", strings.ToUpper(fields[1]))
		}
		return notifier.FormatResult(res)
	case "/status":
		return s.status()
	default:
		return helpText
	}
}

const helpText = "Available commands:\n" +
	"• /scan - run a scan now\n" +
	"• /top - top candidates from the latest scan\n" +
	"• /symbol SYMBOL - score breakdown for one symbol\n" +
	"• /status - scheduler status"

func (s *Scheduler) status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Universe: %d symbols\n", len(s.Universe)))
	if s.lastAt.IsZero() {
		b.WriteString("Last scan: never\n")
	} else {
		b.WriteString(fmt.Sprintf("Last scan: %s\n", s.lastAt.Format("2006-01-02 15:04:05")))
	}
	if s.lastErr != nil {
		b.WriteString(fmt.Sprintf("Last error: %v\n", s.lastErr))
	}
	if s.latest != nil {
		b.WriteString(fmt.Sprintf("Latest report: %d evaluated, %d skipped\n", len(s.latest.Results), len(s.latest.Skipped)))
	}
	for _, e := range s.Cron.Entries() {
		if !e.Next.IsZero() {
			b.WriteString(fmt.Sprintf("Next run: %s\n", e.Next.Format("2006-01-02 15:04:05")))
		}
	}
	return b.String()
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.WithError(err).Error("send notification failed")
	}
}
