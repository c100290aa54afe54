package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MarketScreener/internal/logger"
	"MarketScreener/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	calls   int32
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeScanner) Scan(ctx context.Context, universe []string) (*model.ScanReport, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.ScanReport{
		Universe: len(universe),
		Source:   "fake",
		Results: []model.ScanResult{
			{Symbol: "TCS.NS", Price: 3800, FinalScore: 0.8, Recommendation: model.Buy, Confidence: model.Strong,
				Fund: model.Score{Points: 4, Max: 5}, Tech: model.Score{Points: 4, Max: 5}},
		},
		Skipped: []model.SkippedSymbol{{Symbol: "BAD.NS", Reason: "no price data"}},
	}, nil
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

func newTestScheduler(sc Scanner, n Sender) *Scheduler {
	return NewScheduler(context.Background(), sc, n, []string{"TCS.NS", "BAD.NS"}, 5, logger.Nop())
}

func TestRunNow_StoresLatest(t *testing.T) {
	s := newTestScheduler(&fakeScanner{}, nil)
	assert.Nil(t, s.Latest())

	report, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Universe)
	assert.Same(t, report, s.Latest())
}

func TestRunNow_ErrorKeepsPreviousReport(t *testing.T) {
	sc := &fakeScanner{}
	s := newTestScheduler(sc, nil)
	first, err := s.RunNow(context.Background())
	require.NoError(t, err)

	sc.err = errors.New("scan aborted: context canceled")
	_, err = s.RunNow(context.Background())
	require.Error(t, err)
	assert.Same(t, first, s.Latest())
	assert.Contains(t, s.HandleCommand(context.Background(), "/status"), "Last error: scan aborted")
}

func TestRunNow_RejectsConcurrentScan(t *testing.T) {
	sc := &fakeScanner{block: make(chan struct{}), started: make(chan struct{})}
	s := newTestScheduler(sc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background())
		done <- err
	}()
	<-sc.started

	_, err := s.RunNow(context.Background())
	require.ErrorIs(t, err, ErrScanInProgress)

	close(sc.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&sc.calls))
}

func TestScanTask_SendsSummary(t *testing.T) {
	sender := &fakeSender{}
	s := newTestScheduler(&fakeScanner{}, sender)
	s.scanTask()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "TCS.NS")
	assert.Contains(t, msgs[0], "Skipped 1: BAD.NS")
}

func TestScanTask_SendsFailure(t *testing.T) {
	sender := &fakeSender{}
	s := newTestScheduler(&fakeScanner{err: errors.New("boom")}, sender)
	s.scanTask()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Scan failed: boom")
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(&fakeScanner{}, nil)
	require.NoError(t, s.Register("0 30 18 * * 1-5"))
	require.Error(t, s.Register("not a cron"))

	s.Start()
	defer s.Stop()
	assert.Contains(t, s.HandleCommand(context.Background(), "/status"), "Next run:")
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	sc := &fakeScanner{}
	s := newTestScheduler(sc, nil)

	assert.Contains(t, s.HandleCommand(ctx, "/top"), "No scan has completed yet")
	assert.Contains(t, s.HandleCommand(ctx, "/status"), "Last scan: never")

	out := s.HandleCommand(ctx, "/scan")
	assert.Contains(t, out, "Buy: 1")
	assert.Equal(t, int32(1), atomic.LoadInt32(&sc.calls))

	assert.Contains(t, s.HandleCommand(ctx, "/top@screener_bot"), "TCS.NS")
	assert.Contains(t, s.HandleCommand(ctx, "/symbol tcs.ns"), "Buy (Strong)")
	assert.Contains(t, s.HandleCommand(ctx, "/symbol XYZ.NS"), "XYZ.NS is not in the latest scan")
	assert.Contains(t, s.HandleCommand(ctx, "/symbol"), "Usage")
	assert.Contains(t, s.HandleCommand(ctx, "/STATUS"), "1 evaluated, 1 skipped")

	for _, cmd := range []string{"", "hello", "/unknown"} {
		assert.Contains(t, s.HandleCommand(ctx, cmd), "Available commands")
	}
}

func TestStop_WaitsForRunningJob(t *testing.T) {
	s := newTestScheduler(&fakeScanner{}, nil)
	s.Start()
	start := time.Now()
	s.Stop()
	assert.Less(t, time.Since(start), 2*time.Second)
}
