package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketScreener/internal/api"
	"MarketScreener/internal/scheduler"

	"github.com/spf13/cobra"
)

// Cache rows older than this are purged when the service starts.
const cacheRetentionDays = 30

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled scans, Telegram commands and the HTTP API",
	Long: `Run the long-lived service:
- scans the universe on the configured cron schedule
- answers Telegram commands (/scan, /top, /symbol, /status) when credentials are set
- serves the latest report over HTTP

Stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Info("MarketScreener starting")

	a := newApp(cfg, log)
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if n, err := a.store.Purge(ctx, cacheRetentionDays*24*time.Hour); err != nil {
		log.WithError(err).Warn("cache purge failed")
	} else if n > 0 {
		log.Infof("purged %d stale cache rows", n)
	}

	tn, sender := newTelegram(cfg, log)

	sched := scheduler.NewScheduler(ctx, a.scanner, sender, cfg.Universe, cfg.Scan.TopN, log)
	if err := sched.Register(cfg.Scan.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if cfg.Scan.RunOnStart {
		log.Info("run_on_start enabled, scanning now")
		go sched.TriggerNow()
	}

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- api.Serve(ctx, cfg.Server.Addr, api.NewServer(sched, a.scanner, log), log)
	}()

	log.Info("MarketScreener is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case err := <-srvErr:
		if err != nil {
			log.WithError(err).Error("http server failed")
		}
		return err
	}

	cancel()
	if err := <-srvErr; err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	log.Info("MarketScreener stopped")
	return nil
}
