package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATA_PROVIDER", "EODHD_API_KEY", "HTTPS_PROXY",
		"SQLITE_PATH", "SCAN_CRON", "SCAN_UNIVERSE", "RUN_ON_START", "LOG_LEVEL", "LOG_FORMAT", "HTTP_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderYahoo, cfg.DataSource.Provider)
	assert.Equal(t, 365, cfg.DataSource.LookbackDays)
	assert.Equal(t, 5, cfg.DataSource.RateLimit)
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, "0 30 18 * * 1-5", cfg.Scan.Cron)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, strategy.DefaultPolicy(), cfg.Policy)
	assert.Equal(t, calculator.DefaultParams(), cfg.Indicators)
	assert.Len(t, cfg.Universe, len(Nifty50))
	assert.Equal(t, "RELIANCE.NS", cfg.Universe[0])
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
universe: [tcs.ns, INFY.NS, " tcs.ns ", ""]
data_source:
  provider: MOCK
  lookback_days: 400
scan:
  concurrency: 2
policy:
  buy_at: 0.8
  technical:
    rsi_overbought_penalty: 0.5
indicators:
  sma_short: 20
cache:
  enabled: true
  ttl: 30m
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"TCS.NS", "INFY.NS"}, cfg.Universe)
	assert.Equal(t, ProviderMock, cfg.DataSource.Provider)
	assert.Equal(t, 400, cfg.DataSource.LookbackDays)
	assert.Equal(t, 2, cfg.Scan.Concurrency)
	assert.Equal(t, 0.8, cfg.Policy.BuyAt)
	assert.Equal(t, 0.45, cfg.Policy.HoldAt, "unset policy fields keep defaults")
	assert.Equal(t, 0.5, cfg.Policy.Technical.RSIOverboughtPenalty)
	assert.Equal(t, 70.0, cfg.Policy.Technical.RSIOverbought)
	assert.Equal(t, 20, cfg.Indicators.SMAShort)
	assert.Equal(t, 200, cfg.Indicators.SMALong)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "data_source:\n  provider: yahoo\n")
	t.Setenv("DATA_PROVIDER", "eodhd")
	t.Setenv("EODHD_API_KEY", "k")
	t.Setenv("SCAN_UNIVERSE", "sbin.ns, itc.ns,SBIN.NS")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "1")
	t.Setenv("RUN_ON_START", "true")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderEODHD, cfg.DataSource.Provider)
	assert.Equal(t, "k", cfg.DataSource.APIKey)
	assert.Equal(t, []string{"SBIN.NS", "ITC.NS"}, cfg.Universe)
	assert.Equal(t, "/tmp/x.db", cfg.Cache.SQLitePath)
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Scan.RunOnStart)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, "1", cfg.Telegram.ChatID)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "universe: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "data_source.provider"},
		{"eodhd without key", func(c *Config) { c.DataSource.Provider = ProviderEODHD }, "data_source.api_key"},
		{"short lookback", func(c *Config) { c.DataSource.LookbackDays = 10 }, "data_source.lookback_days"},
		{"zero concurrency", func(c *Config) { c.Scan.Concurrency = 0 }, "scan.concurrency"},
		{"empty universe", func(c *Config) { c.Universe = nil }, "universe"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
		{"bad policy", func(c *Config) { c.Policy.BuyAt = 0.3 }, "policy.hold_at"},
		{"bad indicators", func(c *Config) { c.Indicators.MACDFast = 30 }, "indicators"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr ValidationError
			var polErr strategy.ValidationError
			switch {
			case errors.As(err, &cfgErr):
				assert.Equal(t, tt.field, cfgErr.Field)
			case errors.As(err, &polErr):
				assert.Equal(t, tt.field, polErr.Field)
			default:
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
		})
	}
}
