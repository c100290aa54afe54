package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/scanner"
	"MarketScreener/internal/strategy"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Nifty50 is the default scan universe.
var Nifty50 = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "HDFC.NS", "INFY.NS", "ICICIBANK.NS", "KOTAKBANK.NS",
	"HINDUNILVR.NS", "SBIN.NS", "LT.NS", "AXISBANK.NS", "ITC.NS", "HCLTECH.NS", "BHARTIARTL.NS",
	"ASIANPAINT.NS", "MARUTI.NS", "SUNPHARMA.NS", "NESTLEIND.NS", "TITAN.NS", "ULTRACEMCO.NS",
	"POWERGRID.NS", "ONGC.NS", "NTPC.NS", "INDUSINDBK.NS", "BAJAJ-AUTO.NS", "BAJFINANCE.NS",
	"BRITANNIA.NS", "DIVISLAB.NS", "EICHERMOT.NS", "GRASIM.NS", "HDFCLIFE.NS", "IOC.NS", "JSWSTEEL.NS",
	"WIPRO.NS", "TATASTEEL.NS", "COALINDIA.NS", "SBILIFE.NS", "BPCL.NS", "ADANIENT.NS",
	"TECHM.NS", "M&M.NS", "CIPLA.NS", "HEROMOTOCO.NS", "INDIGO.NS", "SHREECEM.NS", "TATAMOTORS.NS",
	"UPL.NS", "HINDALCO.NS",
}

// Supported data providers.
const (
	ProviderYahoo = "yahoo"
	ProviderEODHD = "eodhd"
	ProviderMock  = "mock"
)

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Config holds all application configuration.
type Config struct {
	Universe   []string `yaml:"universe"`
	DataSource struct {
		Provider     string `yaml:"provider"`
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		RateLimit    int    `yaml:"rate_limit"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Scan struct {
		Cron        string `yaml:"cron"`
		Concurrency int    `yaml:"concurrency"`
		TopN        int    `yaml:"top_n"`
		RunOnStart  bool   `yaml:"run_on_start"`
	} `yaml:"scan"`
	Policy     strategy.Policy   `yaml:"policy"`
	Indicators calculator.Params `yaml:"indicators"`
	Telegram   struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Cache struct {
		Enabled    bool          `yaml:"enabled"`
		SQLitePath string        `yaml:"sqlite_path"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error; defaults fill whatever is left unset.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Policy:     strategy.DefaultPolicy(),
		Indicators: calculator.DefaultParams(),
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
		cfg.Cache.Enabled = true
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Scan.Cron = v
	}
	if v := os.Getenv("SCAN_UNIVERSE"); v != "" {
		cfg.Universe = strings.Split(v, ",")
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scan.RunOnStart = b
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

func applyDefaults(cfg *Config) {
	cfg.Universe = scanner.NormalizeUniverse(cfg.Universe)
	if len(cfg.Universe) == 0 {
		cfg.Universe = scanner.NormalizeUniverse(Nifty50)
	}
	cfg.DataSource.Provider = strings.ToLower(strings.TrimSpace(cfg.DataSource.Provider))
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderYahoo
	}
	if cfg.DataSource.RateLimit == 0 {
		cfg.DataSource.RateLimit = 5
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 365
	}
	if cfg.Scan.Cron == "" {
		// 18:30 on weekdays, after the NSE close
		cfg.Scan.Cron = "0 30 18 * * 1-5"
	}
	if cfg.Scan.Concurrency == 0 {
		cfg.Scan.Concurrency = 8
	}
	if cfg.Scan.TopN == 0 {
		cfg.Scan.TopN = 10
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/screener.db"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 12 * time.Hour
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderEODHD:
		if c.DataSource.APIKey == "" {
			return ValidationError{Field: "data_source.api_key", Message: "required for eodhd provider"}
		}
	default:
		return ValidationError{Field: "data_source.provider", Message: fmt.Sprintf("unknown provider %q", c.DataSource.Provider)}
	}
	if c.DataSource.RateLimit < 0 {
		return ValidationError{Field: "data_source.rate_limit", Message: "must not be negative"}
	}
	if c.DataSource.LookbackDays < 30 {
		return ValidationError{Field: "data_source.lookback_days", Message: "must be at least 30"}
	}
	if c.Scan.Concurrency < 1 {
		return ValidationError{Field: "scan.concurrency", Message: "must be positive"}
	}
	if c.Cache.TTL < 0 {
		return ValidationError{Field: "cache.ttl", Message: "must not be negative"}
	}
	if len(c.Universe) == 0 {
		return ValidationError{Field: "universe", Message: "at least one symbol is required"}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return ValidationError{Field: "telegram", Message: "bot_token and chat_id must be set together"}
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if err := c.Indicators.Validate(); err != nil {
		return ValidationError{Field: "indicators", Message: err.Error()}
	}
	return nil
}
