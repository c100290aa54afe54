package commands

import (
	"os"

	"MarketScreener/internal/config"
	"MarketScreener/internal/logger"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

var (
	// Global flags
	configFile string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Equity scanner: fundamentals + technicals into Buy/Hold/Sell",
	Long: `MarketScreener scores every symbol of a universe on fundamentals
(valuation, leverage, profitability, revenue trend) and technicals
(trend, golden cross, RSI, MACD), then labels it Buy, Hold or Sell.

Examples:
  screener scan
  screener scan TCS.NS INFY.NS --label buy --sort final
  screener scan --csv out/scan.csv
  screener serve`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default configs/config.yaml, env CONFIG_PATH)")
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return defaultConfigPath
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath())
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	log = logger.New(logger.Options{Level: c.Log.Level, Format: c.Log.Format, Output: cmd.ErrOrStderr()})
	return nil
}
