package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/logger"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
	deskAddr   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "symfx",
	Short: "SymFX - FX 딜링 데스크 게이트웨이",
	Long: `SymFX Desk CLI

트레이딩 백엔드의 주문 피드를 받아 데스크 화면(신규/이력 주문,
환율 수정, 테마, 레이아웃)을 제공하는 Go 게이트웨이.

Usage:
  go run ./cmd/symfx [command]

Examples:
  go run ./cmd/symfx serve
  go run ./cmd/symfx watch
  go run ./cmd/symfx edit D4F23E64 1.2500
  go run ./cmd/symfx theme toggle`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load before the environment (default .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&deskAddr, "addr", "http://localhost:8089", "running desk gateway, for client commands")
}

// loadConfig applies the global flags over config.Load
func loadConfig() (*config.Config, *logger.Logger, error) {
	if configFile != "" {
		if err := godotenv.Overload(configFile); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", configFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
