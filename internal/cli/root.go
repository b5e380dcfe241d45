// Package cli implements the dirsync command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raoulx24/dirsync/internal/config"
	"github.com/raoulx24/dirsync/internal/logging"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:           "dirsync",
	Short:         "Replicate directory trees between filesystems",
	Long:          `dirsync mirrors the directory structure of a source location onto a target location, retrying failed creates and carrying erasure-coding policies across.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("dirsync failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd, serveCmd, mkdirCmd)
}

// loadConfig reads .env and the config file, then installs the configured logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config %s: %w", cfgPath, err)
	}

	return cfg, newLogger(cfg.Logging), nil
}

func newLogger(lc config.LoggingConfig) *slog.Logger {
	opts := logging.Options{Level: lc.Level, Format: lc.Format}
	if isDebug {
		opts.Level = "debug"
	}
	log := logging.New(opts, os.Stderr)
	slog.SetDefault(log)
	return log
}
