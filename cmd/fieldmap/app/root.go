// Package app provides the fieldmap CLI commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/meshwatch/fieldmap/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string

	config   *Config
	samples  *store.Store
	logger   *slog.Logger
	logLevel *slog.LevelVar
)

var rootCmd = &cobra.Command{
	Use:   "fieldmap",
	Short: "Local store for geotagged radio coverage samples",
	Long: `Fieldmap manages the local database of geotagged radio measurements
collected during coverage survey drives.

Examples:
  fieldmap stats                          # Show sample counts and database size
  fieldmap export -o samples.json         # Export every sample as JSON
  fieldmap export --format csv            # Export as CSV to stdout
  fieldmap import samples.json            # Re-ingest a previous export
  fieldmap prune --max-age 720h           # Remove samples older than 30 days
  fieldmap prune --watch                  # Keep pruning on the cron schedule
  fieldmap wipe --yes                     # Delete every stored sample`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI with the process-wide logger. The log level variable
// is adjusted once the configuration is loaded.
func Execute(ctx context.Context, log *slog.Logger, level *slog.LevelVar) error {
	logger = log
	logLevel = level

	defer func() {
		if samples != nil {
			if err := samples.Close(); err != nil {
				logger.Warn("closing sample store", slog.Any("error", err))
			}
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(wipeCmd)
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	if config, err = LoadConfig(configPath); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	var level slog.Level
	if err = level.UnmarshalText([]byte(config.Settings.LogLevel)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logLevel.Set(level)

	samples = store.New(config.Storage.DataDirectory)
	return nil
}
