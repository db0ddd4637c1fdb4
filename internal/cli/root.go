// Package cli provides the windmap command-line interface.
package cli

import (
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/i474232898/windmap/internal/config"
	"github.com/i474232898/windmap/internal/gfs"
	"github.com/i474232898/windmap/internal/store"
)

var (
	cfg         *config.AppConfig
	logger      *slog.Logger
	closeLogger = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "windmap",
	Short: "GFS wind map acquisition and query service",
	Long: `windmap keeps a local cache of NOAA GFS forecast grids converted to JSON.

It fetches every forecast offset of the latest published cycle on a fixed
interval, and serves the snapshot valid now (or a few hours ahead), falling
back to older cycles when the freshest data is not available yet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found or error loading it", "error", err)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger, closeLogger = config.SetupLogger(cfg.LogFile, cfg.SlogLevel())
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = closeLogger()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, fetchCmd, resolveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// pipeline wires the acquisition and query components from the loaded config.
type pipeline struct {
	orchestrator *gfs.Orchestrator
	resolver     *gfs.Resolver
}

func newPipeline(httpClient *http.Client) *pipeline {
	st := store.NewFileStore(cfg.GribDataDir, cfg.JSONDataDir)

	converter := gfs.NewConversionBridge(st, gfs.NewExecConverter(cfg.ConverterBin, cfg.ConvertTimeout), logger)
	downloader := gfs.NewDownloadBridge(httpClient, gfs.DownloadConfig{
		BaseURL:   cfg.NomadsBaseURL,
		Variables: cfg.Variables,
		Levels:    cfg.Levels,
	}, st, converter, logger)

	return &pipeline{
		orchestrator: gfs.NewOrchestrator(downloader, logger),
		resolver:     gfs.NewResolver(st, logger),
	}
}
