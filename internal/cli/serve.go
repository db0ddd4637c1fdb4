package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/windmap/internal/api/http"
	"github.com/i474232898/windmap/internal/route"
	"github.com/i474232898/windmap/internal/scheduler"
	"github.com/i474232898/windmap/internal/weather"
	"github.com/i474232898/windmap/internal/weather/providers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Shared HTTP client for outbound calls.
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

		p := newPipeline(httpClient)

		// OpenWeatherMap first when a key is configured, Open-Meteo as fallback.
		var provs []weather.Provider
		if cfg.OpenWeatherAPIKey != "" {
			provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
		}
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient))

		sched := scheduler.New(cfg.FetchInterval, p.orchestrator, logger)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		app := httpapi.NewApp(httpapi.Deps{
			Resolver: p.resolver,
			Wind:     weather.NewService(provs, logger),
			Routes:   route.NewService(cfg.RoutingDataFile, logger),
		})

		go func() {
			if err := app.Listen(":" + cfg.Port); err != nil {
				logger.Error("fiber server stopped", "error", err)
			}
		}()
		logger.Info("windmap listening", "port", cfg.Port, "interval", cfg.FetchInterval.String())

		// Wait for termination signal
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("error during shutdown", "error", err)
		}
		return nil
	},
}
