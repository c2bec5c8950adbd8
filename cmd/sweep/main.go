// Command sweep runs a single enrichment pass and exits. Useful for
// backfills and for cron-style deployments that do not run the long-lived
// service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/ihirwe/event-locator/internal/adapter/nominatim"
	"github.com/ihirwe/event-locator/internal/config"
	"github.com/ihirwe/event-locator/internal/enrich"
	"github.com/ihirwe/event-locator/internal/observability"
	"github.com/ihirwe/event-locator/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required for a one-shot sweep")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	geocoder := nominatim.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeTimeout, logger, metrics)
	scheduler := enrich.NewScheduler(pg, geocoder, clock, cfg.SweepInterval, cfg.SweepDelay, logger, metrics)

	enriched, err := scheduler.RunOnce(ctx)
	if err != nil {
		logger.Error("sweep failed", "error", err, "enriched", enriched)
		os.Exit(1)
	}
	logger.Info("sweep complete", "enriched", enriched)
}
