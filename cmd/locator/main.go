// Command locator runs the event location service: the REST API, the
// hourly enrichment sweep, and the due-status checker.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/ihirwe/event-locator/internal/adapter/countriesnow"
	"github.com/ihirwe/event-locator/internal/adapter/geonames"
	httpadapter "github.com/ihirwe/event-locator/internal/adapter/http"
	"github.com/ihirwe/event-locator/internal/adapter/nominatim"
	"github.com/ihirwe/event-locator/internal/config"
	"github.com/ihirwe/event-locator/internal/enrich"
	"github.com/ihirwe/event-locator/internal/geo"
	"github.com/ihirwe/event-locator/internal/notify"
	"github.com/ihirwe/event-locator/internal/observability"
	"github.com/ihirwe/event-locator/internal/service"
	"github.com/ihirwe/event-locator/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Datastore: Postgres when configured, in-memory demo mode otherwise.
	var st store.EventStore
	var closeStore func() error
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		st = pg
		closeStore = pg.Close
		logger.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	publisher, err := newPublisher(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("notification publisher setup failed", "error", err)
		os.Exit(1)
	}

	nominatimClient := nominatim.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeTimeout, logger, metrics)
	resolver := geo.NewResolver(nominatimClient, cfg.DefaultCoordinate, logger, metrics)

	catalog := geo.NewCatalogLoader(
		geo.NewCache[string, geo.Catalog](clock),
		countriesnow.NewClient(cfg.CatalogPrimaryURL, cfg.GeocodeTimeout, logger),
		geonames.NewClient(cfg.GeonamesBaseURL, cfg.GeonamesUsername, cfg.GeocodeTimeout, logger),
		cfg.CatalogCountries,
		cfg.CatalogTTL,
		logger,
		metrics,
	)

	svc := service.NewEventService(st, resolver, publisher, clock, logger)
	scheduler := enrich.NewScheduler(st, nominatimClient, clock, cfg.SweepInterval, cfg.SweepDelay, logger, metrics)
	dueChecker := service.NewDueChecker(st, publisher, clock, cfg.DueCheckInterval, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, catalog, scheduler, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	go func() {
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("enrichment scheduler error", "error", err)
		}
	}()
	go func() {
		if err := dueChecker.Run(ctx); err != nil {
			logger.Error("due checker error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("publisher close error", "error", err)
	}
	if closeStore != nil {
		if err := closeStore(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newPublisher picks the notification backend from NOTIFY_CHANNEL.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (notify.Publisher, error) {
	switch cfg.NotifyChannel {
	case config.NotifyKafka:
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaNotifyTopic)
		return notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaNotifyTopic, logger, metrics), nil
	case config.NotifyRedis:
		logger.Info("redis notifications enabled", "channel", cfg.RedisNotifyChannel)
		return notify.NewRedisPublisher(ctx, cfg.RedisURL, cfg.RedisNotifyChannel, logger, metrics)
	default:
		logger.Info("notifications disabled")
		return notify.NopPublisher{}, nil
	}
}
