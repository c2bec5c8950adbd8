// Package config loads service settings from environment variables,
// applying defaults and validating the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ihirwe/event-locator/internal/domain"
)

// Notification channel selectors.
const (
	NotifyKafka = "kafka"
	NotifyRedis = "redis"
	NotifyNone  = "none"
)

// defaultCountries is the allow-listed country set the catalog is built for.
var defaultCountries = []string{
	"Rwanda", "Kenya", "Uganda", "Tanzania", "Burundi",
	"Democratic Republic of the Congo",
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DatabaseURL selects the Postgres datastore; when empty the service
	// falls back to the in-memory store (demo mode).
	DatabaseURL string

	// Notification channel: kafka, redis, or none.
	NotifyChannel      string
	KafkaBrokers       []string
	KafkaNotifyTopic   string
	RedisURL           string
	RedisNotifyChannel string

	// Geocoding provider (Nominatim-compatible).
	GeocodeBaseURL string
	GeocodeTimeout time.Duration

	// Catalog providers and refresh policy.
	CatalogPrimaryURL string
	GeonamesBaseURL   string
	GeonamesUsername  string
	CatalogTTL        time.Duration
	CatalogCountries  []string

	// Enrichment sweep and due check.
	SweepInterval    time.Duration
	SweepDelay       time.Duration
	DueCheckInterval time.Duration

	// DefaultCoordinate is the home-region anchor returned when every
	// geocoding tier fails.
	DefaultCoordinate domain.Coordinate
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	catalogTTL, err := parseDuration("CATALOG_TTL", "24h")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := parseDuration("SWEEP_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	sweepDelay, err := parseNonNegativeDuration("SWEEP_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	dueCheckInterval, err := parseDuration("DUE_CHECK_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	defaultLon, err := parseFloat("DEFAULT_LON", "30.0619")
	if err != nil {
		return nil, err
	}
	defaultLat, err := parseFloat("DEFAULT_LAT", "-1.9441")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		NotifyChannel:      envOrDefault("NOTIFY_CHANNEL", NotifyNone),
		KafkaBrokers:       parseList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaNotifyTopic:   envOrDefault("KAFKA_NOTIFY_TOPIC", "event-notifications"),
		RedisURL:           envOrDefault("REDIS_URL", "redis://localhost:6379"),
		RedisNotifyChannel: envOrDefault("REDIS_NOTIFY_CHANNEL", "event_notifications"),

		GeocodeBaseURL: envOrDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeTimeout: geocodeTimeout,

		CatalogPrimaryURL: envOrDefault("CATALOG_PRIMARY_URL", "https://countriesnow.space/api/v0.1"),
		GeonamesBaseURL:   envOrDefault("GEONAMES_BASE_URL", "http://api.geonames.org"),
		GeonamesUsername:  envOrDefault("GEONAMES_USERNAME", "demo"),
		CatalogTTL:        catalogTTL,
		CatalogCountries:  parseCountries(),

		SweepInterval:    sweepInterval,
		SweepDelay:       sweepDelay,
		DueCheckInterval: dueCheckInterval,

		DefaultCoordinate: domain.Coordinate{Lon: defaultLon, Lat: defaultLat},
	}

	switch cfg.NotifyChannel {
	case NotifyKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("NOTIFY_CHANNEL is kafka but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaNotifyTopic == "" {
			return nil, errors.New("NOTIFY_CHANNEL is kafka but KAFKA_NOTIFY_TOPIC is empty")
		}
	case NotifyRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("NOTIFY_CHANNEL is redis but REDIS_URL is empty")
		}
	case NotifyNone:
	default:
		return nil, fmt.Errorf("invalid NOTIFY_CHANNEL %q (want kafka, redis, or none)", cfg.NotifyChannel)
	}

	if !cfg.DefaultCoordinate.Valid() {
		return nil, errors.New("DEFAULT_LON/DEFAULT_LAT out of WGS-84 bounds")
	}
	if len(cfg.CatalogCountries) == 0 {
		return nil, errors.New("CATALOG_COUNTRIES must list at least one country")
	}

	return cfg, nil
}

// LoggingLevel implements observability.LoggerSettings.
func (c *Config) LoggingLevel() string { return c.LogLevel }

// LoggingFormat implements observability.LoggerSettings.
func (c *Config) LoggingFormat() string { return c.LogFormat }

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCountries() []string {
	if v := os.Getenv("CATALOG_COUNTRIES"); v != "" {
		return parseList(v)
	}
	return defaultCountries
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: want a positive duration", key)
	}
	return d, nil
}

// parseNonNegativeDuration allows zero, used for the sweep inter-call delay
// which may be disabled in tests and air-gapped deployments.
func parseNonNegativeDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: want a non-negative duration", key)
	}
	return d, nil
}

func parseFloat(key, fallback string) (float64, error) {
	f, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
