package geo

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ihirwe/event-locator/internal/observability"
)

// catalogCacheKey is the single well-known cache key for the catalog
// snapshot; the table is rebuilt wholesale on refresh, never mutated.
const catalogCacheKey = "geo_catalog"

// ErrEmptyCatalog is returned when even the static tier produced zero
// countries. That indicates a packaging defect (missing static dataset),
// not a transient provider fault, and is the only catalog error surfaced
// upward.
var ErrEmptyCatalog = errors.New("catalog is empty after exhausting all tiers")

// Catalog is the country → ordered-city-list reference table.
type Catalog struct {
	Countries       []string            `json:"countries"`
	CitiesByCountry map[string][]string `json:"cities_by_country"`
}

// BulkSource is the primary catalog provider: one call returning city lists
// for many countries at once.
type BulkSource interface {
	Countries(ctx context.Context) (map[string][]string, error)
}

// CitySource is the secondary catalog provider, queried one country code at
// a time.
type CitySource interface {
	CitiesForCountry(ctx context.Context, code string) ([]string, error)
}

// CatalogLoader populates the country/city reference table from a strict
// ordered fallback chain: cache, primary provider, secondary provider
// (per-country, concurrent), static dataset. Load never returns unusable
// data except for the packaging-defect case covered by ErrEmptyCatalog.
type CatalogLoader struct {
	cache     *Cache[string, Catalog]
	primary   BulkSource
	secondary CitySource
	countries []string // allow-list
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewCatalogLoader wires the loader. Either provider may be nil, which
// skips its tier.
func NewCatalogLoader(cache *Cache[string, Catalog], primary BulkSource, secondary CitySource, countries []string, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *CatalogLoader {
	return &CatalogLoader{
		cache:     cache,
		primary:   primary,
		secondary: secondary,
		countries: countries,
		ttl:       ttl,
		logger:    logger,
		metrics:   metrics,
	}
}

// Load returns the catalog, consulting tiers in order and short-circuiting
// on the first non-empty result. Whatever was obtained is cached with the
// configured TTL.
func (l *CatalogLoader) Load(ctx context.Context) (Catalog, error) {
	if cached, ok := l.cache.Get(catalogCacheKey); ok {
		l.metrics.CatalogLoads.WithLabelValues("cache", "hit").Inc()
		return cached, nil
	}
	l.metrics.CatalogLoads.WithLabelValues("cache", "empty").Inc()

	cat := l.loadFromPrimary(ctx)
	if len(cat.Countries) == 0 {
		cat = l.loadFromSecondary(ctx)
	}
	if len(cat.Countries) == 0 {
		cat = l.loadStatic()
	}
	if len(cat.Countries) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}

	l.cache.Set(catalogCacheKey, cat, l.ttl)
	return cat, nil
}

// Invalidate drops the cached snapshot so the next Load refreshes.
func (l *CatalogLoader) Invalidate() {
	l.cache.Invalidate(catalogCacheKey)
}

func (l *CatalogLoader) loadFromPrimary(ctx context.Context) Catalog {
	if l.primary == nil {
		return Catalog{}
	}

	all, err := l.primary.Countries(ctx)
	if err != nil {
		l.logger.Warn("primary catalog provider failed", "error", err)
		l.metrics.CatalogLoads.WithLabelValues("primary", "error").Inc()
		return Catalog{}
	}

	cat := Catalog{CitiesByCountry: make(map[string][]string)}
	for _, country := range l.countries {
		cities := cleanCities(all[country])
		if len(cities) == 0 {
			continue
		}
		cat.Countries = append(cat.Countries, country)
		cat.CitiesByCountry[country] = cities
	}
	sort.Strings(cat.Countries)

	if len(cat.Countries) == 0 {
		l.metrics.CatalogLoads.WithLabelValues("primary", "empty").Inc()
		return Catalog{}
	}
	l.metrics.CatalogLoads.WithLabelValues("primary", "hit").Inc()
	return cat
}

// loadFromSecondary queries the per-country-code provider, one request per
// allow-listed country, concurrently. Each country independently falls back
// to its static city list, so one country's remote failure never blocks the
// others.
func (l *CatalogLoader) loadFromSecondary(ctx context.Context) Catalog {
	if l.secondary == nil {
		return Catalog{}
	}

	cat := Catalog{CitiesByCountry: make(map[string][]string)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	failures := 0

	for _, country := range l.countries {
		code, ok := CountryCode(country)
		if !ok {
			l.logger.Warn("no country code for allow-listed country", "country", country)
			continue
		}

		wg.Add(1)
		go func(country, code string) {
			defer wg.Done()

			cities, err := l.secondary.CitiesForCountry(ctx, code)
			if err != nil || len(cities) == 0 {
				if err != nil {
					l.logger.Warn("secondary catalog fetch failed, using static cities",
						"country", country, "error", err)
				}
				cities = StaticCitiesFor(country)
				mu.Lock()
				failures++
				mu.Unlock()
			}

			cities = cleanCities(cities)
			if len(cities) == 0 {
				return
			}
			mu.Lock()
			cat.Countries = append(cat.Countries, country)
			cat.CitiesByCountry[country] = cities
			mu.Unlock()
		}(country, code)
	}
	wg.Wait()
	sort.Strings(cat.Countries)

	switch {
	case len(cat.Countries) == 0:
		l.metrics.CatalogLoads.WithLabelValues("secondary", "empty").Inc()
	case failures > 0:
		l.metrics.CatalogLoads.WithLabelValues("secondary", "error").Inc()
	default:
		l.metrics.CatalogLoads.WithLabelValues("secondary", "hit").Inc()
	}
	return cat
}

func (l *CatalogLoader) loadStatic() Catalog {
	cat := Catalog{CitiesByCountry: make(map[string][]string)}
	for _, country := range l.countries {
		cities := cleanCities(StaticCitiesFor(country))
		if len(cities) == 0 {
			continue
		}
		cat.Countries = append(cat.Countries, country)
		cat.CitiesByCountry[country] = cities
	}
	sort.Strings(cat.Countries)

	if len(cat.Countries) == 0 {
		l.metrics.CatalogLoads.WithLabelValues("static", "empty").Inc()
	} else {
		l.metrics.CatalogLoads.WithLabelValues("static", "hit").Inc()
	}
	return cat
}

// cleanCities trims entries, drops empties, deduplicates case-preservingly,
// and sorts.
func cleanCities(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
