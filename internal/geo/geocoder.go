package geo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/ihirwe/event-locator/internal/observability"
)

// ForwardGeocoder is a remote provider resolving free text to a coordinate.
// ok is false when the provider answered well-formed but found nothing.
type ForwardGeocoder interface {
	ForwardGeocode(ctx context.Context, query string) (coord domain.Coordinate, ok bool, err error)
}

// tierState distinguishes "found", "no data", and "provider errored" so
// callers and tests never have to infer the difference from logs.
type tierState int

const (
	tierHit tierState = iota
	tierEmpty
	tierFailure
)

// tierResult is the outcome of one resolution tier.
type tierResult struct {
	coord domain.Coordinate
	state tierState
	err   error
}

// tier is one strategy in the ordered resolution chain.
type tier interface {
	name() string
	resolve(ctx context.Context, query string) tierResult
}

// Resolver forward-resolves a free-text location to a coordinate. It never
// fails: tiers are tried in order and the configured default anchor is
// returned when all of them miss, so callers (event creation, radius
// search) always receive a usable value.
type Resolver struct {
	tiers    []tier
	fallback domain.Coordinate
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResolver builds the standard chain: curated local table, then the
// remote forward provider (skipped when remote is nil), then the default.
func NewResolver(remote ForwardGeocoder, fallback domain.Coordinate, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	tiers := []tier{localTable{}}
	if remote != nil {
		tiers = append(tiers, remoteTier{provider: remote})
	}
	return &Resolver{
		tiers:    tiers,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns the coordinate for locationText, degrading through tiers.
// Results outside WGS-84 bounds are rejected and the chain continues, so the
// returned coordinate is always valid.
func (r *Resolver) Resolve(ctx context.Context, locationText string) domain.Coordinate {
	query := strings.ToLower(strings.TrimSpace(locationText))

	for _, t := range r.tiers {
		res := t.resolve(ctx, query)
		switch res.state {
		case tierHit:
			if !res.coord.Valid() {
				r.logger.Warn("geocode result out of bounds, discarding",
					"tier", t.name(), "lon", res.coord.Lon, "lat", res.coord.Lat)
				r.metrics.GeocodeResolutions.WithLabelValues(t.name(), "error").Inc()
				continue
			}
			r.metrics.GeocodeResolutions.WithLabelValues(t.name(), "hit").Inc()
			return res.coord
		case tierEmpty:
			r.metrics.GeocodeResolutions.WithLabelValues(t.name(), "empty").Inc()
		case tierFailure:
			r.logger.Warn("geocode tier failed",
				"tier", t.name(), "location", locationText, "error", res.err)
			r.metrics.GeocodeResolutions.WithLabelValues(t.name(), "error").Inc()
		}
	}

	r.logger.Info("geocode falling back to default coordinate", "location", locationText)
	r.metrics.GeocodeResolutions.WithLabelValues("default", "hit").Inc()
	return r.fallback
}

// localTable matches against the curated regional city table. The full
// normalized query is tried first, then each comma-separated component, so
// "Kigali Convention Centre, Kigali, Rwanda" still hits "kigali" without a
// network round-trip.
type localTable struct{}

func (localTable) name() string { return "local" }

func (localTable) resolve(_ context.Context, query string) tierResult {
	if c, ok := localCities[query]; ok {
		return tierResult{coord: c, state: tierHit}
	}
	for _, part := range strings.Split(query, ",") {
		if c, ok := localCities[strings.TrimSpace(part)]; ok {
			return tierResult{coord: c, state: tierHit}
		}
	}
	return tierResult{state: tierEmpty}
}

// remoteTier delegates to the forward geocoding provider.
type remoteTier struct {
	provider ForwardGeocoder
}

func (remoteTier) name() string { return "remote" }

func (t remoteTier) resolve(ctx context.Context, query string) tierResult {
	coord, ok, err := t.provider.ForwardGeocode(ctx, query)
	if err != nil {
		return tierResult{state: tierFailure, err: err}
	}
	if !ok {
		return tierResult{state: tierEmpty}
	}
	return tierResult{coord: coord, state: tierHit}
}
