// Package enrich runs the background sweep that attaches full postal
// addresses to events by reverse-geocoding their stored coordinates.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/ihirwe/event-locator/internal/observability"
	"github.com/ihirwe/event-locator/internal/store"
	"github.com/jonboulle/clockwork"
)

// ReverseGeocoder resolves a coordinate into a structured postal address.
// ok is false when the provider knows nothing about the location.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Address, bool, error)
}

// ErrSweepInProgress is returned by RunOnce when a sweep is already running.
var ErrSweepInProgress = errors.New("enrichment sweep already in progress")

// Scheduler periodically sweeps events that lack an enhanced location and
// reverse-geocodes them one at a time. A failed candidate is skipped and
// picked up again on the next sweep because it still has no address; an
// enriched event is never revisited.
type Scheduler struct {
	store    store.EventStore
	geocoder ReverseGeocoder
	clock    clockwork.Clock
	interval time.Duration
	delay    time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	running  atomic.Bool
	ready    atomic.Bool
}

func NewScheduler(
	st store.EventStore,
	geocoder ReverseGeocoder,
	clock clockwork.Clock,
	interval, delay time.Duration,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Scheduler {
	return &Scheduler{
		store:    st,
		geocoder: geocoder,
		clock:    clock,
		interval: interval,
		delay:    delay,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once at least one sweep has completed.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("enrichment sweep has not completed yet")
	}
	return nil
}

// Run sweeps immediately, then on every interval tick until the context is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("enrichment scheduler started", "interval", s.interval, "delay", s.delay)

	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("startup sweep failed", "error", err)
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("enrichment scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("scheduled sweep failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single sweep and returns the number of events enriched.
// Only one sweep runs at a time; concurrent calls get ErrSweepInProgress.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrSweepInProgress
	}
	defer s.running.Store(false)

	s.metrics.SweepRuns.Inc()
	s.metrics.SweepRunning.Set(1)
	defer s.metrics.SweepRunning.Set(0)
	start := s.clock.Now()
	defer func() {
		s.metrics.SweepDuration.Observe(s.clock.Since(start).Seconds())
	}()

	candidates, err := s.store.FindMany(ctx, store.Filter{Unenriched: true}, store.SortByStartTime)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		s.ready.Store(true)
		return 0, nil
	}

	s.logger.Info("enrichment sweep started", "candidates", len(candidates))

	enriched := 0
	for i, ev := range candidates {
		if err := ctx.Err(); err != nil {
			return enriched, err
		}
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return enriched, err
			}
		}

		if s.enrichOne(ctx, ev) {
			enriched++
		}
	}

	s.ready.Store(true)
	s.logger.Info("enrichment sweep finished", "enriched", enriched, "candidates", len(candidates))
	return enriched, nil
}

// enrichOne reverse-geocodes a single event and persists the result. A
// failure is logged and skipped so one bad candidate never stalls the sweep.
func (s *Scheduler) enrichOne(ctx context.Context, ev domain.Event) bool {
	addr, ok, err := s.geocoder.ReverseGeocode(ctx, ev.Location.Lat, ev.Location.Lon)
	if err != nil {
		s.logger.Warn("reverse geocode failed, skipping event", "event_id", ev.ID, "error", err)
		s.metrics.SweepFailures.Inc()
		return false
	}
	if !ok {
		s.logger.Warn("no address for coordinate, skipping event",
			"event_id", ev.ID, "lat", ev.Location.Lat, "lon", ev.Location.Lon)
		s.metrics.SweepFailures.Inc()
		return false
	}

	loc := buildEnhancedLocation(addr, ev)
	now := s.clock.Now().UTC()
	if err := s.store.UpdateOne(ctx, ev.ID, store.Fields{
		"enhanced_location": loc,
		"enriched_at":       now,
	}); err != nil {
		s.logger.Warn("persist enriched location failed, skipping event", "event_id", ev.ID, "error", err)
		s.metrics.SweepFailures.Inc()
		return false
	}

	s.metrics.SweepEnriched.Inc()
	return true
}

// pause waits the inter-call delay, respecting cancellation.
func (s *Scheduler) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(s.delay):
		return nil
	}
}

// buildEnhancedLocation maps the provider address onto the stored record,
// falling back to the event's own city and country when the provider left
// those fields empty.
func buildEnhancedLocation(addr domain.Address, ev domain.Event) domain.EnhancedLocation {
	loc := domain.EnhancedLocation{
		FormattedAddress: addr.DisplayName,
		Street:           addr.Road,
		HouseNumber:      addr.HouseNumber,
		Suburb:           addr.Suburb,
		City:             addr.City,
		County:           addr.County,
		State:            addr.State,
		Country:          addr.Country,
		Postcode:         addr.Postcode,
	}
	if loc.City == "" {
		loc.City = ev.City
	}
	if loc.Country == "" {
		loc.Country = ev.Country
	}
	return loc
}
