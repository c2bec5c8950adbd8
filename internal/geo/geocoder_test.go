package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/ihirwe/event-locator/internal/observability"
	"github.com/stretchr/testify/assert"
)

var kigali = domain.Coordinate{Lon: 30.0619, Lat: -1.9441}

type stubForward struct {
	coord domain.Coordinate
	ok    bool
	err   error
	calls int
}

func (s *stubForward) ForwardGeocode(_ context.Context, _ string) (domain.Coordinate, bool, error) {
	s.calls++
	return s.coord, s.ok, s.err
}

func testResolver(remote ForwardGeocoder) *Resolver {
	return NewResolver(remote,
		kigali,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
}

func TestResolver_LocalTableHit(t *testing.T) {
	remote := &stubForward{err: errors.New("network down")}
	r := testResolver(remote)

	got := r.Resolve(context.Background(), "Nairobi")

	assert.Equal(t, domain.Coordinate{Lon: 36.8219, Lat: -1.2921}, got)
	assert.Zero(t, remote.calls, "local hit must not reach the remote provider")
}

func TestResolver_LocalTableMatchesEmbeddedCity(t *testing.T) {
	// The full "venue, city, country" string contains a known city, so the
	// curated value wins even with no network at all.
	remote := &stubForward{err: errors.New("no network")}
	r := testResolver(remote)

	got := r.Resolve(context.Background(), "Kigali Convention Centre, Kigali, Rwanda")

	assert.Equal(t, kigali, got)
	assert.Zero(t, remote.calls)
}

func TestResolver_LocalIsDeterministic(t *testing.T) {
	up := testResolver(&stubForward{coord: domain.Coordinate{Lon: 1, Lat: 1}, ok: true})
	down := testResolver(&stubForward{err: errors.New("timeout")})

	assert.Equal(t, up.Resolve(context.Background(), "  MOMBASA  "),
		down.Resolve(context.Background(), "mombasa"))
}

func TestResolver_RemoteTierUsed(t *testing.T) {
	want := domain.Coordinate{Lon: 2.3522, Lat: 48.8566}
	remote := &stubForward{coord: want, ok: true}
	r := testResolver(remote)

	got := r.Resolve(context.Background(), "Paris, France")

	assert.Equal(t, want, got)
	assert.Equal(t, 1, remote.calls)
}

func TestResolver_RemoteEmptyFallsBackToDefault(t *testing.T) {
	r := testResolver(&stubForward{ok: false})
	got := r.Resolve(context.Background(), "Nowhere Special")
	assert.Equal(t, kigali, got)
}

func TestResolver_RemoteErrorFallsBackToDefault(t *testing.T) {
	r := testResolver(&stubForward{err: errors.New("503")})
	got := r.Resolve(context.Background(), "Atlantis")
	assert.Equal(t, kigali, got)
}

func TestResolver_NilRemoteFallsBackToDefault(t *testing.T) {
	r := testResolver(nil)
	got := r.Resolve(context.Background(), "Unknown Town")
	assert.Equal(t, kigali, got)
}

func TestResolver_OutOfBoundsRemoteResultRejected(t *testing.T) {
	r := testResolver(&stubForward{coord: domain.Coordinate{Lon: 999, Lat: 12}, ok: true})
	got := r.Resolve(context.Background(), "Glitch City")
	assert.Equal(t, kigali, got)
	assert.True(t, got.Valid())
}

func TestResolver_AlwaysReturnsValidCoordinate(t *testing.T) {
	r := testResolver(&stubForward{err: errors.New("down")})
	for _, q := range []string{"", "kigali", "gulu", "somewhere over the rainbow"} {
		got := r.Resolve(context.Background(), q)
		assert.True(t, got.Valid(), "query %q", q)
	}
}
