package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ihirwe/event-locator/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCountries = []string{"Rwanda", "Kenya"}

type stubBulk struct {
	data  map[string][]string
	err   error
	calls int
}

func (s *stubBulk) Countries(_ context.Context) (map[string][]string, error) {
	s.calls++
	return s.data, s.err
}

type stubCities struct {
	byCode map[string][]string
	err    error
	calls  int
}

func (s *stubCities) CitiesForCountry(_ context.Context, code string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.byCode[code], nil
}

func newLoader(clock clockwork.Clock, primary BulkSource, secondary CitySource) *CatalogLoader {
	return NewCatalogLoader(
		NewCache[string, Catalog](clock),
		primary,
		secondary,
		testCountries,
		24*time.Hour,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
}

func TestCatalogLoader_PrimaryTier(t *testing.T) {
	primary := &stubBulk{data: map[string][]string{
		"Rwanda": {"Kigali", " Butare ", "", "Kigali", "Gisenyi"},
		"Kenya":  {"Nairobi", "Mombasa"},
		"France": {"Paris"}, // outside the allow-list, must be dropped
	}}
	l := newLoader(clockwork.NewFakeClock(), primary, &stubCities{})

	cat, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Kenya", "Rwanda"}, cat.Countries)
	assert.Equal(t, []string{"Butare", "Gisenyi", "Kigali"}, cat.CitiesByCountry["Rwanda"],
		"cities are trimmed, deduplicated, and sorted")
	assert.NotContains(t, cat.CitiesByCountry, "France")
}

func TestCatalogLoader_CacheShortCircuits(t *testing.T) {
	primary := &stubBulk{data: map[string][]string{"Rwanda": {"Kigali"}}}
	l := newLoader(clockwork.NewFakeClock(), primary, &stubCities{})

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	_, err = l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls, "second load must come from cache")
}

func TestCatalogLoader_CacheExpiryRefreshes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	primary := &stubBulk{data: map[string][]string{"Rwanda": {"Kigali"}}}
	l := newLoader(clock, primary, &stubCities{})

	_, err := l.Load(context.Background())
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	_, err = l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, primary.calls)
}

func TestCatalogLoader_SecondaryTierWhenPrimaryFails(t *testing.T) {
	primary := &stubBulk{err: errors.New("rate limited")}
	secondary := &stubCities{byCode: map[string][]string{
		"RW": {"Kigali", "Musanze"},
		"KE": {"Nairobi"},
	}}
	l := newLoader(clockwork.NewFakeClock(), primary, secondary)

	cat, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Kenya", "Rwanda"}, cat.Countries)
	assert.Equal(t, []string{"Kigali", "Musanze"}, cat.CitiesByCountry["Rwanda"])
	assert.Equal(t, 2, secondary.calls, "one request per allow-listed country")
}

func TestCatalogLoader_PerCountryStaticFallback(t *testing.T) {
	// Kenya resolves remotely; Rwanda's fetch returns nothing and falls
	// back to the shipped list without blocking Kenya.
	primary := &stubBulk{err: errors.New("down")}
	secondary := &stubCities{byCode: map[string][]string{"KE": {"Nairobi"}}}
	l := newLoader(clockwork.NewFakeClock(), primary, secondary)

	cat, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Nairobi"}, cat.CitiesByCountry["Kenya"])
	assert.Equal(t, StaticCitiesFor("Rwanda"), cat.CitiesByCountry["Rwanda"])
}

func TestCatalogLoader_StaticTierWhenBothProvidersUnavailable(t *testing.T) {
	l := newLoader(clockwork.NewFakeClock(), nil, nil)

	cat, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, cat.Countries, "load must always return a non-empty country list")
	for _, country := range cat.Countries {
		assert.NotEmpty(t, cat.CitiesByCountry[country])
	}
}

func TestCatalogLoader_NeverEmptyWhenProvidersFail(t *testing.T) {
	primary := &stubBulk{err: errors.New("timeout")}
	secondary := &stubCities{err: errors.New("throttled")}
	l := newLoader(clockwork.NewFakeClock(), primary, secondary)

	cat, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Countries)
}

func TestCatalogLoader_EmptyOnlyWithoutStaticData(t *testing.T) {
	// An allow-list of countries outside the shipped dataset is the one
	// configuration where Load can legitimately fail.
	l := NewCatalogLoader(
		NewCache[string, Catalog](clockwork.NewFakeClock()),
		nil, nil,
		[]string{"Atlantis"},
		time.Hour,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)

	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}
