package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ihirwe/event-locator/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
}

func TestForwardGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "Kigali Convention Centre, Kigali, Rwanda", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"-1.9546","lon":"30.0927","display_name":"Kigali Convention Centre"}]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	coord, ok, err := c.ForwardGeocode(context.Background(), "Kigali Convention Centre, Kigali, Rwanda")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 30.0927, coord.Lon)
	assert.Equal(t, -1.9546, coord.Lat)
}

func TestForwardGeocode_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, ok, err := c.ForwardGeocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestForwardGeocode_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"30.1"}]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, _, err := c.ForwardGeocode(context.Background(), "kigali")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse lat")
}

func TestForwardGeocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, _, err := c.ForwardGeocode(context.Background(), "kigali")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestForwardGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
	_, _, err := c.ForwardGeocode(context.Background(), "kigali")
	require.Error(t, err)
}

func TestReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "-1.9441", r.URL.Query().Get("lat"))
		assert.Equal(t, "30.0619", r.URL.Query().Get("lon"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"display_name": "KG 2 Roundabout, Kimihurura, Kigali, Rwanda",
			"address": {
				"road": "KG 2 Roundabout",
				"suburb": "Kimihurura",
				"city": "Kigali",
				"country": "Rwanda",
				"postcode": "0000"
			}
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	addr, ok, err := c.ReverseGeocode(context.Background(), -1.9441, 30.0619)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "KG 2 Roundabout, Kimihurura, Kigali, Rwanda", addr.DisplayName)
	assert.Equal(t, "KG 2 Roundabout", addr.Road)
	assert.Equal(t, "Kimihurura", addr.Suburb)
	assert.Equal(t, "Kigali", addr.City)
	assert.Equal(t, "Rwanda", addr.Country)
	assert.Equal(t, "0000", addr.Postcode)
}

func TestReverseGeocode_TownFallsBackToLocality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Musanze, Rwanda","address":{"town":"Musanze","country":"Rwanda"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	addr, ok, err := c.ReverseGeocode(context.Background(), -1.4998, 29.6342)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Musanze", addr.City)
}

func TestReverseGeocode_NothingFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, ok, err := c.ReverseGeocode(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
