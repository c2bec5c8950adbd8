package geonames

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, "tester", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCitiesForCountry_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searchJSON", r.URL.Path)
		assert.Equal(t, "RW", r.URL.Query().Get("country"))
		assert.Equal(t, "P", r.URL.Query().Get("featureClass"))
		assert.Equal(t, "15", r.URL.Query().Get("maxRows"))
		assert.Equal(t, "tester", r.URL.Query().Get("username"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"geonames":[{"name":"Kigali"},{"name":"Butare"},{"name":""}]}`))
	}))
	defer srv.Close()

	cities, err := testClient(srv.URL).CitiesForCountry(context.Background(), "RW")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kigali", "Butare"}, cities, "empty names are dropped")
}

func TestCitiesForCountry_RateLimitStatus(t *testing.T) {
	// Geonames reports throttling as a 200 with a status object.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"message":"the hourly limit has been exceeded","value":19}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CitiesForCountry(context.Background(), "KE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly limit")
}

func TestCitiesForCountry_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CitiesForCountry(context.Background(), "UG")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
