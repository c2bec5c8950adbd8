// Package nominatim implements forward and reverse geocoding against a
// Nominatim-compatible HTTP API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/ihirwe/event-locator/internal/observability"
)

// userAgent identifies the service to the provider, per Nominatim usage
// policy.
const userAgent = "event-locator/1.0"

// Client calls the Nominatim search and reverse endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a geocoding client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// ForwardGeocode resolves a free-text location to a coordinate. ok is false
// when the provider returned a well-formed but empty result set.
func (c *Client) ForwardGeocode(ctx context.Context, query string) (domain.Coordinate, bool, error) {
	params := url.Values{
		"format": {"json"},
		"q":      {query},
		"limit":  {"1"},
	}

	start := time.Now()
	defer func() {
		c.metrics.GeocodeAPIDuration.WithLabelValues("forward").Observe(time.Since(start).Seconds())
	}()

	var results []searchResult
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return domain.Coordinate{}, false, err
	}
	if len(results) == 0 {
		return domain.Coordinate{}, false, nil
	}

	// Nominatim returns lon/lat as strings.
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("parse lon %q: %w", results[0].Lon, err)
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("parse lat %q: %w", results[0].Lat, err)
	}

	return domain.Coordinate{Lon: lon, Lat: lat}, true, nil
}

// ReverseGeocode resolves a coordinate to a structured address. ok is false
// when the provider found nothing at that location.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Address, bool, error) {
	params := url.Values{
		"format": {"json"},
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	start := time.Now()
	defer func() {
		c.metrics.GeocodeAPIDuration.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
	}()

	var result reverseResult
	if err := c.getJSON(ctx, c.baseURL+"/reverse?"+params.Encode(), &result); err != nil {
		return domain.Address{}, false, err
	}
	if result.DisplayName == "" {
		return domain.Address{}, false, nil
	}

	return domain.Address{
		DisplayName: result.DisplayName,
		Road:        result.Address.Road,
		HouseNumber: result.Address.HouseNumber,
		Suburb:      result.Address.Suburb,
		City:        result.Address.locality(),
		County:      result.Address.County,
		State:       result.Address.State,
		Country:     result.Address.Country,
		Postcode:    result.Address.Postcode,
	}, true, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Nominatim API response types.

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	DisplayName string         `json:"display_name"`
	Address     reverseAddress `json:"address"`
}

type reverseAddress struct {
	Road        string `json:"road"`
	HouseNumber string `json:"house_number"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	County      string `json:"county"`
	State       string `json:"state"`
	Country     string `json:"country"`
	Postcode    string `json:"postcode"`
}

// locality coalesces the mutually exclusive city/town/village fields.
func (a reverseAddress) locality() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	default:
		return a.Village
	}
}
