// Package geonames implements the secondary catalog provider, queried one
// country code at a time.
package geonames

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// maxRows caps the number of place names fetched per country; the catalog
// is a selection prompt, not a gazetteer.
const maxRows = 15

// Client fetches populated-place names per country from a Geonames-style
// API.
type Client struct {
	baseURL    string
	username   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a per-country catalog client. The "demo" account is
// heavily throttled; callers should expect this tier to fail often under it.
func NewClient(baseURL, username string, timeout time.Duration, logger *slog.Logger) *Client {
	if username == "demo" {
		logger.Warn("using geonames demo account with limited requests")
	}
	return &Client{
		baseURL:    baseURL,
		username:   username,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CitiesForCountry returns up to maxRows populated-place names for the
// given ISO country code.
func (c *Client) CitiesForCountry(ctx context.Context, code string) ([]string, error) {
	params := url.Values{
		"country":      {code},
		"featureClass": {"P"},
		"maxRows":      {fmt.Sprint(maxRows)},
		"username":     {c.username},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/searchJSON?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request for %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geonames API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != nil {
		return nil, fmt.Errorf("geonames API error: %s", payload.Status.Message)
	}

	cities := make([]string, 0, len(payload.Geonames))
	for _, g := range payload.Geonames {
		if g.Name != "" {
			cities = append(cities, g.Name)
		}
	}
	return cities, nil
}

// Geonames API response types. Errors (rate limits included) arrive as a
// 200 with a status object.

type response struct {
	Geonames []place `json:"geonames"`
	Status   *status `json:"status"`
}

type place struct {
	Name string `json:"name"`
}

type status struct {
	Message string `json:"message"`
	Value   int    `json:"value"`
}
