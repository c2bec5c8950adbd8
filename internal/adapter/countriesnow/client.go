// Package countriesnow implements the primary catalog provider: a bulk
// listing of countries and their cities in a single request.
package countriesnow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client fetches the bulk country/city listing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a catalog client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Countries returns the provider's full country → city-list map. Filtering
// to the allow-list is the caller's concern.
func (c *Client) Countries(ctx context.Context) (map[string][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/countries", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("countries request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("countries API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Error {
		return nil, fmt.Errorf("countries API error: %s", payload.Msg)
	}

	out := make(map[string][]string, len(payload.Data))
	for _, entry := range payload.Data {
		out[entry.Country] = entry.Cities
	}
	return out, nil
}

// CountriesNow API response types.

type response struct {
	Error bool           `json:"error"`
	Msg   string         `json:"msg"`
	Data  []countryEntry `json:"data"`
}

type countryEntry struct {
	Country string   `json:"country"`
	Cities  []string `json:"cities"`
}
