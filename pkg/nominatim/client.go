// Package nominatim geocodes free-text place names against OpenStreetMap's
// Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tripweave/tripweave-backend/types"
)

const DefaultSearchURL = "https://nominatim.openstreetmap.org/search"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nominatim returned status %d", e.Code)
}

func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

type Client struct {
	searchURL  string
	userAgent  string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithSearchURL(u string) ClientOption {
	return func(c *Client) {
		c.searchURL = u
	}
}

// NewClient requires a User-Agent; Nominatim's usage policy rejects
// anonymous clients.
func NewClient(userAgent string, opts ...ClientOption) *Client {
	c := &Client{
		searchURL:  DefaultSearchURL,
		userAgent:  userAgent,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode returns nil, nil when nothing matches.
func (c *Client) Geocode(ctx context.Context, name string) (*types.Coordinates, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid nominatim latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid nominatim longitude %q: %w", results[0].Lon, err)
	}
	return &types.Coordinates{Lat: lat, Lng: lng}, nil
}
