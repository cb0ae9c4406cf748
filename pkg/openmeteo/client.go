// Package openmeteo is a small client for the Open-Meteo geocoding and daily
// forecast APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/types"
)

const (
	DefaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("open-meteo %s returned status %d", e.Op, e.Code)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// DailyPoint is one day of forecast. Nil values mean the provider had no
// data for that day.
type DailyPoint struct {
	Date string
	Code *int
	TMax *float64
	TMin *float64
}

type Client struct {
	geocodeURL  string
	forecastURL string
	httpClient  *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithGeocodeURL(u string) ClientOption {
	return func(c *Client) {
		c.geocodeURL = u
	}
}

func WithForecastURL(u string) ClientOption {
	return func(c *Client) {
		c.forecastURL = u
	}
}

// NewClient has no client-level timeout; callers bound each call with a
// context deadline.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		geocodeURL:  DefaultGeocodeURL,
		forecastURL: DefaultForecastURL,
		httpClient:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode resolves a place name to its best match. A nil result with a nil
// error means the provider knows no such place.
func (c *Client) Geocode(ctx context.Context, name string) (*types.Coordinates, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var body struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "geocode", c.geocodeURL+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}
	if len(body.Results) == 0 {
		return nil, nil
	}
	return &types.Coordinates{Lat: body.Results[0].Latitude, Lng: body.Results[0].Longitude}, nil
}

// Daily fetches weather code and min/max temperature per day for the
// inclusive date range, in UTC.
func (c *Client) Daily(ctx context.Context, at types.Coordinates, start, end, unit string) ([]DailyPoint, error) {
	if unit != types.UnitFahrenheit {
		unit = types.UnitCelsius
	}
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	params.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min")
	params.Set("timezone", "UTC")
	params.Set("temperature_unit", unit)
	params.Set("start_date", start)
	params.Set("end_date", end)

	var body struct {
		Daily struct {
			Time        []string   `json:"time"`
			WeatherCode []*int     `json:"weathercode"`
			TempMax     []*float64 `json:"temperature_2m_max"`
			TempMin     []*float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := c.getJSON(ctx, "forecast", c.forecastURL+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	d := body.Daily
	points := make([]DailyPoint, 0, len(d.Time))
	for i, date := range d.Time {
		p := DailyPoint{Date: date}
		if i < len(d.WeatherCode) {
			p.Code = d.WeatherCode[i]
		}
		if i < len(d.TempMax) {
			p.TMax = d.TempMax[i]
		}
		if i < len(d.TempMin) {
			p.TMin = d.TempMin[i]
		}
		points = append(points, p)
	}
	return points, nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	logger.GetLogger().Debugw("Open-Meteo response",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
