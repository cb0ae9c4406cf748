package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/types"
)

func init() {
	logger.IsTest = true
}

func TestGeocode(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("name")
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"latitude":30.26715,"longitude":-97.74306,"name":"Austin"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithGeocodeURL(srv.URL), WithHTTPClient(srv.Client()))
	coords, err := c.Geocode(context.Background(), "Austin, Texas")

	require.NoError(t, err)
	assert.Equal(t, "Austin, Texas", gotQuery)
	assert.Equal(t, &types.Coordinates{Lat: 30.26715, Lng: -97.74306}, coords)
}

func TestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generationtime_ms":0.5}`))
	}))
	defer srv.Close()

	coords, err := NewClient(WithGeocodeURL(srv.URL)).Geocode(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestGeocodeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(WithGeocodeURL(srv.URL)).Geocode(context.Background(), "Austin")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.True(t, statusErr.Retryable())
	assert.False(t, (&StatusError{Code: http.StatusBadRequest}).Retryable())
}

func TestDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "weathercode,temperature_2m_max,temperature_2m_min", q.Get("daily"))
		assert.Equal(t, "UTC", q.Get("timezone"))
		assert.Equal(t, "fahrenheit", q.Get("temperature_unit"))
		assert.Equal(t, "2025-06-01", q.Get("start_date"))
		assert.Equal(t, "2025-06-02", q.Get("end_date"))
		assert.Equal(t, "30.25", q.Get("latitude"))
		_, _ = w.Write([]byte(`{"daily":{
			"time":["2025-06-01","2025-06-02"],
			"weathercode":[61,null],
			"temperature_2m_max":[88.1,90.4],
			"temperature_2m_min":[71.2,null]}}`))
	}))
	defer srv.Close()

	c := NewClient(WithForecastURL(srv.URL))
	points, err := c.Daily(context.Background(), types.Coordinates{Lat: 30.25, Lng: -97.75}, "2025-06-01", "2025-06-02", "fahrenheit")
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2025-06-01", points[0].Date)
	require.NotNil(t, points[0].Code)
	assert.Equal(t, 61, *points[0].Code)
	assert.Equal(t, 88.1, *points[0].TMax)
	assert.Nil(t, points[1].Code)
	assert.Nil(t, points[1].TMin)
}

func TestDailyDefaultsToCelsius(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "celsius", r.URL.Query().Get("temperature_unit"))
		_, _ = w.Write([]byte(`{"daily":{"time":[]}}`))
	}))
	defer srv.Close()

	points, err := NewClient(WithForecastURL(srv.URL)).Daily(context.Background(), types.Coordinates{}, "2025-01-01", "2025-01-01", "kelvin")
	require.NoError(t, err)
	assert.Empty(t, points)
}
