package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/pkg/openmeteo"
	"github.com/tripweave/tripweave-backend/pkg/resilience"
	"github.com/tripweave/tripweave-backend/pkg/valueobjects"
	"github.com/tripweave/tripweave-backend/types"
)

const (
	ErrMsgMissingDates    = "Missing startISO/endISO"
	ErrMsgInvalidRange    = "Invalid date range"
	ErrMsgGeocodingFailed = "Geocoding failed"
	errMsgForecastPrefix  = "Forecast failed: "

	cacheKeyPrefix = "weather:"
)

// DefaultGeocodePolicy bounds each geocode candidate.
func DefaultGeocodePolicy() resilience.Policy {
	return resilience.Policy{
		Timeout:    7 * time.Second,
		MaxRetries: 1,
		Backoff:    resilience.LinearBackoff(250 * time.Millisecond),
	}
}

// DefaultForecastPolicy bounds the forecast fetch.
func DefaultForecastPolicy() resilience.Policy {
	return resilience.Policy{
		Timeout:    7 * time.Second,
		MaxRetries: 2,
		Backoff:    resilience.LinearBackoff(400 * time.Millisecond),
	}
}

// WeatherService resolves per-day forecasts for a destination and date range.
// It never fails outright: upstream problems are reported in the response's
// Error field with an empty ByDate.
type WeatherService struct {
	geocoder       Geocoder
	forecaster     Forecaster
	cache          ForecastCache
	places         PlaceTables
	geocodePolicy  resilience.Policy
	forecastPolicy resilience.Policy
	inflight       singleflight.Group
	metrics        *metrics
	log            *zap.SugaredLogger
}

type Option func(*WeatherService)

func WithCache(cache ForecastCache) Option {
	return func(s *WeatherService) {
		s.cache = cache
	}
}

func WithPlaceTables(tables PlaceTables) Option {
	return func(s *WeatherService) {
		s.places = tables
	}
}

func WithGeocodePolicy(p resilience.Policy) Option {
	return func(s *WeatherService) {
		s.geocodePolicy = p
	}
}

func WithForecastPolicy(p resilience.Policy) Option {
	return func(s *WeatherService) {
		s.forecastPolicy = p
	}
}

func NewWeatherService(geocoder Geocoder, forecaster Forecaster, opts ...Option) *WeatherService {
	s := &WeatherService{
		geocoder:       geocoder,
		forecaster:     forecaster,
		places:         DefaultPlaceTables(),
		geocodePolicy:  DefaultGeocodePolicy(),
		forecastPolicy: DefaultForecastPolicy(),
		metrics:        newMetrics(),
		log:            logger.GetLogger().Named("weather"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NewMemoryCache(DefaultCacheTTL, time.Now)
	}
	return s
}

// ResolveForecast returns the forecast for req. Identical concurrent misses
// share one upstream resolution.
func (s *WeatherService) ResolveForecast(ctx context.Context, req types.ForecastRequest) types.ForecastResponse {
	unit := normalizeUnit(req.Unit)

	startISO := strings.TrimSpace(req.StartISO)
	endISO := strings.TrimSpace(req.EndISO)
	if startISO == "" || endISO == "" {
		return failure(ErrMsgMissingDates, unit)
	}
	start, errStart := time.Parse(types.DateLayout, startISO)
	end, errEnd := time.Parse(types.DateLayout, endISO)
	if errStart != nil || errEnd != nil || end.Before(start) {
		return failure(ErrMsgInvalidRange, unit)
	}

	query := strings.TrimSpace(req.Query)
	coords := req.Coords
	if !valueobjects.ValidCoordinates(coords) {
		coords = nil
	}
	key, err := cacheKey(query, startISO, endISO, unit, coords)
	if err != nil {
		s.log.Errorw("Failed to build forecast cache key", "error", err)
		return failure(errMsgForecastPrefix+err.Error(), unit)
	}

	if payload, ok := s.cache.Get(ctx, key); ok {
		var cached types.ForecastResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			s.metrics.cacheResults.WithLabelValues("hit").Inc()
			cached.Cached = true
			return cached
		}
		s.log.Warnw("Discarding undecodable cached forecast", "key", key)
	}
	s.metrics.cacheResults.WithLabelValues("miss").Inc()

	// The shared resolution outlives any single caller; the policies bound it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := s.inflight.Do(key, func() (interface{}, error) {
		return s.resolve(shared, key, query, coords, startISO, endISO, unit), nil
	})
	return copyResponse(v.(types.ForecastResponse))
}

func (s *WeatherService) resolve(ctx context.Context, key, query string, coords *types.Coordinates, startISO, endISO, unit string) types.ForecastResponse {
	point := coords
	if point == nil {
		point = s.geocode(ctx, query)
	}
	if point == nil {
		return failure(ErrMsgGeocodingFailed, unit)
	}

	var days []openmeteo.DailyPoint
	err := s.forecastPolicy.Do(ctx, func(ctx context.Context) error {
		started := time.Now()
		defer func() {
			s.metrics.upstreamDuration.WithLabelValues("forecast").Observe(time.Since(started).Seconds())
		}()

		var err error
		days, err = s.forecaster.Daily(ctx, *point, startISO, endISO, unit)
		return classify(err)
	})
	if err != nil {
		s.log.Warnw("Forecast fetch failed", "lat", point.Lat, "lng", point.Lng, "error", err)
		return failure(errMsgForecastPrefix+err.Error(), unit)
	}

	resp := types.ForecastResponse{
		Coords: &types.Coordinates{Lat: point.Lat, Lng: point.Lng},
		ByDate: make(map[string]types.ForecastEntry, len(days)),
		Unit:   unit,
	}
	for _, day := range days {
		code := -1
		if day.Code != nil {
			code = *day.Code
		}
		cond := MapWeatherCode(code)
		resp.ByDate[day.Date] = types.ForecastEntry{
			DateISO: day.Date,
			Icon:    cond.Icon,
			Label:   cond.Label,
			TMax:    day.TMax,
			TMin:    day.TMin,
			Unit:    unit,
		}
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		s.log.Errorw("Failed to encode forecast for cache", "error", err)
		return resp
	}
	s.cache.Set(ctx, key, payload)
	return resp
}

// geocode walks the query candidates and returns the first match, or nil.
func (s *WeatherService) geocode(ctx context.Context, query string) *types.Coordinates {
	if query == "" {
		return nil
	}
	candidates := s.places.Candidates(query)
	if !containsString(candidates, query) {
		candidates = append(candidates, query)
	}

	for _, candidate := range candidates {
		var found *types.Coordinates
		err := s.geocodePolicy.Do(ctx, func(ctx context.Context) error {
			started := time.Now()
			defer func() {
				s.metrics.upstreamDuration.WithLabelValues("geocode").Observe(time.Since(started).Seconds())
			}()

			coords, err := s.geocoder.Geocode(ctx, candidate)
			if err != nil {
				return classify(err)
			}
			found = coords
			return nil
		})
		if err != nil {
			s.log.Warnw("Geocode candidate failed", "candidate", candidate, "error", err)
			continue
		}
		if found != nil {
			return found
		}
		s.log.Debugw("Geocode candidate missed", "candidate", candidate)
	}
	return nil
}

// classify stops retries for upstream answers that will not change.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) && !r.Retryable() {
		return resilience.Permanent(err)
	}
	return err
}

func normalizeUnit(unit string) string {
	if strings.EqualFold(strings.TrimSpace(unit), types.UnitFahrenheit) {
		return types.UnitFahrenheit
	}
	return types.UnitCelsius
}

func failure(msg, unit string) types.ForecastResponse {
	return types.ForecastResponse{
		ByDate: map[string]types.ForecastEntry{},
		Unit:   unit,
		Error:  msg,
	}
}

// cacheKey hashes every request field that changes the answer.
func cacheKey(query, startISO, endISO, unit string, coords *types.Coordinates) (string, error) {
	raw, err := json.Marshal(struct {
		Query    string             `json:"query"`
		StartISO string             `json:"startISO"`
		EndISO   string             `json:"endISO"`
		Unit     string             `json:"unit"`
		Coords   *types.Coordinates `json:"coords"`
	}{query, startISO, endISO, unit, coords})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}

func copyResponse(resp types.ForecastResponse) types.ForecastResponse {
	out := resp
	if resp.Coords != nil {
		c := *resp.Coords
		out.Coords = &c
	}
	out.ByDate = make(map[string]types.ForecastEntry, len(resp.ByDate))
	for k, v := range resp.ByDate {
		out.ByDate[k] = v
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
