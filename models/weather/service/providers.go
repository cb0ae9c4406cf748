package service

import (
	"context"
	"fmt"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/pkg/openmeteo"
	"github.com/tripweave/tripweave-backend/types"
)

// Geocoder resolves a place name. (nil, nil) means no match.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (*types.Coordinates, error)
}

// Forecaster returns daily forecast points for an inclusive date range.
type Forecaster interface {
	Daily(ctx context.Context, at types.Coordinates, start, end, unit string) ([]openmeteo.DailyPoint, error)
}

// NamedGeocoder labels a geocoder for logging.
type NamedGeocoder struct {
	Name     string
	Geocoder Geocoder
}

// ChainGeocoder asks each geocoder in turn and returns the first match.
// When nothing matches it returns the last error seen, if any.
type ChainGeocoder struct {
	links []NamedGeocoder
}

func NewChainGeocoder(links ...NamedGeocoder) *ChainGeocoder {
	return &ChainGeocoder{links: links}
}

func (c *ChainGeocoder) Geocode(ctx context.Context, name string) (*types.Coordinates, error) {
	log := logger.GetLogger()

	var lastErr error
	for i, link := range c.links {
		coords, err := link.Geocoder.Geocode(ctx, name)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", link.Name, err)
			if i < len(c.links)-1 {
				log.Warnw("Geocoder failed, falling back",
					"geocoder", link.Name,
					"query", name,
					"error", err)
			}
			continue
		}
		if coords != nil {
			log.Debugw("Geocoding successful", "geocoder", link.Name, "query", name, "lat", coords.Lat, "lng", coords.Lng)
			return coords, nil
		}
	}
	return nil, lastErr
}
