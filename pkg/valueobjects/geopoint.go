// pkg/valueobjects/geopoint.go
package valueobjects

import (
	"fmt"
	"math"

	"github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/types"
)

// GeoPoint is a validated latitude/longitude pair.
type GeoPoint struct {
	latitude  float64
	longitude float64
}

func NewGeoPoint(lat, lng float64) (*GeoPoint, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return nil, errors.ValidationFailed("invalid coordinates", "coordinates must be numbers")
	}
	if lat < -90 || lat > 90 {
		return nil, errors.ValidationFailed(
			"invalid latitude",
			fmt.Sprintf("latitude %f is outside valid range [-90, 90]", lat),
		)
	}
	if lng < -180 || lng > 180 {
		return nil, errors.ValidationFailed(
			"invalid longitude",
			fmt.Sprintf("longitude %f is outside valid range [-180, 180]", lng),
		)
	}
	return &GeoPoint{latitude: lat, longitude: lng}, nil
}

func NewGeoPointFromCoordinates(coords *types.Coordinates) (*GeoPoint, error) {
	if coords == nil {
		return nil, errors.ValidationFailed("invalid coordinates", "coordinates cannot be nil")
	}
	return NewGeoPoint(coords.Lat, coords.Lng)
}

func (g GeoPoint) Latitude() float64 { return g.latitude }
func (g GeoPoint) Longitude() float64 { return g.longitude }

func (g GeoPoint) ToCoordinates() *types.Coordinates {
	return &types.Coordinates{Lat: g.latitude, Lng: g.longitude}
}

func (g GeoPoint) String() string {
	return fmt.Sprintf("(%f, %f)", g.latitude, g.longitude)
}

// ValidCoordinates reports whether c is non-nil and in range.
func ValidCoordinates(c *types.Coordinates) bool {
	_, err := NewGeoPointFromCoordinates(c)
	return err == nil
}
