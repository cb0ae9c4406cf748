// Package events announces committed trip changes to other instances.
package events

import (
	"context"

	"github.com/tripweave/tripweave-backend/types"
)

// Publisher delivers trip change events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event types.TripEvent) error
}

// NoopPublisher drops every event. Used when event fan-out is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, types.TripEvent) error { return nil }

// ChannelFor names the pub/sub channel carrying a trip's events.
func ChannelFor(tripID string) string {
	return "tripweave:trip-events:" + tripID
}
