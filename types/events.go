package types

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventTypeTripCreated EventType = "TRIP_CREATED"
	EventTypeTripUpdated EventType = "TRIP_UPDATED"
	EventTypeTripDeleted EventType = "TRIP_DELETED"
)

// TripEvent announces a committed change to a trip snapshot.
type TripEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TripID    string    `json:"tripId"`
	Actor     string    `json:"actor"`
	Version   int64     `json:"version"`
	Summary   string    `json:"summary,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e TripEvent) Validate() error {
	if e.TripID == "" {
		return fmt.Errorf("event trip id is required")
	}
	switch e.Type {
	case EventTypeTripCreated, EventTypeTripUpdated, EventTypeTripDeleted:
		return nil
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}
