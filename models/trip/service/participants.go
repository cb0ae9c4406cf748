package service

import (
	"context"
	"strings"

	"github.com/tripweave/tripweave-backend/models/trip/validation"
	"github.com/tripweave/tripweave-backend/types"
)

// AddParticipant accepts an email or short user id not already on the trip.
func (e *Engine) AddParticipant(ctx context.Context, trip *types.Trip, id string) (*types.Trip, error) {
	id = strings.TrimSpace(id)
	return e.mutate(ctx, trip, "add_participant", "Added "+id, func(next *types.Trip) (bool, string) {
		if err := validation.ValidateParticipantID(id); err != nil {
			return false, err.Error()
		}
		if next.HasParticipant(id) {
			return false, "duplicate participant"
		}
		next.Participants = append(next.Participants, id)
		return true, ""
	})
}

// RemoveParticipant drops the participant at index along with their
// personal budget.
func (e *Engine) RemoveParticipant(ctx context.Context, trip *types.Trip, index int) (*types.Trip, error) {
	summary := "Removed participant"
	if trip != nil && index >= 0 && index < len(trip.Participants) {
		summary = "Removed " + trip.Participants[index]
	}
	return e.mutate(ctx, trip, "remove_participant", summary, func(next *types.Trip) (bool, string) {
		if index < 0 || index >= len(next.Participants) {
			return false, "participant index out of range"
		}
		removed := next.Participants[index]
		next.Participants = append(next.Participants[:index:index], next.Participants[index+1:]...)
		for key := range next.ParticipantBudgets {
			if strings.EqualFold(key, removed) {
				delete(next.ParticipantBudgets, key)
			}
		}
		return true, ""
	})
}
