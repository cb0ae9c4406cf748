package service

import (
	"context"
	"strings"

	"github.com/tripweave/tripweave-backend/types"
)

func dayInRange(trip *types.Trip, day int) bool {
	return day >= 0 && day < len(trip.Activities)
}

func (e *Engine) AddActivity(ctx context.Context, trip *types.Trip, day int, text string) (*types.Trip, error) {
	if trip != nil && !dayInRange(trip, day) {
		return nil, indexError("day")
	}
	text = strings.TrimSpace(text)
	return e.mutate(ctx, trip, "add_activity", "Added activity", func(next *types.Trip) (bool, string) {
		if text == "" {
			return false, "blank activity"
		}
		next.Activities[day] = append(next.Activities[day], text)
		return true, ""
	})
}

func (e *Engine) EditActivity(ctx context.Context, trip *types.Trip, day, index int, text string) (*types.Trip, error) {
	if trip != nil {
		if !dayInRange(trip, day) {
			return nil, indexError("day")
		}
		if index < 0 || index >= len(trip.Activities[day]) {
			return nil, indexError("activity")
		}
	}
	text = strings.TrimSpace(text)
	return e.mutate(ctx, trip, "edit_activity", "Edited activity", func(next *types.Trip) (bool, string) {
		if text == "" {
			return false, "blank activity"
		}
		if next.Activities[day][index] == text {
			return false, "activity unchanged"
		}
		next.Activities[day][index] = text
		return true, ""
	})
}

func (e *Engine) RemoveActivity(ctx context.Context, trip *types.Trip, day, index int) (*types.Trip, error) {
	if trip != nil {
		if !dayInRange(trip, day) {
			return nil, indexError("day")
		}
		if index < 0 || index >= len(trip.Activities[day]) {
			return nil, indexError("activity")
		}
	}
	return e.mutate(ctx, trip, "remove_activity", "Removed activity", func(next *types.Trip) (bool, string) {
		bucket := next.Activities[day]
		next.Activities[day] = append(bucket[:index:index], bucket[index+1:]...)
		return true, ""
	})
}

// MoveActivity moves the item at from to position to within one day. Any
// out-of-range position, including the day, leaves the trip unchanged.
func (e *Engine) MoveActivity(ctx context.Context, trip *types.Trip, day, from, to int) (*types.Trip, error) {
	return e.mutate(ctx, trip, "move_activity", "Reordered activities", func(next *types.Trip) (bool, string) {
		if !dayInRange(next, day) {
			return false, "day out of range"
		}
		bucket := next.Activities[day]
		if from < 0 || from >= len(bucket) || to < 0 || to >= len(bucket) {
			return false, "position out of range"
		}
		if from == to {
			return false, "same position"
		}
		item := bucket[from]
		rest := append(append([]string{}, bucket[:from]...), bucket[from+1:]...)
		moved := make([]string, 0, len(bucket))
		moved = append(moved, rest[:to]...)
		moved = append(moved, item)
		moved = append(moved, rest[to:]...)
		next.Activities[day] = moved
		return true, ""
	})
}
