package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tripweave/tripweave-backend/errors"
	tripservice "github.com/tripweave/tripweave-backend/models/trip/service"
	"github.com/tripweave/tripweave-backend/types"
)

func TestEditAndRemoveActivity(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)

	edited, err := f.engine.EditActivity(ctx, trip, 1, 0, "  Whale watching ")
	require.NoError(t, err)
	assert.Equal(t, "Whale watching", edited.Activities[1][0])

	removed, err := f.engine.RemoveActivity(ctx, edited, 1, 0)
	require.NoError(t, err)
	assert.Len(t, removed.Activities[1], len(edited.Activities[1])-1)
	assert.NotContains(t, removed.Activities[1], "Whale watching")
	assert.Equal(t, "Whale watching", edited.Activities[1][0], "earlier snapshot is untouched")
}

func TestActivityIndexErrors(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)
	days := len(trip.Activities)

	_, err := f.engine.AddActivity(ctx, trip, days, "Late")
	assert.ErrorIs(t, err, tripservice.ErrIndexOutOfRange)
	assert.Equal(t, 400, apperrors.StatusFor(err))

	_, err = f.engine.AddActivity(ctx, trip, -1, "Early")
	assert.ErrorIs(t, err, tripservice.ErrIndexOutOfRange)

	_, err = f.engine.EditActivity(ctx, trip, 0, 10, "Nope")
	assert.ErrorIs(t, err, tripservice.ErrIndexOutOfRange)

	_, err = f.engine.RemoveActivity(ctx, trip, 0, -1)
	assert.ErrorIs(t, err, tripservice.ErrIndexOutOfRange)

	_, err = f.engine.RemoveActivity(ctx, trip, days, 0)
	assert.ErrorIs(t, err, tripservice.ErrIndexOutOfRange)
}

func TestMoveActivity(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"to end", 1, 3, []string{"a", "c", "d", "b"}},
		{"to front", 2, 0, []string{"c", "a", "b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := actorCtx(ana)
			trip := tripservice.Normalize(types.TripRecord{
				ID:         "t1",
				Nights:     intPtr(1),
				Activities: [][]string{{"a", "b", "c", "d"}, {"x"}},
			}, ana, f.clock.Now())

			moved, err := f.engine.MoveActivity(ctx, trip, 0, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, moved.Activities[0])
			assert.Len(t, moved.Activities[0], 4, "moving never changes the bucket length")
			assert.Equal(t, []string{"a", "b", "c", "d"}, trip.Activities[0])
		})
	}
}

func TestActivitiesTrackDayCount(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)

	for _, nights := range []int{0, 1, 7, 2} {
		next, err := f.engine.UpdateMeta(ctx, trip, types.MetaUpdate{
			StartDate: strPtr("2025-06-01"),
			EndDate:   strPtr(""),
			Nights:    intPtr(nights),
		})
		require.NoError(t, err)
		assert.Equal(t, nights, next.Nights)
		assert.Len(t, next.Activities, nights+1)
		assert.Equal(t, types.DayCountFor(nights), next.DayCount())
		trip = next
	}
}

func TestParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)

	trip, err := f.engine.AddParticipant(ctx, trip, " ben@example.com ")
	require.NoError(t, err)
	trip, err = f.engine.AddParticipant(ctx, trip, "K7M2Q9X")
	require.NoError(t, err)
	assert.Equal(t, []string{ben, "K7M2Q9X"}, trip.Participants)

	dup, err := f.engine.AddParticipant(ctx, trip, "BEN@example.com")
	require.NoError(t, err)
	assert.Same(t, trip, dup)

	trip, err = f.engine.SetParticipantBudget(ctx, trip, ben, 300)
	require.NoError(t, err)
	trip, err = f.engine.SetParticipantBudget(ctx, trip, "K7M2Q9X", -40)
	require.NoError(t, err)
	assert.Equal(t, 0.0, trip.ParticipantBudgets["K7M2Q9X"])

	trip, err = f.engine.RemoveParticipant(ctx, trip, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"K7M2Q9X"}, trip.Participants)
	assert.NotContains(t, trip.ParticipantBudgets, ben)
	assert.Contains(t, trip.ParticipantBudgets, "K7M2Q9X")
	assert.Equal(t, "Removed "+ben, trip.ChangeLog[len(trip.ChangeLog)-1].Text)
}
