package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave-backend/types"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestNormalizeSeedsActivities(t *testing.T) {
	trip := Normalize(types.TripRecord{Nights: intPtr(2)}, "ana@example.com", testNow)

	require.Len(t, trip.Activities, 3)
	for _, day := range trip.Activities {
		assert.NotEmpty(t, day)
	}
	assert.Equal(t, []string{"Arrive", "Check-in", "Dinner in town"}, trip.Activities[0])
	assert.Equal(t, []string{"Morning activity", "Explore", "Group dinner"}, trip.Activities[1])
	assert.Equal(t, []string{"Pack up", "Leisurely brunch", "Depart"}, trip.Activities[2])
}

func TestNormalizeDefaults(t *testing.T) {
	trip := Normalize(types.TripRecord{}, "ana@example.com", testNow)

	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, DefaultTitle, trip.Title)
	assert.Equal(t, "ana@example.com", trip.OwnerID)
	assert.Equal(t, DefaultNights, trip.Nights)
	assert.Len(t, trip.Activities, DefaultNights+1)
	assert.Equal(t, types.TransportFlights, trip.Transport)
	assert.Equal(t, types.VibeAdventure, trip.Vibe)
	assert.Equal(t, types.PartyGroup, trip.PartyType)
	assert.Equal(t, types.BudgetGroup, trip.BudgetModel)
	assert.Equal(t, "USD", trip.Budget.Currency)
	assert.Nil(t, trip.Budget.Estimated)
	assert.False(t, trip.Submitted)
	assert.Equal(t, testNow, trip.CreatedAt)

	assert.NotNil(t, trip.Participants)
	assert.NotNil(t, trip.ParticipantBudgets)
	assert.NotNil(t, trip.Expenses)
	assert.NotNil(t, trip.Chat)
	assert.NotNil(t, trip.Media)
	assert.NotNil(t, trip.Docs)
	assert.NotNil(t, trip.ChangeLog)
}

func TestNormalizeSingleDay(t *testing.T) {
	trip := Normalize(types.TripRecord{Nights: intPtr(0)}, "ana@example.com", testNow)
	require.Len(t, trip.Activities, 1)
	assert.Equal(t, arrivalBucket, trip.Activities[0])

	negative := Normalize(types.TripRecord{Nights: intPtr(-3)}, "ana@example.com", testNow)
	assert.Equal(t, 0, negative.Nights)
	assert.Len(t, negative.Activities, 1)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Coast", Normalize(types.TripRecord{Title: " Coast ", Name: "Old"}, "a", testNow).Title)
	assert.Equal(t, "Old", Normalize(types.TripRecord{Name: "Old"}, "a", testNow).Title)
	assert.Equal(t, DefaultTitle, Normalize(types.TripRecord{Title: "  "}, "a", testNow).Title)
}

func TestNormalizeDates(t *testing.T) {
	tests := []struct {
		name       string
		rec        types.TripRecord
		wantNights int
		wantStart  string
		wantEnd    string
	}{
		{
			name:       "both dates win over nights",
			rec:        types.TripRecord{StartDate: "2025-03-10", EndDate: "2025-03-13", Nights: intPtr(9)},
			wantNights: 3,
			wantStart:  "2025-03-10",
			wantEnd:    "2025-03-13",
		},
		{
			name:       "same day",
			rec:        types.TripRecord{StartDate: "2025-03-10", EndDate: "2025-03-10"},
			wantNights: 0,
			wantStart:  "2025-03-10",
			wantEnd:    "2025-03-10",
		},
		{
			name:       "start only derives end",
			rec:        types.TripRecord{StartDate: "2025-03-30", Nights: intPtr(3)},
			wantNights: 3,
			wantStart:  "2025-03-30",
			wantEnd:    "2025-04-02",
		},
		{
			name:       "end before start is rederived",
			rec:        types.TripRecord{StartDate: "2025-03-10", EndDate: "2025-03-01", Nights: intPtr(2)},
			wantNights: 2,
			wantStart:  "2025-03-10",
			wantEnd:    "2025-03-12",
		},
		{
			name:       "unparsable dates are dropped",
			rec:        types.TripRecord{StartDate: "10/03/2025", EndDate: "soon", Nights: intPtr(2)},
			wantNights: 2,
		},
		{
			name:       "end only is kept",
			rec:        types.TripRecord{EndDate: "2025-03-10", Nights: intPtr(2)},
			wantNights: 2,
			wantEnd:    "2025-03-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := Normalize(tt.rec, "ana@example.com", testNow)
			assert.Equal(t, tt.wantNights, trip.Nights)
			assert.Equal(t, tt.wantStart, trip.StartDate)
			assert.Equal(t, tt.wantEnd, trip.EndDate)
			assert.Len(t, trip.Activities, tt.wantNights+1)
		})
	}
}

func TestNormalizeEnumAliases(t *testing.T) {
	trip := Normalize(types.TripRecord{
		Transport:   "Own Vehicle",
		Vibe:        "Relaxation & Luxury",
		PartyType:   "GROUP",
		BudgetModel: "individual",
	}, "a", testNow)
	assert.Equal(t, types.TransportOwnVehicle, trip.Transport)
	assert.Equal(t, types.VibeRelaxation, trip.Vibe)
	assert.Equal(t, types.BudgetIndividual, trip.BudgetModel)

	assert.Equal(t, types.TransportRental, parseTransport("rental car"))
	assert.Equal(t, types.TransportOwnVehicle, parseTransport("vehicle"))
	assert.Equal(t, types.TransportFlights, parseTransport("hovercraft"))
	assert.Equal(t, types.VibeLocalAttractions, parseVibe("local attractions"))
	assert.Equal(t, types.VibeAdventure, parseVibe("party"))
	assert.Equal(t, types.PartyGroup, parsePartyType("couple"))
}

func TestNormalizeSoloForcesIndividual(t *testing.T) {
	trip := Normalize(types.TripRecord{PartyType: "solo", BudgetModel: "group"}, "a", testNow)
	assert.Equal(t, types.PartySolo, trip.PartyType)
	assert.Equal(t, types.BudgetIndividual, trip.BudgetModel)
}

func TestNormalizeResizesExistingActivities(t *testing.T) {
	existing := [][]string{{"Fly in"}, {"Hike"}, {"Museum"}, {"Fly out"}}

	shrunk := Normalize(types.TripRecord{Nights: intPtr(1), Activities: existing}, "a", testNow)
	assert.Equal(t, [][]string{{"Fly in"}, {"Hike"}}, shrunk.Activities)

	grown := Normalize(types.TripRecord{Nights: intPtr(5), Activities: existing}, "a", testNow)
	require.Len(t, grown.Activities, 6)
	assert.Equal(t, []string{"Fly out"}, grown.Activities[3])
	assert.Equal(t, defaultBucket, grown.Activities[4])
	assert.Equal(t, defaultBucket, grown.Activities[5], "padding never seeds the departure bucket")
}

func TestNormalizeParticipantsAndBudget(t *testing.T) {
	trip := Normalize(types.TripRecord{
		Participants:       []string{" ana@example.com", "", "ANA@example.com", "k7m2q9x", "  "},
		Budget:             &types.Budget{Currency: "eur", Estimated: floatPtr(-20)},
		ParticipantBudgets: map[string]float64{"k7m2q9x": -5, " ": 10},
	}, "a", testNow)

	assert.Equal(t, []string{"ana@example.com", "k7m2q9x"}, trip.Participants)
	assert.Equal(t, "EUR", trip.Budget.Currency)
	require.NotNil(t, trip.Budget.Estimated)
	assert.Equal(t, 0.0, *trip.Budget.Estimated)
	assert.Equal(t, map[string]float64{"k7m2q9x": 0}, trip.ParticipantBudgets)

	bad := Normalize(types.TripRecord{Budget: &types.Budget{Currency: "euro"}}, "a", testNow)
	assert.Equal(t, "USD", bad.Budget.Currency)
}

func TestNormalizeDropsInvalidCoordinates(t *testing.T) {
	trip := Normalize(types.TripRecord{
		OriginCoords:      &types.Coordinates{Lat: 120, Lng: 0},
		DestinationCoords: &types.Coordinates{Lat: 30.27, Lng: -97.74},
	}, "a", testNow)
	assert.Nil(t, trip.OriginCoords)
	require.NotNil(t, trip.DestinationCoords)
	assert.Equal(t, 30.27, trip.DestinationCoords.Lat)
}

func TestNormalizeChangeLogActorSwitch(t *testing.T) {
	log := []types.ChangeLogEntry{{ID: "1", Text: "Trip created", At: testNow, By: "ana@example.com"}}

	same := Normalize(types.TripRecord{LastWriter: "ana@example.com", ChangeLog: log}, "ANA@example.com", testNow)
	assert.Len(t, same.ChangeLog, 1)

	other := Normalize(types.TripRecord{LastWriter: "ana@example.com", ChangeLog: log}, "ben@example.com", testNow)
	assert.Empty(t, other.ChangeLog)
	assert.NotNil(t, other.ChangeLog)

	unknown := Normalize(types.TripRecord{ChangeLog: log}, "ben@example.com", testNow)
	assert.Len(t, unknown.ChangeLog, 1)
}

func TestNormalizeKeepsTimestampsAndVersion(t *testing.T) {
	created := testNow.Add(-48 * time.Hour)
	updated := testNow.Add(-time.Hour)
	trip := Normalize(types.TripRecord{
		Version:   7,
		CreatedAt: timePtr(created),
		UpdatedAt: timePtr(updated),
		Submitted: boolPtr(true),
	}, "a", testNow)
	assert.Equal(t, int64(7), trip.Version)
	assert.Equal(t, created, trip.CreatedAt)
	assert.Equal(t, updated, trip.UpdatedAt)
	assert.True(t, trip.Submitted)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first := Normalize(types.TripRecord{
		Title:        "Coast",
		Destination:  "Big Sur",
		StartDate:    "2025-06-01",
		EndDate:      "2025-06-04",
		Participants: []string{"ana@example.com"},
	}, "ana@example.com", testNow)
	second := Normalize(first.Record(), "ana@example.com", testNow)
	assert.Equal(t, first, second)
}
