package service_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave-backend/config"
	apperrors "github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/internal/events"
	"github.com/tripweave/tripweave-backend/logger"
	tripservice "github.com/tripweave/tripweave-backend/models/trip/service"
	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/store/memory"
	"github.com/tripweave/tripweave-backend/types"
)

func init() {
	logger.IsTest = true
}

const (
	ana = "ana@example.com"
	ben = "ben@example.com"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// Now advances by a second on every call so successive writes are ordered.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	engine    *tripservice.Engine
	trips     *memory.TripStore
	drafts    *memory.DraftStore
	remote    *memory.RemoteMetaStore
	publisher *events.MemoryPublisher
	clock     *fakeClock
}

func newFixture(t *testing.T, opts ...tripservice.Option) *fixture {
	t.Helper()
	f := &fixture{
		trips:     memory.NewTripStore(),
		drafts:    memory.NewDraftStore(),
		remote:    memory.NewRemoteMetaStore(),
		publisher: events.NewMemoryPublisher(),
		clock:     newFakeClock(),
	}
	all := append([]tripservice.Option{
		tripservice.WithDraftStore(f.drafts),
		tripservice.WithRemoteMeta(f.remote),
		tripservice.WithPublisher(f.publisher),
		tripservice.WithClock(f.clock.Now),
	}, opts...)
	f.engine = tripservice.NewEngine(f.trips, all...)
	return f
}

func actorCtx(actor string) context.Context {
	return types.WithActor(context.Background(), actor)
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

// submittedTrip creates a trip and saves its details once.
func (f *fixture) submittedTrip(t *testing.T, ctx context.Context) *types.Trip {
	t.Helper()
	trip, err := f.engine.Create(ctx, types.NewTripParams{Title: "Coast", Destination: "Big Sur"})
	require.NoError(t, err)
	trip, err = f.engine.UpdateMeta(ctx, trip, types.MetaUpdate{
		StartDate: strPtr("2025-06-01"),
		EndDate:   strPtr("2025-06-04"),
	})
	require.NoError(t, err)
	require.True(t, trip.Submitted)
	return trip
}

func storedVersion(t *testing.T, f *fixture, id string) int64 {
	t.Helper()
	stored, err := f.trips.Get(context.Background(), id)
	require.NoError(t, err)
	return stored.Version
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)

	trip, err := f.engine.Create(ctx, types.NewTripParams{Title: "Coast", Destination: "Big Sur"})
	require.NoError(t, err)

	assert.NotEmpty(t, trip.ID)
	assert.False(t, trip.Submitted)
	assert.Equal(t, ana, trip.OwnerID)
	assert.Equal(t, ana, trip.LastWriter)
	assert.Equal(t, int64(1), trip.Version)
	assert.Equal(t, tripservice.DefaultNights, trip.Nights)
	assert.Len(t, trip.Activities, tripservice.DefaultNights+1)
	require.Len(t, trip.ChangeLog, 1)
	assert.Equal(t, "Trip created", trip.ChangeLog[0].Text)
	assert.Equal(t, ana, trip.ChangeLog[0].By)

	stored, err := f.trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.Title, stored.Title)

	published := f.publisher.EventsFor(trip.ID)
	require.Len(t, published, 1)
	assert.Equal(t, types.EventTypeTripCreated, published[0].Type)
	assert.Equal(t, int64(1), published[0].Version)
}

func TestCreateUsesConfiguredNights(t *testing.T) {
	f := newFixture(t, tripservice.WithLimits(config.TripsConfig{DefaultNights: 2}))
	trip, err := f.engine.Create(actorCtx(ana), types.NewTripParams{Destination: "Oslo"})
	require.NoError(t, err)
	assert.Equal(t, 2, trip.Nights)
	assert.Len(t, trip.Activities, 3)
}

func TestAnonymousActor(t *testing.T) {
	f := newFixture(t)
	trip, err := f.engine.Create(context.Background(), types.NewTripParams{Destination: "Oslo"})
	require.NoError(t, err)
	assert.Equal(t, types.AnonymousActor, trip.OwnerID)
}

func TestMutationsAreCopyOnWrite(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)
	before := trip.Clone()

	next, err := f.engine.AddActivity(ctx, trip, 0, "Sunset walk")
	require.NoError(t, err)

	assert.NotSame(t, trip, next)
	assert.Equal(t, before, trip, "input snapshot must not change")
	assert.Equal(t, trip.Version+1, next.Version)
	assert.Equal(t, "Sunset walk", next.Activities[0][len(next.Activities[0])-1])
	assert.Equal(t, next.Version, storedVersion(t, f, trip.ID))
}

func TestInvalidInputIsANoOp(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)
	version := storedVersion(t, f, trip.ID)
	eventCount := len(f.publisher.Events())

	tests := []struct {
		name string
		run  func() (*types.Trip, error)
	}{
		{"blank activity", func() (*types.Trip, error) { return f.engine.AddActivity(ctx, trip, 0, "   ") }},
		{"blank edit", func() (*types.Trip, error) { return f.engine.EditActivity(ctx, trip, 0, 0, "") }},
		{"move out of range", func() (*types.Trip, error) { return f.engine.MoveActivity(ctx, trip, 0, 0, 3) }},
		{"move negative", func() (*types.Trip, error) { return f.engine.MoveActivity(ctx, trip, 0, -1, 0) }},
		{"move same slot", func() (*types.Trip, error) { return f.engine.MoveActivity(ctx, trip, 0, 1, 1) }},
		{"move bad day", func() (*types.Trip, error) { return f.engine.MoveActivity(ctx, trip, 9, 0, 1) }},
		{"invalid participant", func() (*types.Trip, error) { return f.engine.AddParticipant(ctx, trip, "not an id") }},
		{"remove participant out of range", func() (*types.Trip, error) { return f.engine.RemoveParticipant(ctx, trip, 4) }},
		{"bad currency", func() (*types.Trip, error) { return f.engine.SetCurrency(ctx, trip, "EURO") }},
		{"blank participant budget", func() (*types.Trip, error) { return f.engine.SetParticipantBudget(ctx, trip, " ", 10) }},
		{"blank origin country", func() (*types.Trip, error) { return f.engine.SetOriginCountry(ctx, trip, "") }},
		{"blank expense", func() (*types.Trip, error) {
			return f.engine.AddExpense(ctx, trip, types.ExpenseDraft{Desc: " ", Amount: 10, SplitMode: types.SplitAll})
		}},
		{"zero expense", func() (*types.Trip, error) {
			return f.engine.AddExpense(ctx, trip, types.ExpenseDraft{Desc: "Fuel", Amount: 0, SplitMode: types.SplitAll})
		}},
		{"unknown split mode", func() (*types.Trip, error) {
			return f.engine.AddExpense(ctx, trip, types.ExpenseDraft{Desc: "Fuel", Amount: 10, SplitMode: "half"})
		}},
		{"unknown expense", func() (*types.Trip, error) { return f.engine.RemoveExpense(ctx, trip, "nope") }},
		{"empty chat", func() (*types.Trip, error) { return f.engine.AppendChatMessage(ctx, trip, " ", nil, "") }},
		{"no media", func() (*types.Trip, error) { return f.engine.AddMedia(ctx, trip, nil) }},
		{"unknown media", func() (*types.Trip, error) { return f.engine.RemoveMedia(ctx, trip, "nope") }},
		{"untitled doc", func() (*types.Trip, error) { return f.engine.AddDoc(ctx, trip, types.DocDraft{Type: types.DocHotel}) }},
		{"unknown doc", func() (*types.Trip, error) {
			return f.engine.UpdateDoc(ctx, trip, "nope", types.DocDraft{Title: "Hotel"})
		}},
		{"archive unchanged", func() (*types.Trip, error) { return f.engine.SetArchived(ctx, trip, false) }},
		{"blank destination", func() (*types.Trip, error) {
			return f.engine.UpdateMeta(ctx, trip, types.MetaUpdate{Destination: strPtr("  ")})
		}},
		{"end before start", func() (*types.Trip, error) {
			return f.engine.UpdateMeta(ctx, trip, types.MetaUpdate{StartDate: strPtr("2025-06-10"), EndDate: strPtr("2025-06-01")})
		}},
		{"coordinates out of range", func() (*types.Trip, error) {
			return f.engine.UpdateMeta(ctx, trip, types.MetaUpdate{DestinationCoords: &types.Coordinates{Lat: 91, Lng: 0}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			require.NoError(t, err)
			assert.Same(t, trip, got)
		})
	}

	assert.Equal(t, version, storedVersion(t, f, trip.ID))
	assert.Len(t, f.publisher.Events(), eventCount)
}

func TestNilTrip(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.RemoveExpense(actorCtx(ana), nil, "x")
	assert.Equal(t, 400, apperrors.StatusFor(err))
}

func TestVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)

	_, err := f.engine.AddActivity(ctx, trip, 0, "Sunset walk")
	require.NoError(t, err)

	// A second writer still holding the old snapshot loses.
	_, err = f.engine.AddActivity(actorCtx(ben), trip, 1, "Kayak")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ConflictError, appErr.Type)
	assert.Equal(t, 409, apperrors.StatusFor(err))

	stored, err := f.trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Activities[1], "Kayak")
}

type mockTripStore struct {
	mock.Mock
}

func (m *mockTripStore) Get(ctx context.Context, id string) (*types.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *mockTripStore) Put(ctx context.Context, trip *types.Trip, expectedVersion int64) error {
	return m.Called(ctx, trip, expectedVersion).Error(0)
}

func (m *mockTripStore) List(ctx context.Context) ([]*types.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Trip), args.Error(1)
}

func (m *mockTripStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var _ store.TripStore = (*mockTripStore)(nil)

func TestPersistenceFailure(t *testing.T) {
	trips := new(mockTripStore)
	publisher := events.NewMemoryPublisher()
	engine := tripservice.NewEngine(trips, tripservice.WithPublisher(publisher))
	ctx := actorCtx(ana)

	diskFull := stderrors.New("disk full")
	trips.On("Put", mock.Anything, mock.AnythingOfType("*types.Trip"), int64(0)).Return(diskFull).Once()

	_, err := engine.Create(ctx, types.NewTripParams{Destination: "Oslo"})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.PersistenceError, appErr.Type)
	assert.Equal(t, 500, apperrors.StatusFor(err))
	assert.ErrorIs(t, err, diskFull)
	assert.Empty(t, publisher.Events(), "nothing is announced for failed writes")
	trips.AssertExpectations(t)
}

func TestPutReceivesExpectedVersion(t *testing.T) {
	trips := new(mockTripStore)
	engine := tripservice.NewEngine(trips)
	ctx := actorCtx(ana)

	trip := tripservice.Normalize(types.TripRecord{ID: "t1", Destination: "Oslo", Version: 6}, ana, time.Now())
	trips.On("Put", mock.Anything, mock.MatchedBy(func(next *types.Trip) bool {
		return next.ID == "t1" && next.Version == 7
	}), int64(6)).Return(nil).Once()

	next, err := engine.SetArchived(ctx, trip, true)
	require.NoError(t, err)
	assert.True(t, next.Archived)
	trips.AssertExpectations(t)
}

func TestPublishFailureDoesNotFailCommit(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)

	f.publisher.FailWith(stderrors.New("broker down"))
	next, err := f.engine.AddActivity(ctx, trip, 0, "Sunset walk")
	require.NoError(t, err)
	assert.Equal(t, next.Version, storedVersion(t, f, trip.ID))
}

func TestChangeLogIsBounded(t *testing.T) {
	f := newFixture(t, tripservice.WithLimits(config.TripsConfig{ChangeLogLimit: 3}))
	ctx := actorCtx(ana)
	trip := f.submittedTrip(t, ctx)

	var err error
	for i := 0; i < 5; i++ {
		trip, err = f.engine.AddActivity(ctx, trip, 0, fmt.Sprintf("Stop %d", i))
		require.NoError(t, err)
	}
	require.Len(t, trip.ChangeLog, 3)
	for _, entry := range trip.ChangeLog {
		assert.Equal(t, "Added activity", entry.Text)
	}
	assert.True(t, trip.ChangeLog[0].At.Before(trip.ChangeLog[2].At))
}
