package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/types"
)

func init() {
	logger.IsTest = true
}

func setupMockPool(t *testing.T) (pgxmock.PgxPoolIface, func()) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock, mock.Close
}

func testTrip(version int64) *types.Trip {
	return &types.Trip{
		ID:          "trip-1",
		Title:       "Alps",
		Destination: "Chamonix",
		Nights:      1,
		Activities:  [][]string{{"Arrive"}, {"Depart"}},
		OwnerID:     "ana@example.com",
		Version:     version,
		UpdatedAt:   time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestTripStoreGet(t *testing.T) {
	mock, cleanup := setupMockPool(t)
	defer cleanup()
	s := NewTripStore(mock)

	raw, err := json.Marshal(testTrip(1))
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getTripSQL)).
			WithArgs("trip-1").
			WillReturnRows(pgxmock.NewRows([]string{"data", "version"}).AddRow(raw, int64(4)))

		trip, err := s.Get(context.Background(), "trip-1")
		require.NoError(t, err)
		assert.Equal(t, "Chamonix", trip.Destination)
		assert.Equal(t, int64(4), trip.Version, "version column wins")
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getTripSQL)).
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := s.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getTripSQL)).
			WithArgs("trip-1").
			WillReturnError(errors.New("connection reset"))

		_, err := s.Get(context.Background(), "trip-1")
		assert.ErrorContains(t, err, "connection reset")
		assert.NotErrorIs(t, err, store.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripStorePutInsert(t *testing.T) {
	mock, cleanup := setupMockPool(t)
	defer cleanup()
	s := NewTripStore(mock)
	trip := testTrip(1)

	mock.ExpectExec(regexp.QuoteMeta(insertTripSQL)).
		WithArgs("trip-1", "ana@example.com", int64(1), trip.UpdatedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.Put(context.Background(), trip, 0))

	mock.ExpectExec(regexp.QuoteMeta(insertTripSQL)).
		WithArgs("trip-1", "ana@example.com", int64(1), trip.UpdatedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	assert.ErrorIs(t, s.Put(context.Background(), trip, 0), store.ErrConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripStorePutUpdate(t *testing.T) {
	mock, cleanup := setupMockPool(t)
	defer cleanup()
	s := NewTripStore(mock)
	trip := testTrip(3)

	mock.ExpectExec(regexp.QuoteMeta(updateTripSQL)).
		WithArgs("trip-1", int64(2), "ana@example.com", int64(3), trip.UpdatedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.Put(context.Background(), trip, 2))

	mock.ExpectExec(regexp.QuoteMeta(updateTripSQL)).
		WithArgs("trip-1", int64(2), "ana@example.com", int64(3), trip.UpdatedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, s.Put(context.Background(), trip, 2), store.ErrConflict)

	mock.ExpectExec(regexp.QuoteMeta(updateTripSQL)).
		WithArgs("trip-1", int64(2), "ana@example.com", int64(3), trip.UpdatedAt, pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	err := s.Put(context.Background(), trip, 2)
	assert.ErrorContains(t, err, "disk full")
	assert.NotErrorIs(t, err, store.ErrConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripStoreList(t *testing.T) {
	mock, cleanup := setupMockPool(t)
	defer cleanup()
	s := NewTripStore(mock)

	newer := testTrip(2)
	newer.ID = "trip-2"
	rawNew, _ := json.Marshal(newer)
	rawOld, _ := json.Marshal(testTrip(1))

	mock.ExpectQuery(regexp.QuoteMeta(listTripsSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"data", "version"}).
			AddRow(rawNew, int64(2)).
			AddRow(rawOld, int64(1)))

	trips, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "trip-2", trips[0].ID)
	assert.Equal(t, "trip-1", trips[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripStoreDelete(t *testing.T) {
	mock, cleanup := setupMockPool(t)
	defer cleanup()
	s := NewTripStore(mock)

	mock.ExpectExec(regexp.QuoteMeta(deleteTripSQL)).
		WithArgs("trip-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.Delete(context.Background(), "trip-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
