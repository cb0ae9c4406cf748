// Package postgres stores trips in PostgreSQL as versioned JSONB documents.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/types"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getTripSQL = `SELECT data, version FROM trips WHERE id = $1`

	listTripsSQL = `SELECT data, version FROM trips ORDER BY updated_at DESC`

	insertTripSQL = `
		INSERT INTO trips (id, owner_id, version, updated_at, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	updateTripSQL = `
		UPDATE trips
		SET owner_id = $3, version = $4, updated_at = $5, data = $6
		WHERE id = $1 AND version = $2`

	deleteTripSQL = `DELETE FROM trips WHERE id = $1`
)

var _ store.TripStore = (*TripStore)(nil)

type TripStore struct {
	db DBTX
}

func NewTripStore(db DBTX) *TripStore {
	return &TripStore{db: db}
}

func (s *TripStore) Get(ctx context.Context, id string) (*types.Trip, error) {
	var (
		raw     []byte
		version int64
	)
	err := s.db.QueryRow(ctx, getTripSQL, id).Scan(&raw, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load trip %s: %w", id, err)
	}
	return decodeTrip(raw, version)
}

func (s *TripStore) Put(ctx context.Context, trip *types.Trip, expectedVersion int64) error {
	raw, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to encode trip %s: %w", trip.ID, err)
	}

	var tag pgconn.CommandTag
	if expectedVersion == 0 {
		tag, err = s.db.Exec(ctx, insertTripSQL, trip.ID, trip.OwnerID, trip.Version, trip.UpdatedAt, raw)
	} else {
		tag, err = s.db.Exec(ctx, updateTripSQL, trip.ID, expectedVersion, trip.OwnerID, trip.Version, trip.UpdatedAt, raw)
	}
	if err != nil {
		logger.GetLogger().Errorw("Failed to write trip", "tripId", trip.ID, "expectedVersion", expectedVersion, "error", err)
		return fmt.Errorf("failed to write trip %s: %w", trip.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConflict
	}
	return nil
}

func (s *TripStore) List(ctx context.Context) ([]*types.Trip, error) {
	rows, err := s.db.Query(ctx, listTripsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*types.Trip
	for rows.Next() {
		var (
			raw     []byte
			version int64
		)
		if err := rows.Scan(&raw, &version); err != nil {
			return nil, fmt.Errorf("failed to scan trip row: %w", err)
		}
		t, err := decodeTrip(raw, version)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

func (s *TripStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, deleteTripSQL, id); err != nil {
		return fmt.Errorf("failed to delete trip %s: %w", id, err)
	}
	return nil
}

// decodeTrip trusts the version column over the document body.
func decodeTrip(raw []byte, version int64) (*types.Trip, error) {
	var t types.Trip
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode trip: %w", err)
	}
	t.Version = version
	return &t, nil
}
