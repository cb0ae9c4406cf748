// Package store defines the persistence contracts for trips, wizard drafts
// and remote trip metadata. Backends live in the subpackages.
package store

import (
	"context"

	"github.com/tripweave/tripweave-backend/types"
)

// TripStore persists canonical trip snapshots.
type TripStore interface {
	// Get returns ErrNotFound when no trip has the id.
	Get(ctx context.Context, id string) (*types.Trip, error)
	// Put writes trip if the stored version equals expectedVersion, where 0
	// means "must not exist yet". Otherwise it returns ErrConflict.
	Put(ctx context.Context, trip *types.Trip, expectedVersion int64) error
	// List returns every trip, most recently updated first.
	List(ctx context.Context) ([]*types.Trip, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}

// DraftStore keeps one unsubmitted wizard record per actor.
type DraftStore interface {
	GetDraft(ctx context.Context, actor string) (*types.TripRecord, error)
	SaveDraft(ctx context.Context, actor string, rec types.TripRecord) error
	ClearDraft(ctx context.Context, actor string) error
}

// RemoteMetaStore mirrors trip metadata to a shared document store.
// GetRemoteMeta returns ErrNotFound when the remote has no such trip.
type RemoteMetaStore interface {
	GetRemoteMeta(ctx context.Context, id string) (*types.TripRecord, error)
	WriteMeta(ctx context.Context, trip *types.Trip) error
}

// MetaRecord extracts the fields mirrored to the remote metadata store.
func MetaRecord(t *types.Trip) types.TripRecord {
	submitted := t.Submitted
	updated := t.UpdatedAt
	return types.TripRecord{
		ID:          t.ID,
		Title:       t.Title,
		Origin:      t.Origin,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Transport:   string(t.Transport),
		Vibe:        string(t.Vibe),
		PartyType:   string(t.PartyType),
		BudgetModel: string(t.BudgetModel),
		Submitted:   &submitted,
		Archived:    t.Archived,
		OwnerID:     t.OwnerID,
		UpdatedAt:   &updated,
	}
}
