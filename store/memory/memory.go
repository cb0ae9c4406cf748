// Package memory holds process-local store implementations. Values are kept
// as JSON snapshots so callers can never alias stored state.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/types"
)

var (
	_ store.TripStore       = (*TripStore)(nil)
	_ store.DraftStore      = (*DraftStore)(nil)
	_ store.RemoteMetaStore = (*RemoteMetaStore)(nil)
)

type TripStore struct {
	mu    sync.RWMutex
	trips map[string][]byte
}

func NewTripStore() *TripStore {
	return &TripStore{trips: make(map[string][]byte)}
}

func (s *TripStore) Get(_ context.Context, id string) (*types.Trip, error) {
	s.mu.RLock()
	raw, ok := s.trips[id]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return decodeTrip(raw)
}

func (s *TripStore) Put(_ context.Context, trip *types.Trip, expectedVersion int64) error {
	raw, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to encode trip %s: %w", trip.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.trips[trip.ID]
	switch {
	case expectedVersion == 0 && exists:
		return store.ErrConflict
	case expectedVersion > 0:
		if !exists {
			return store.ErrConflict
		}
		var stored struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(current, &stored); err != nil {
			return fmt.Errorf("failed to decode stored trip %s: %w", trip.ID, err)
		}
		if stored.Version != expectedVersion {
			return store.ErrConflict
		}
	}
	s.trips[trip.ID] = raw
	return nil
}

func (s *TripStore) List(_ context.Context) ([]*types.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trips := make([]*types.Trip, 0, len(s.trips))
	for _, raw := range s.trips {
		t, err := decodeTrip(raw)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].UpdatedAt.After(trips[j].UpdatedAt)
	})
	return trips, nil
}

func (s *TripStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trips, id)
	return nil
}

func decodeTrip(raw []byte) (*types.Trip, error) {
	var t types.Trip
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode trip: %w", err)
	}
	return &t, nil
}

type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string][]byte)}
}

func (s *DraftStore) GetDraft(_ context.Context, actor string) (*types.TripRecord, error) {
	s.mu.RLock()
	raw, ok := s.drafts[actor]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return decodeRecord(raw)
}

func (s *DraftStore) SaveDraft(_ context.Context, actor string, rec types.TripRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	s.mu.Lock()
	s.drafts[actor] = raw
	s.mu.Unlock()
	return nil
}

func (s *DraftStore) ClearDraft(_ context.Context, actor string) error {
	s.mu.Lock()
	delete(s.drafts, actor)
	s.mu.Unlock()
	return nil
}

// RemoteMetaStore stands in for the shared document store in development
// and tests.
type RemoteMetaStore struct {
	mu   sync.RWMutex
	meta map[string][]byte
}

func NewRemoteMetaStore() *RemoteMetaStore {
	return &RemoteMetaStore{meta: make(map[string][]byte)}
}

func (s *RemoteMetaStore) GetRemoteMeta(_ context.Context, id string) (*types.TripRecord, error) {
	s.mu.RLock()
	raw, ok := s.meta[id]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return decodeRecord(raw)
}

func (s *RemoteMetaStore) WriteMeta(_ context.Context, trip *types.Trip) error {
	raw, err := json.Marshal(store.MetaRecord(trip))
	if err != nil {
		return fmt.Errorf("failed to encode trip metadata: %w", err)
	}
	s.mu.Lock()
	s.meta[trip.ID] = raw
	s.mu.Unlock()
	return nil
}

// Seed stores rec as if another client had written it.
func (s *RemoteMetaStore) Seed(rec types.TripRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode trip metadata: %w", err)
	}
	s.mu.Lock()
	s.meta[rec.ID] = raw
	s.mu.Unlock()
	return nil
}

func decodeRecord(raw []byte) (*types.TripRecord, error) {
	var rec types.TripRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode trip record: %w", err)
	}
	return &rec, nil
}
