package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/types"
)

const (
	getDraftSQL = `SELECT data FROM trip_drafts WHERE actor = $1`

	saveDraftSQL = `
		INSERT INTO trip_drafts (actor, updated_at, data)
		VALUES ($1, NOW(), $2)
		ON CONFLICT (actor) DO UPDATE SET updated_at = NOW(), data = EXCLUDED.data`

	clearDraftSQL = `DELETE FROM trip_drafts WHERE actor = $1`
)

var _ store.DraftStore = (*DraftStore)(nil)

type DraftStore struct {
	db DBTX
}

func NewDraftStore(db DBTX) *DraftStore {
	return &DraftStore{db: db}
}

func (s *DraftStore) GetDraft(ctx context.Context, actor string) (*types.TripRecord, error) {
	var raw []byte
	if err := s.db.QueryRow(ctx, getDraftSQL, actor).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	var rec types.TripRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &rec, nil
}

func (s *DraftStore) SaveDraft(ctx context.Context, actor string, rec types.TripRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if _, err := s.db.Exec(ctx, saveDraftSQL, actor, raw); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) ClearDraft(ctx context.Context, actor string) error {
	if _, err := s.db.Exec(ctx, clearDraftSQL, actor); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
