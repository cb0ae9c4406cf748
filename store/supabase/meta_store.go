// Package supabase mirrors trip metadata to a Supabase (PostgREST) table so
// other clients can discover trips they were invited to.
package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/types"
)

const metaColumns = "id,title,origin,destination,start_date,end_date,transport,vibe,party_type,budget_model,submitted,archived,owner_id,updated_at"

// Querier is the part of *supabase.Client the store uses.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

var _ Querier = (*supabase.Client)(nil)

type metaRow struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	StartDate   *string    `json:"start_date"`
	EndDate     *string    `json:"end_date"`
	Transport   string     `json:"transport"`
	Vibe        string     `json:"vibe"`
	PartyType   string     `json:"party_type"`
	BudgetModel string     `json:"budget_model"`
	Submitted   bool       `json:"submitted"`
	Archived    bool       `json:"archived"`
	OwnerID     string     `json:"owner_id"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

var _ store.RemoteMetaStore = (*MetaStore)(nil)

type MetaStore struct {
	client Querier
	table  string
}

// NewClient builds the Supabase client for url with the service key.
func NewClient(url, key string) (*supabase.Client, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

func NewMetaStore(client Querier, table string) *MetaStore {
	if table == "" {
		table = "trips"
	}
	return &MetaStore{client: client, table: table}
}

// GetRemoteMeta ignores ctx: the PostgREST client has no context support.
func (s *MetaStore) GetRemoteMeta(_ context.Context, id string) (*types.TripRecord, error) {
	var rows []metaRow
	if _, err := s.client.From(s.table).Select(metaColumns, "", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to read remote metadata for %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return rows[0].record(), nil
}

func (s *MetaStore) WriteMeta(_ context.Context, trip *types.Trip) error {
	row := rowFromRecord(store.MetaRecord(trip))
	if _, _, err := s.client.From(s.table).Upsert(row, "id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to write remote metadata for %s: %w", trip.ID, err)
	}
	return nil
}

func (r metaRow) record() *types.TripRecord {
	submitted := r.Submitted
	rec := &types.TripRecord{
		ID:          r.ID,
		Title:       r.Title,
		Origin:      r.Origin,
		Destination: r.Destination,
		Transport:   r.Transport,
		Vibe:        r.Vibe,
		PartyType:   r.PartyType,
		BudgetModel: r.BudgetModel,
		Submitted:   &submitted,
		Archived:    r.Archived,
		OwnerID:     r.OwnerID,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.StartDate != nil {
		rec.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		rec.EndDate = *r.EndDate
	}
	return rec
}

func rowFromRecord(rec types.TripRecord) metaRow {
	row := metaRow{
		ID:          rec.ID,
		Title:       rec.Title,
		Origin:      rec.Origin,
		Destination: rec.Destination,
		Transport:   rec.Transport,
		Vibe:        rec.Vibe,
		PartyType:   rec.PartyType,
		BudgetModel: rec.BudgetModel,
		Archived:    rec.Archived,
		OwnerID:     rec.OwnerID,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.Submitted != nil {
		row.Submitted = *rec.Submitted
	}
	if rec.StartDate != "" {
		row.StartDate = &rec.StartDate
	}
	if rec.EndDate != "" {
		row.EndDate = &rec.EndDate
	}
	return row
}
