package service

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	apperrors "github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/types"
)

// Create persists a new, unsubmitted trip owned by the caller.
func (e *Engine) Create(ctx context.Context, params types.NewTripParams) (*types.Trip, error) {
	actor := types.ActorFromContext(ctx)
	nights := e.limits.DefaultNights
	if params.Nights != nil {
		nights = *params.Nights
	}
	submitted := false
	trip := Normalize(types.TripRecord{
		ID:          e.newID(),
		Title:       params.Title,
		Origin:      params.Origin,
		Destination: params.Destination,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Nights:      &nights,
		PartyType:   params.PartyType,
		OwnerID:     actor,
		Submitted:   &submitted,
	}, actor, e.clock())

	created, err := e.commit(ctx, nil, trip, types.EventTypeTripCreated, "Trip created")
	if err != nil {
		return nil, err
	}
	e.log.Infow("Trip created", "tripId", created.ID, "owner", actor)
	return created, nil
}

// Load reconciles the local snapshot, the caller's draft and the remote
// metadata, in that order. Whatever it returns has been persisted in its
// normalized shape.
func (e *Engine) Load(ctx context.Context, id string) (*types.Trip, error) {
	actor := types.ActorFromContext(ctx)

	local, err := e.trips.Get(ctx, id)
	if err != nil && !stderrors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewDatabaseError(err)
	}
	if local != nil {
		return e.reconcileWithRetry(ctx, local)
	}

	if draft := e.draftFor(ctx, actor, id); draft != nil {
		trip := Normalize(*draft, actor, e.clock())
		promoted, err := e.commit(ctx, nil, trip, types.EventTypeTripCreated, "Trip created from draft")
		if err != nil {
			return nil, err
		}
		if err := e.drafts.ClearDraft(ctx, actor); err != nil {
			e.log.Warnw("Failed to clear promoted draft", "tripId", id, "actor", actor, "error", err)
		}
		return promoted, nil
	}

	if meta := e.remoteMeta(ctx, id); meta != nil {
		trip := Normalize(*meta, actor, e.clock())
		return e.commit(ctx, nil, trip, types.EventTypeTripCreated, "Trip restored from shared details")
	}

	return nil, apperrors.TripNotFound(id)
}

// reconcileWithRetry reconciles local once more against the fresh snapshot
// when a concurrent writer bumps the version first. A second conflict returns
// the stored snapshot as is so a read never fails with 409.
func (e *Engine) reconcileWithRetry(ctx context.Context, local *types.Trip) (*types.Trip, error) {
	reconciled, err := e.reconcileLocal(ctx, local)
	if !isConflict(err) {
		return reconciled, err
	}
	fresh, err := e.trips.Get(ctx, local.ID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.TripNotFound(local.ID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	reconciled, err = e.reconcileLocal(ctx, fresh)
	if isConflict(err) {
		e.log.Infow("Returning stored trip after repeated reconcile conflict", "tripId", fresh.ID, "version", fresh.Version)
		return fresh, nil
	}
	return reconciled, err
}

func isConflict(err error) bool {
	var appErr *apperrors.AppError
	return stderrors.As(err, &appErr) && appErr.Type == apperrors.ConflictError
}

func (e *Engine) reconcileLocal(ctx context.Context, local *types.Trip) (*types.Trip, error) {
	actor := types.ActorFromContext(ctx)
	rec := local.Record()
	summary := ""
	if meta := e.remoteMeta(ctx, local.ID); meta != nil && meta.UpdatedAt != nil && meta.UpdatedAt.After(local.UpdatedAt) {
		overlayMeta(&rec, meta)
		summary = "Trip details synced"
	}

	normalized := Normalize(rec, actor, e.clock())
	if summary == "" && sameShape(local, normalized) {
		return local, nil
	}
	return e.commit(ctx, local, normalized, types.EventTypeTripUpdated, summary)
}

func (e *Engine) draftFor(ctx context.Context, actor, id string) *types.TripRecord {
	draft, err := e.drafts.GetDraft(ctx, actor)
	if err != nil {
		if !stderrors.Is(err, store.ErrNotFound) {
			e.log.Warnw("Failed to read draft", "actor", actor, "error", err)
		}
		return nil
	}
	if draft.ID != id {
		return nil
	}
	return draft
}

func (e *Engine) remoteMeta(ctx context.Context, id string) *types.TripRecord {
	if e.remote == nil {
		return nil
	}
	meta, err := e.remote.GetRemoteMeta(ctx, id)
	if err != nil {
		if !stderrors.Is(err, store.ErrNotFound) {
			e.log.Warnw("Failed to read remote trip metadata", "tripId", id, "error", err)
		}
		return nil
	}
	return meta
}

// overlayMeta copies the mirrored metadata fields over rec.
func overlayMeta(rec *types.TripRecord, meta *types.TripRecord) {
	if meta.Title != "" {
		rec.Title = meta.Title
	}
	rec.Origin = meta.Origin
	if meta.Destination != "" {
		rec.Destination = meta.Destination
	}
	rec.StartDate = meta.StartDate
	rec.EndDate = meta.EndDate
	if meta.Transport != "" {
		rec.Transport = meta.Transport
	}
	if meta.Vibe != "" {
		rec.Vibe = meta.Vibe
	}
	if meta.PartyType != "" {
		rec.PartyType = meta.PartyType
	}
	if meta.BudgetModel != "" {
		rec.BudgetModel = meta.BudgetModel
	}
	if meta.Submitted != nil {
		submitted := *meta.Submitted
		rec.Submitted = &submitted
	}
}

func sameShape(a, b *types.Trip) bool {
	rawA, errA := json.Marshal(a)
	rawB, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(rawA, rawB)
}

// SaveDraft stores the caller's unsubmitted wizard state. The returned record
// carries the id the trip will be created under.
func (e *Engine) SaveDraft(ctx context.Context, rec types.TripRecord) (*types.TripRecord, error) {
	actor := types.ActorFromContext(ctx)
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = e.newID()
	}
	submitted := false
	rec.Submitted = &submitted
	if rec.OwnerID == "" {
		rec.OwnerID = actor
	}
	if err := e.drafts.SaveDraft(ctx, actor, rec); err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return &rec, nil
}

func (e *Engine) Draft(ctx context.Context) (*types.TripRecord, error) {
	actor := types.ActorFromContext(ctx)
	draft, err := e.drafts.GetDraft(ctx, actor)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Draft", actor)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return draft, nil
}

func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.trips.Delete(ctx, id); err != nil {
		return apperrors.PersistenceFailed(err)
	}
	e.publish(ctx, types.TripEvent{
		ID:        e.newID(),
		Type:      types.EventTypeTripDeleted,
		TripID:    id,
		Actor:     types.ActorFromContext(ctx),
		Timestamp: e.clock(),
	})
	return nil
}

// ListRecent groups the caller's trips, newest first. Only the caller's own
// trips count toward the retention limit; the oldest beyond it are deleted.
// Trips owned by anyone else are never touched.
func (e *Engine) ListRecent(ctx context.Context) (types.TripList, error) {
	actor := types.ActorFromContext(ctx)
	list := types.TripList{Created: []*types.Trip{}, Invited: []*types.Trip{}}

	trips, err := e.trips.List(ctx)
	if err != nil {
		return list, apperrors.NewDatabaseError(err)
	}

	limit := e.limits.RetentionLimit
	for _, t := range trips {
		switch {
		case strings.EqualFold(t.OwnerID, actor):
			if len(list.Created) < limit {
				list.Created = append(list.Created, t)
				continue
			}
			if err := e.Delete(ctx, t.ID); err != nil {
				e.log.Warnw("Failed to delete trip beyond retention limit", "tripId", t.ID, "owner", actor, "error", err)
			}
		case t.HasParticipant(actor):
			list.Invited = append(list.Invited, t)
		}
	}
	return list, nil
}

func (e *Engine) SetArchived(ctx context.Context, trip *types.Trip, archived bool) (*types.Trip, error) {
	summary := "Trip restored"
	if archived {
		summary = "Trip archived"
	}
	return e.mutate(ctx, trip, "set_archived", summary, func(next *types.Trip) (bool, string) {
		if next.Archived == archived {
			return false, "archived flag unchanged"
		}
		next.Archived = archived
		return true, ""
	})
}
