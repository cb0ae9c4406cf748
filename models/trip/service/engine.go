// Package service implements the trip state engine: every change to a trip
// produces a new normalized snapshot that is persisted with a version check
// before it is handed back.
package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripweave/tripweave-backend/config"
	apperrors "github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/internal/events"
	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/store/memory"
	"github.com/tripweave/tripweave-backend/types"
)

const (
	DefaultRetentionLimit = 5
	DefaultChangeLogLimit = 200
)

// ErrIndexOutOfRange is returned for day or item indexes outside the trip.
var ErrIndexOutOfRange = stderrors.New("index out of range")

type Engine struct {
	trips     store.TripStore
	drafts    store.DraftStore
	remote    store.RemoteMetaStore
	publisher events.Publisher
	clock     func() time.Time
	newID     func() string
	limits    config.TripsConfig
	log       *zap.SugaredLogger
}

type Option func(*Engine)

func WithDraftStore(d store.DraftStore) Option {
	return func(e *Engine) { e.drafts = d }
}

// WithRemoteMeta enables the remote metadata fallback and mirror.
func WithRemoteMeta(r store.RemoteMetaStore) Option {
	return func(e *Engine) { e.remote = r }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithLimits applies the configured limits. Non-positive values keep the
// defaults.
func WithLimits(cfg config.TripsConfig) Option {
	return func(e *Engine) {
		if cfg.RetentionLimit > 0 {
			e.limits.RetentionLimit = cfg.RetentionLimit
		}
		if cfg.ChangeLogLimit > 0 {
			e.limits.ChangeLogLimit = cfg.ChangeLogLimit
		}
		if cfg.DefaultNights > 0 {
			e.limits.DefaultNights = cfg.DefaultNights
		}
	}
}

func NewEngine(trips store.TripStore, opts ...Option) *Engine {
	e := &Engine{
		trips:     trips,
		drafts:    memory.NewDraftStore(),
		publisher: events.NoopPublisher{},
		clock:     func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
		limits: config.TripsConfig{
			RetentionLimit: DefaultRetentionLimit,
			ChangeLogLimit: DefaultChangeLogLimit,
			DefaultNights:  DefaultNights,
		},
		log: logger.GetLogger().Named("trip_engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalize applies the engine clock and the caller's identity.
func (e *Engine) Normalize(ctx context.Context, rec types.TripRecord) *types.Trip {
	return Normalize(rec, types.ActorFromContext(ctx), e.clock())
}

// rejected logs an invalid input and hands the unchanged trip back.
func (e *Engine) rejected(trip *types.Trip, op, reason string) (*types.Trip, error) {
	e.log.Debugw("Ignoring invalid trip mutation", "tripId", trip.ID, "op", op, "reason", reason)
	return trip, nil
}

func indexError(what string) error {
	return apperrors.Wrap(ErrIndexOutOfRange, apperrors.ValidationError, what+" index out of range")
}

// mutate runs fn against a deep copy of trip and commits the result. fn
// returns false to reject the change, in which case trip itself is returned.
func (e *Engine) mutate(ctx context.Context, trip *types.Trip, op, summary string, fn func(next *types.Trip) (bool, string)) (*types.Trip, error) {
	if trip == nil {
		return nil, apperrors.ValidationFailed("invalid trip", "trip is required")
	}
	next := trip.Clone()
	ok, reason := fn(next)
	if !ok {
		return e.rejected(trip, op, reason)
	}
	return e.commit(ctx, trip, next, types.EventTypeTripUpdated, summary)
}

// commit re-derives computed fields, stamps the write and persists next
// only if the stored version still equals prev's. prev is nil for new trips.
func (e *Engine) commit(ctx context.Context, prev, next *types.Trip, eventType types.EventType, summary string) (*types.Trip, error) {
	actor := types.ActorFromContext(ctx)
	now := e.clock()

	var expected int64
	if prev != nil {
		expected = prev.Version
	}

	rederive(next)
	next.UpdatedAt = now
	next.LastWriter = actor
	next.Version = expected + 1
	if summary != "" {
		next.ChangeLog = append(next.ChangeLog, types.ChangeLogEntry{
			ID:   e.newID(),
			Text: summary,
			At:   now,
			By:   actor,
		})
	}
	if limit := e.limits.ChangeLogLimit; limit > 0 && len(next.ChangeLog) > limit {
		next.ChangeLog = append([]types.ChangeLogEntry{}, next.ChangeLog[len(next.ChangeLog)-limit:]...)
	}

	if err := e.trips.Put(ctx, next, expected); err != nil {
		if stderrors.Is(err, store.ErrConflict) {
			e.log.Infow("Trip version conflict", "tripId", next.ID, "expectedVersion", expected, "actor", actor)
			return nil, apperrors.NewConflictError(
				"Trip was changed by someone else",
				"reload the trip and try again",
			)
		}
		return nil, apperrors.PersistenceFailed(err)
	}

	e.publish(ctx, types.TripEvent{
		ID:        e.newID(),
		Type:      eventType,
		TripID:    next.ID,
		Actor:     actor,
		Version:   next.Version,
		Summary:   summary,
		Timestamp: now,
	})
	return next, nil
}

func (e *Engine) publish(ctx context.Context, event types.TripEvent) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.log.Warnw("Failed to publish trip event", "tripId", event.TripID, "type", event.Type, "error", err)
	}
}

// rederive recomputes the fields that depend on others.
func rederive(t *types.Trip) {
	applyDates(t, t.StartDate, t.EndDate, t.Nights)
	enforcePartyRules(t)
	days := t.DayCount()
	if len(t.Activities) != days {
		t.Activities = resizeActivities(t.Activities, days)
	}
	if t.Participants == nil {
		t.Participants = []string{}
	}
	if t.ParticipantBudgets == nil {
		t.ParticipantBudgets = map[string]float64{}
	}
}
