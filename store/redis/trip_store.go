// Package redis stores trips, drafts and cached forecasts in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/types"
)

const (
	tripKeyPrefix  = "tripweave:trip:"
	tripIndexKey   = "tripweave:trips"
	draftKeyPrefix = "tripweave:draft:"
)

// putTripScript writes the trip hash and index entry only when the stored
// version matches ARGV[1]. Returns 1 on write, 0 on conflict.
//
// KEYS: trip hash, index zset. ARGV: expected, version, data, score, id.
var putTripScript = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "version")
local expected = tonumber(ARGV[1])
if expected == 0 then
	if current then
		return 0
	end
elseif (not current) or tonumber(current) ~= expected then
	return 0
end
redis.call("HSET", KEYS[1], "version", ARGV[2], "data", ARGV[3])
redis.call("ZADD", KEYS[2], ARGV[4], ARGV[5])
return 1
`)

func tripKey(id string) string {
	return tripKeyPrefix + id
}

var _ store.TripStore = (*TripStore)(nil)

type TripStore struct {
	client *redis.Client
}

func NewTripStore(client *redis.Client) *TripStore {
	return &TripStore{client: client}
}

func (s *TripStore) Get(ctx context.Context, id string) (*types.Trip, error) {
	raw, err := s.client.HGet(ctx, tripKey(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load trip %s: %w", id, err)
	}
	return decodeTrip(raw)
}

func (s *TripStore) Put(ctx context.Context, trip *types.Trip, expectedVersion int64) error {
	raw, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to encode trip %s: %w", trip.ID, err)
	}

	written, err := putTripScript.Run(ctx, s.client,
		[]string{tripKey(trip.ID), tripIndexKey},
		strconv.FormatInt(expectedVersion, 10),
		strconv.FormatInt(trip.Version, 10),
		string(raw),
		strconv.FormatInt(trip.UpdatedAt.UnixMilli(), 10),
		trip.ID,
	).Int()
	if err != nil {
		logger.GetLogger().Errorw("Failed to write trip", "tripId", trip.ID, "error", err)
		return fmt.Errorf("failed to write trip %s: %w", trip.ID, err)
	}
	if written == 0 {
		return store.ErrConflict
	}
	return nil
}

// List reads the index newest first. Index entries whose hash has gone are
// skipped.
func (s *TripStore) List(ctx context.Context) ([]*types.Trip, error) {
	ids, err := s.client.ZRevRange(ctx, tripIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trip index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.StringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGet(ctx, tripKey(id), "data")
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	trips := make([]*types.Trip, 0, len(ids))
	for i, cmd := range cmds {
		raw, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) || (err == nil && len(raw) == 0) {
			logger.GetLogger().Warnw("Trip index references missing trip", "tripId", ids[i])
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load trip %s: %w", ids[i], err)
		}
		t, err := decodeTrip(raw)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *TripStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tripKey(id))
	pipe.ZRem(ctx, tripIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete trip %s: %w", id, err)
	}
	return nil
}

func decodeTrip(raw []byte) (*types.Trip, error) {
	var t types.Trip
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode trip: %w", err)
	}
	return &t, nil
}

var _ store.DraftStore = (*DraftStore)(nil)

// DraftStore keeps each actor's wizard draft under tripweave:draft:<actor>.
type DraftStore struct {
	client *redis.Client
}

func NewDraftStore(client *redis.Client) *DraftStore {
	return &DraftStore{client: client}
}

func (s *DraftStore) GetDraft(ctx context.Context, actor string) (*types.TripRecord, error) {
	raw, err := s.client.Get(ctx, draftKeyPrefix+actor).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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
	if err := s.client.Set(ctx, draftKeyPrefix+actor, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) ClearDraft(ctx context.Context, actor string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+actor).Err(); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
