package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tripweave/tripweave-backend/logger"
)

// ForecastCache shares resolved forecasts across instances. Redis failures
// degrade to cache misses.
type ForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewForecastCache(client *redis.Client, ttl time.Duration) *ForecastCache {
	return &ForecastCache{client: client, ttl: ttl}
}

func (c *ForecastCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.GetLogger().Warnw("Forecast cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *ForecastCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		logger.GetLogger().Warnw("Forecast cache write failed", "key", key, "error", err)
	}
}
