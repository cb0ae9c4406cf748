package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave-backend/logger"
)

func init() {
	logger.IsTest = true
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, BackendMemory, cfg.Storage.TripBackend)
	assert.Equal(t, 5, cfg.Trips.RetentionLimit)
	assert.Equal(t, 200, cfg.Trips.ChangeLogLimit)
	assert.Equal(t, 4, cfg.Trips.DefaultNights)
	assert.Equal(t, 7*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, 3*time.Hour, cfg.Weather.CacheTTL)
	assert.Equal(t, 1, cfg.Weather.GeocodeRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Weather.GeocodeBackoff)
	assert.Equal(t, 2, cfg.Weather.ForecastRetries)
	assert.Equal(t, 400*time.Millisecond, cfg.Weather.ForecastBackoff)
	assert.Equal(t, int64(250*1024*1024), cfg.Media.MaxUploadBytes)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TRIP_BACKEND", "redis")
	t.Setenv("WEATHER_CACHE_TTL", "30m")
	t.Setenv("TRIPS_RETENTION_LIMIT", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Storage.TripBackend)
	assert.Equal(t, 30*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, 8, cfg.Trips.RetentionLimit)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("TRIP_BACKEND", "mongo")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trip backend")
}

func TestValidateConfigDisablesIncompleteRemoteMeta(t *testing.T) {
	t.Setenv("REMOTE_META_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.RemoteMeta.Enabled)
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "trip weave", Password: "p@ss", Name: "tripweave"}
	assert.Equal(t, "postgres://trip+weave:p%40ss@db:5432/tripweave?sslmode=disable", db.URL())
}

func TestPoolConfig(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", MaxConnections: 7, ConnMaxLife: "30m"}
	pc, err := PoolConfig(&db)
	require.NoError(t, err)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
}

func TestRedisOptions(t *testing.T) {
	opts := RedisOptions(&RedisConfig{Address: "cache:6379", DB: 2, UseTLS: true})
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	require.NotNil(t, opts.TLSConfig)
}
