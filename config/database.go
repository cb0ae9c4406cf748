package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tripweave/tripweave-backend/logger"
)

// PoolConfig builds a pgxpool configuration from the database section.
func PoolConfig(cfg *DatabaseConfig) (*pgxpool.Config, error) {
	dsn := cfg.URL()
	logger.GetLogger().Infow("Connecting to database",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
		"dsn", logger.MaskConnectionString(dsn))

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.ConnMaxLife != "" {
		life, err := time.ParseDuration(cfg.ConnMaxLife)
		if err != nil {
			return nil, fmt.Errorf("invalid connection max life %q: %w", cfg.ConnMaxLife, err)
		}
		poolCfg.MaxConnLifetime = life
	}
	return poolCfg, nil
}

// NewPool opens and pings a pgx pool.
func NewPool(ctx context.Context, cfg *DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// RedisOptions translates the redis section into client options.
func RedisOptions(cfg *RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: time.Hour,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient connects and pings redis.
func NewRedisClient(ctx context.Context, cfg *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(RedisOptions(cfg))
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
