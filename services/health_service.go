package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/types"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool and pgxmock pools.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService reports the state of the backing stores. A nil dependency
// means the configured backends do not use it and it is left out.
type HealthService struct {
	db        Pinger
	redis     *redis.Client
	version   string
	startTime time.Time
	log       *zap.SugaredLogger
}

func NewHealthService(db Pinger, redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		db:        db,
		redis:     redisClient,
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger(),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overall := types.HealthStatusUp

	if h.db != nil {
		components["database"] = h.checkDatabase(ctx)
	}
	if h.redis != nil {
		components["redis"] = h.checkRedis(ctx)
	}
	for _, c := range components {
		if c.Status == types.HealthStatusDown {
			overall = types.HealthStatusDown
		}
	}

	return types.HealthCheck{
		Status:     overall,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
