package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/types"
)

// Config holds configuration for RedisPublisher
type Config struct {
	PublishTimeout time.Duration
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		PublishTimeout: 5 * time.Second,
	}
}

type metrics struct {
	publishLatency prometheus.Histogram
	errorCount     *prometheus.CounterVec
	eventCount     *prometheus.CounterVec
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

// newMetrics registers the publisher metrics once per registry.
func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			publishLatency: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "tripweave_event_publish_duration_seconds",
				Help:    "Time taken to publish trip events",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "tripweave_event_errors_total",
				Help: "Total number of trip event publish errors",
			}, []string{"operation", "type"}),
			eventCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "tripweave_events_total",
				Help: "Total number of trip events by operation and type",
			}, []string{"operation", "type"}),
		}
	})
	return metricsInstance
}

// For testing purposes - reset metrics
func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}

// RedisPublisher fans trip events out over Redis Pub/Sub.
type RedisPublisher struct {
	rdb     *redis.Client
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
}

// NewRedisPublisher creates a new RedisPublisher instance
func NewRedisPublisher(rdb *redis.Client, cfg ...Config) *RedisPublisher {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = DefaultConfig().PublishTimeout
	}

	return &RedisPublisher{
		rdb:     rdb,
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(),
		config:  config,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, event types.TripEvent) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if err := event.Validate(); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "validation").Inc()
		return fmt.Errorf("invalid event: %w", err)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "marshal").Inc()
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, ChannelFor(event.TripID), data).Err(); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "redis").Inc()
		p.log.Warnw("Failed to publish trip event", "tripId", event.TripID, "type", event.Type, "error", err)
		return fmt.Errorf("redis publish: %w", err)
	}

	p.metrics.eventCount.WithLabelValues("publish", string(event.Type)).Inc()
	return nil
}
