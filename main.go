package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tripweave/tripweave-backend/config"
	"github.com/tripweave/tripweave-backend/db"
	"github.com/tripweave/tripweave-backend/handlers"
	"github.com/tripweave/tripweave-backend/internal/events"
	"github.com/tripweave/tripweave-backend/logger"
	mediaservice "github.com/tripweave/tripweave-backend/models/media/service"
	tripservice "github.com/tripweave/tripweave-backend/models/trip/service"
	weatherservice "github.com/tripweave/tripweave-backend/models/weather/service"
	"github.com/tripweave/tripweave-backend/pkg/nominatim"
	"github.com/tripweave/tripweave-backend/pkg/openmeteo"
	"github.com/tripweave/tripweave-backend/pkg/resilience"
	"github.com/tripweave/tripweave-backend/router"
	"github.com/tripweave/tripweave-backend/services"
	"github.com/tripweave/tripweave-backend/store"
	"github.com/tripweave/tripweave-backend/store/memory"
	"github.com/tripweave/tripweave-backend/store/postgres"
	redisstore "github.com/tripweave/tripweave-backend/store/redis"
	"github.com/tripweave/tripweave-backend/store/supabase"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load config", "error", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.Storage.TripBackend == config.BackendPostgres {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatalw("Failed to run migrations", "error", err)
		}
		pool, err = config.NewPool(startCtx, &cfg.Database)
		if err != nil {
			log.Fatalw("Failed to connect to database", "error", err)
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = config.NewRedisClient(startCtx, &cfg.Redis)
		if err != nil {
			log.Fatalw("Failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
	}

	engineOpts := []tripservice.Option{
		tripservice.WithDraftStore(draftStore(cfg, pool, redisClient)),
		tripservice.WithLimits(cfg.Trips),
	}
	if cfg.RemoteMeta.Enabled {
		client, err := supabase.NewClient(cfg.RemoteMeta.SupabaseURL, cfg.RemoteMeta.SupabaseKey)
		if err != nil {
			log.Fatalw("Failed to initialize remote metadata store", "error", err)
		}
		engineOpts = append(engineOpts, tripservice.WithRemoteMeta(supabase.NewMetaStore(client, cfg.RemoteMeta.Table)))
	}
	if cfg.Events.Enabled {
		engineOpts = append(engineOpts, tripservice.WithPublisher(events.NewRedisPublisher(redisClient, events.Config{
			PublishTimeout: time.Duration(cfg.Events.PublishTimeoutSeconds) * time.Second,
		})))
	}
	engine := tripservice.NewEngine(tripStore(cfg, pool, redisClient), engineOpts...)

	fileStorage, err := newFileStorage(startCtx, cfg)
	if err != nil {
		log.Fatalw("Failed to initialize media storage", "backend", cfg.Storage.MediaBackend, "error", err)
	}
	media := mediaservice.NewMediaService(fileStorage, cfg.Media.MaxUploadBytes)

	var pinger services.Pinger
	if pool != nil {
		pinger = pool
	}
	healthService := services.NewHealthService(pinger, redisClient, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:         cfg,
		TripHandler:    handlers.NewTripHandler(engine),
		MediaHandler:   handlers.NewMediaHandler(engine, media),
		WeatherHandler: handlers.NewWeatherHandler(newWeatherService(cfg, redisClient)),
		HealthHandler:  handlers.NewHealthHandler(healthService),
		RedisClient:    redisClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"tripBackend", cfg.Storage.TripBackend,
			"mediaBackend", cfg.Storage.MediaBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Info("Server exited")
}

func tripStore(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) store.TripStore {
	switch cfg.Storage.TripBackend {
	case config.BackendPostgres:
		return postgres.NewTripStore(pool)
	case config.BackendRedis:
		return redisstore.NewTripStore(redisClient)
	default:
		return memory.NewTripStore()
	}
}

func draftStore(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) store.DraftStore {
	switch cfg.Storage.TripBackend {
	case config.BackendPostgres:
		return postgres.NewDraftStore(pool)
	case config.BackendRedis:
		return redisstore.NewDraftStore(redisClient)
	default:
		return memory.NewDraftStore()
	}
}

func newFileStorage(ctx context.Context, cfg *config.Config) (mediaservice.FileStorage, error) {
	if cfg.Storage.MediaBackend == config.BackendS3 {
		return mediaservice.NewS3FileStorage(ctx, cfg.Storage)
	}
	if err := os.MkdirAll(cfg.Storage.LocalDir, 0o755); err != nil {
		return nil, err
	}
	return mediaservice.NewLocalFileStorage(cfg.Storage.LocalDir), nil
}

func newWeatherService(cfg *config.Config, redisClient *redis.Client) *weatherservice.WeatherService {
	w := cfg.Weather
	httpClient := &http.Client{Timeout: w.Timeout + time.Second}

	meteo := openmeteo.NewClient(
		openmeteo.WithHTTPClient(httpClient),
		openmeteo.WithGeocodeURL(w.GeocodeURL),
		openmeteo.WithForecastURL(w.ForecastURL),
	)
	links := []weatherservice.NamedGeocoder{{Name: "open-meteo", Geocoder: meteo}}
	if w.NominatimEnabled {
		links = append(links, weatherservice.NamedGeocoder{
			Name: "nominatim",
			Geocoder: nominatim.NewClient(w.UserAgent,
				nominatim.WithHTTPClient(httpClient),
				nominatim.WithSearchURL(w.NominatimURL)),
		})
	}

	var cache weatherservice.ForecastCache
	if w.CacheBackend == config.BackendRedis {
		cache = redisstore.NewForecastCache(redisClient, w.CacheTTL)
	} else {
		cache = weatherservice.NewMemoryCache(w.CacheTTL, nil)
	}

	return weatherservice.NewWeatherService(
		weatherservice.NewChainGeocoder(links...),
		meteo,
		weatherservice.WithCache(cache),
		weatherservice.WithGeocodePolicy(resilience.Policy{
			Timeout:    w.Timeout,
			MaxRetries: w.GeocodeRetries,
			Backoff:    resilience.LinearBackoff(w.GeocodeBackoff),
		}),
		weatherservice.WithForecastPolicy(resilience.Policy{
			Timeout:    w.Timeout,
			MaxRetries: w.ForecastRetries,
			Backoff:    resilience.LinearBackoff(w.ForecastBackoff),
		}),
	)
}
