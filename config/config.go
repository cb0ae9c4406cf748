// Package config loads TripWeave configuration from the environment (and an
// optional .env file loaded by main) through viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tripweave/tripweave-backend/logger"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendLocal    = "local"
	BackendS3       = "s3"
)

type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// DatabaseConfig holds PostgreSQL connection details. Only used when the
// postgres trip backend is selected.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
	ConnMaxLife    string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// URL for golang-migrate and pgxpool.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// StorageConfig selects where trips and media blobs live.
type StorageConfig struct {
	TripBackend  string `mapstructure:"TRIP_BACKEND" yaml:"trip_backend"`
	MediaBackend string `mapstructure:"MEDIA_BACKEND" yaml:"media_backend"`
	LocalDir     string `mapstructure:"LOCAL_DIR" yaml:"local_dir"`
	S3Bucket     string `mapstructure:"S3_BUCKET" yaml:"s3_bucket"`
	S3Endpoint   string `mapstructure:"S3_ENDPOINT" yaml:"s3_endpoint"`
	S3Region     string `mapstructure:"S3_REGION" yaml:"s3_region"`
	S3AccessKey  string `mapstructure:"S3_ACCESS_KEY" yaml:"s3_access_key"`
	S3SecretKey  string `mapstructure:"S3_SECRET_KEY" yaml:"s3_secret_key"`

	// PresignMinutes bounds the lifetime of media download links.
	PresignMinutes int `mapstructure:"PRESIGN_MINUTES" yaml:"presign_minutes"`
}

// TripsConfig holds the trip engine limits.
type TripsConfig struct {
	RetentionLimit int `mapstructure:"RETENTION_LIMIT" yaml:"retention_limit"`
	ChangeLogLimit int `mapstructure:"CHANGE_LOG_LIMIT" yaml:"change_log_limit"`
	DefaultNights  int `mapstructure:"DEFAULT_NIGHTS" yaml:"default_nights"`
}

// WeatherConfig holds upstream endpoints and the call policy for forecasts.
type WeatherConfig struct {
	GeocodeURL       string        `mapstructure:"GEOCODE_URL" yaml:"geocode_url"`
	ForecastURL      string        `mapstructure:"FORECAST_URL" yaml:"forecast_url"`
	NominatimURL     string        `mapstructure:"NOMINATIM_URL" yaml:"nominatim_url"`
	NominatimEnabled bool          `mapstructure:"NOMINATIM_ENABLED" yaml:"nominatim_enabled"`
	UserAgent        string        `mapstructure:"USER_AGENT" yaml:"user_agent"`
	Timeout          time.Duration `mapstructure:"TIMEOUT" yaml:"timeout"`
	GeocodeRetries   int           `mapstructure:"GEOCODE_RETRIES" yaml:"geocode_retries"`
	GeocodeBackoff   time.Duration `mapstructure:"GEOCODE_BACKOFF" yaml:"geocode_backoff"`
	ForecastRetries  int           `mapstructure:"FORECAST_RETRIES" yaml:"forecast_retries"`
	ForecastBackoff  time.Duration `mapstructure:"FORECAST_BACKOFF" yaml:"forecast_backoff"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL" yaml:"cache_ttl"`
	CacheBackend     string        `mapstructure:"CACHE_BACKEND" yaml:"cache_backend"`
}

type MediaConfig struct {
	MaxUploadBytes int64 `mapstructure:"MAX_UPLOAD_BYTES" yaml:"max_upload_bytes"`
}

// RemoteMetaConfig points at the hosted document store that mirrors trip
// metadata for other devices.
type RemoteMetaConfig struct {
	Enabled     bool   `mapstructure:"ENABLED" yaml:"enabled"`
	SupabaseURL string `mapstructure:"SUPABASE_URL" yaml:"supabase_url"`
	SupabaseKey string `mapstructure:"SUPABASE_KEY" yaml:"supabase_key"`
	Table       string `mapstructure:"TABLE" yaml:"table"`
}

type RateLimitConfig struct {
	WeatherRequestsPerMinute int `mapstructure:"WEATHER_REQUESTS_PER_MINUTE" yaml:"weather_requests_per_minute"`
	WindowSeconds            int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

type EventsConfig struct {
	Enabled               bool `mapstructure:"ENABLED" yaml:"enabled"`
	PublishTimeoutSeconds int  `mapstructure:"PUBLISH_TIMEOUT_SECONDS" yaml:"publish_timeout_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Storage    StorageConfig    `mapstructure:"STORAGE" yaml:"storage"`
	Trips      TripsConfig      `mapstructure:"TRIPS" yaml:"trips"`
	Weather    WeatherConfig    `mapstructure:"WEATHER" yaml:"weather"`
	Media      MediaConfig      `mapstructure:"MEDIA" yaml:"media"`
	RemoteMeta RemoteMetaConfig `mapstructure:"REMOTE_META" yaml:"remote_meta"`
	RateLimit  RateLimitConfig  `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	Events     EventsConfig     `mapstructure:"EVENTS" yaml:"events"`
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// NeedsRedis reports whether any configured component talks to redis.
func (c *Config) NeedsRedis() bool {
	return c.Storage.TripBackend == BackendRedis ||
		c.Weather.CacheBackend == BackendRedis ||
		c.Events.Enabled ||
		c.RateLimit.WeatherRequestsPerMinute > 0
}

// bindEnvVars binds {configKey, envVar} pairs.
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")

	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "tripweave")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")

	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 5)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)

	v.SetDefault("STORAGE.TRIP_BACKEND", BackendMemory)
	v.SetDefault("STORAGE.MEDIA_BACKEND", BackendLocal)
	v.SetDefault("STORAGE.LOCAL_DIR", "./data/media")
	v.SetDefault("STORAGE.S3_REGION", "auto")
	v.SetDefault("STORAGE.PRESIGN_MINUTES", 15)

	v.SetDefault("TRIPS.RETENTION_LIMIT", 5)
	v.SetDefault("TRIPS.CHANGE_LOG_LIMIT", 200)
	v.SetDefault("TRIPS.DEFAULT_NIGHTS", 4)

	v.SetDefault("WEATHER.GEOCODE_URL", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("WEATHER.FORECAST_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("WEATHER.NOMINATIM_URL", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("WEATHER.NOMINATIM_ENABLED", true)
	v.SetDefault("WEATHER.USER_AGENT", "TripWeave/1.0")
	v.SetDefault("WEATHER.TIMEOUT", 7*time.Second)
	v.SetDefault("WEATHER.GEOCODE_RETRIES", 1)
	v.SetDefault("WEATHER.GEOCODE_BACKOFF", 250*time.Millisecond)
	v.SetDefault("WEATHER.FORECAST_RETRIES", 2)
	v.SetDefault("WEATHER.FORECAST_BACKOFF", 400*time.Millisecond)
	v.SetDefault("WEATHER.CACHE_TTL", 3*time.Hour)
	v.SetDefault("WEATHER.CACHE_BACKEND", BackendMemory)

	v.SetDefault("MEDIA.MAX_UPLOAD_BYTES", int64(250*1024*1024))

	v.SetDefault("REMOTE_META.ENABLED", false)
	v.SetDefault("REMOTE_META.TABLE", "trips")

	v.SetDefault("RATE_LIMIT.WEATHER_REQUESTS_PER_MINUTE", 0)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)

	v.SetDefault("EVENTS.ENABLED", false)
	v.SetDefault("EVENTS.PUBLISH_TIMEOUT_SECONDS", 5)
}

var envBindings = [][2]string{
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "SERVER_VERSION"},
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	{"STORAGE.TRIP_BACKEND", "TRIP_BACKEND"},
	{"STORAGE.MEDIA_BACKEND", "MEDIA_BACKEND"},
	{"STORAGE.LOCAL_DIR", "MEDIA_LOCAL_DIR"},
	{"STORAGE.S3_BUCKET", "S3_BUCKET"},
	{"STORAGE.S3_ENDPOINT", "S3_ENDPOINT"},
	{"STORAGE.S3_REGION", "S3_REGION"},
	{"STORAGE.S3_ACCESS_KEY", "S3_ACCESS_KEY"},
	{"STORAGE.S3_SECRET_KEY", "S3_SECRET_KEY"},
	{"TRIPS.RETENTION_LIMIT", "TRIPS_RETENTION_LIMIT"},
	{"TRIPS.CHANGE_LOG_LIMIT", "TRIPS_CHANGE_LOG_LIMIT"},
	{"TRIPS.DEFAULT_NIGHTS", "TRIPS_DEFAULT_NIGHTS"},
	{"WEATHER.GEOCODE_URL", "WEATHER_GEOCODE_URL"},
	{"WEATHER.FORECAST_URL", "WEATHER_FORECAST_URL"},
	{"WEATHER.NOMINATIM_URL", "WEATHER_NOMINATIM_URL"},
	{"WEATHER.NOMINATIM_ENABLED", "WEATHER_NOMINATIM_ENABLED"},
	{"WEATHER.TIMEOUT", "WEATHER_TIMEOUT"},
	{"WEATHER.CACHE_TTL", "WEATHER_CACHE_TTL"},
	{"WEATHER.CACHE_BACKEND", "WEATHER_CACHE_BACKEND"},
	{"MEDIA.MAX_UPLOAD_BYTES", "MEDIA_MAX_UPLOAD_BYTES"},
	{"REMOTE_META.ENABLED", "REMOTE_META_ENABLED"},
	{"REMOTE_META.SUPABASE_URL", "SUPABASE_URL"},
	{"REMOTE_META.SUPABASE_KEY", "SUPABASE_SERVICE_KEY"},
	{"RATE_LIMIT.WEATHER_REQUESTS_PER_MINUTE", "RATE_LIMIT_WEATHER_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	{"EVENTS.ENABLED", "EVENTS_ENABLED"},
	{"EVENTS.PUBLISH_TIMEOUT_SECONDS", "EVENTS_PUBLISH_TIMEOUT_SECONDS"},
}

// LoadConfig reads defaults and environment overrides, then validates.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"trip_backend", cfg.Storage.TripBackend,
		"media_backend", cfg.Storage.MediaBackend,
		"weather_cache", cfg.Weather.CacheBackend,
		"remote_meta", cfg.RemoteMeta.Enabled,
	)
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	switch cfg.Storage.TripBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database host and name are required for the postgres trip backend")
		}
		if cfg.Database.Password == "" {
			log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
		}
	default:
		return fmt.Errorf("unknown trip backend %q", cfg.Storage.TripBackend)
	}

	switch cfg.Storage.MediaBackend {
	case BackendLocal:
		if cfg.Storage.LocalDir == "" {
			return fmt.Errorf("local media directory is required")
		}
	case BackendS3:
		if cfg.Storage.S3Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("unknown media backend %q", cfg.Storage.MediaBackend)
	}

	if cfg.NeedsRedis() && cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if cfg.Trips.RetentionLimit <= 0 {
		return fmt.Errorf("trip retention limit must be positive")
	}
	if cfg.Trips.ChangeLogLimit <= 0 {
		return fmt.Errorf("change log limit must be positive")
	}
	if cfg.Trips.DefaultNights < 0 {
		return fmt.Errorf("default nights cannot be negative")
	}

	if err := validateWeatherConfig(&cfg.Weather); err != nil {
		return err
	}

	if cfg.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("media max upload bytes must be positive")
	}

	if cfg.RemoteMeta.Enabled {
		if cfg.RemoteMeta.SupabaseURL == "" || cfg.RemoteMeta.SupabaseKey == "" {
			log.Warn("Remote metadata enabled without supabase credentials, disabling it")
			cfg.RemoteMeta.Enabled = false
		}
	}

	if cfg.RateLimit.WeatherRequestsPerMinute < 0 {
		return fmt.Errorf("weather rate limit cannot be negative")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}
	if cfg.Events.PublishTimeoutSeconds <= 0 {
		return fmt.Errorf("event publish timeout must be positive")
	}
	return nil
}

func validateWeatherConfig(w *WeatherConfig) error {
	for name, raw := range map[string]string{"geocode": w.GeocodeURL, "forecast": w.ForecastURL} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid weather %s URL: %w", name, err)
		}
	}
	if w.Timeout <= 0 {
		return fmt.Errorf("weather timeout must be positive")
	}
	if w.GeocodeRetries < 0 || w.ForecastRetries < 0 {
		return fmt.Errorf("weather retries cannot be negative")
	}
	if w.CacheTTL <= 0 {
		return fmt.Errorf("weather cache TTL must be positive")
	}
	if w.CacheBackend != BackendMemory && w.CacheBackend != BackendRedis {
		return fmt.Errorf("unknown weather cache backend %q", w.CacheBackend)
	}
	return nil
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
