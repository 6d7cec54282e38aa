package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend   BackendConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Learners  LearnersConfig
	Exports   ExportsConfig
}

// BackendConfig points the gateway at the upstream LMS REST API.
type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ServiceToken string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard aggregation and cache tuning.
type DashboardConfig struct {
	Enabled    bool
	CacheTTL   time.Duration
	SampleSize int
}

// LearnersConfig tunes server-side browse sessions.
type LearnersConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	SessionTTL      time.Duration
}

// ExportsConfig controls background report exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
	WalkPageSize      int
	WalkMaxPages      int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		BaseURL:      strings.TrimRight(v.GetString("LMS_BACKEND_URL"), "/"),
		Timeout:      parseDuration(v.GetString("LMS_BACKEND_TIMEOUT"), 15*time.Second),
		ServiceToken: v.GetString("LMS_BACKEND_TOKEN"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:    v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL:   parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		SampleSize: v.GetInt("DASHBOARD_SAMPLE_SIZE"),
	}

	cfg.Learners = LearnersConfig{
		DefaultPageSize: v.GetInt("LEARNERS_DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("LEARNERS_MAX_PAGE_SIZE"),
		SessionTTL:      parseDuration(v.GetString("LEARNERS_SESSION_TTL"), 30*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
		WalkPageSize:      v.GetInt("EXPORTS_WALK_PAGE_SIZE"),
		WalkMaxPages:      v.GetInt("EXPORTS_WALK_MAX_PAGES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LMS_BACKEND_URL", "http://localhost:3000")
	v.SetDefault("LMS_BACKEND_TIMEOUT", "15s")
	v.SetDefault("LMS_BACKEND_TOKEN", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_SAMPLE_SIZE", 1000)

	v.SetDefault("LEARNERS_DEFAULT_PAGE_SIZE", 50)
	v.SetDefault("LEARNERS_MAX_PAGE_SIZE", 200)
	v.SetDefault("LEARNERS_SESSION_TTL", "30m")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
	v.SetDefault("EXPORTS_WALK_PAGE_SIZE", 1000)
	v.SetDefault("EXPORTS_WALK_MAX_PAGES", 10000)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
