package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Dashboard holds the dashboard reader settings, populated from environment
// variables.
type Dashboard struct {
	DatabaseURL  string
	QueryTimeout time.Duration

	ForecastCacheTTL time.Duration
	AlertCacheTTL    time.Duration
	CacheSize        int
	RedisURL         string

	AlertWindow time.Duration

	HTTPAddr        string
	ShutdownTimeout time.Duration
	Logging         Logging
}

// LoadDashboard reads dashboard configuration from environment variables,
// applying defaults where unset.
func LoadDashboard() (*Dashboard, error) {
	loadDotenv()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	queryTimeout, err := parseDuration("QUERY_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	forecastTTL, err := parseDuration("FORECAST_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	alertTTL, err := parseDuration("ALERT_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}
	alertWindow, err := parseDuration("ALERT_WINDOW", "24h")
	if err != nil {
		return nil, err
	}

	cfg := &Dashboard{
		DatabaseURL:      sharedcfg.EnvOrDefault("DATABASE_URL", "postgres://localhost:5432/weather_project?sslmode=disable"),
		QueryTimeout:     queryTimeout,
		ForecastCacheTTL: forecastTTL,
		AlertCacheTTL:    alertTTL,
		CacheSize:        cacheSize,
		RedisURL:         os.Getenv("REDIS_URL"),
		AlertWindow:      alertWindow,
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  shutdownTimeout,
		Logging:          loadLogging(),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}
