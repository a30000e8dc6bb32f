package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Logging holds the log sink settings shared by both processes.
type Logging struct {
	Level  string
	Format string

	// File sink, used by the runner only. An empty Dir disables it.
	Dir        string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// loadDotenv reads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func loadDotenv() {
	_ = godotenv.Load()
}

func loadLogging() Logging {
	return Logging{
		Level:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		Format: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
	}
}

// parseDuration reads a positive duration from key, falling back to def.
func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

// parsePositiveInt reads a positive integer from key, falling back to def.
func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
