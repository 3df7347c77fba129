package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string
	// Timezone names the IANA zone whose calendar days drive streaks and "today".
	Timezone string

	WorkerCount     int
	WorkerQueueSize int

	MaxUpdateRetries int
	// StreakSweepAt is the HH:MM wall-clock time of the nightly streak sweep.
	StreakSweepAt string

	DefaultSessionMinutes int
	MaxSessionCards       int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:flashdeck.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		Timezone:              envOr("TIMEZONE", "UTC"),
		WorkerCount:           envIntOr("WORKER_COUNT", 2),
		WorkerQueueSize:       envIntOr("WORKER_QUEUE_SIZE", 16),
		MaxUpdateRetries:      envIntOr("MAX_UPDATE_RETRIES", 3),
		StreakSweepAt:         envOr("STREAK_SWEEP_AT", "00:05"),
		DefaultSessionMinutes: envIntOr("DEFAULT_SESSION_MINUTES", 15),
		MaxSessionCards:       envIntOr("MAX_SESSION_CARDS", 50),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		errs = append(errs, fmt.Errorf("TIMEZONE %q is not a known location", c.Timezone))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be at least 1 (got %d)", c.WorkerCount))
	}
	if c.WorkerQueueSize < 1 {
		errs = append(errs, fmt.Errorf("WORKER_QUEUE_SIZE must be at least 1 (got %d)", c.WorkerQueueSize))
	}
	if c.MaxUpdateRetries < 1 {
		errs = append(errs, fmt.Errorf("MAX_UPDATE_RETRIES must be at least 1 (got %d)", c.MaxUpdateRetries))
	}
	if _, err := time.Parse("15:04", c.StreakSweepAt); err != nil {
		errs = append(errs, fmt.Errorf("STREAK_SWEEP_AT must be HH:MM (got %q)", c.StreakSweepAt))
	}
	if c.DefaultSessionMinutes < 1 {
		errs = append(errs, fmt.Errorf("DEFAULT_SESSION_MINUTES must be at least 1 (got %d)", c.DefaultSessionMinutes))
	}
	if c.MaxSessionCards < 1 {
		errs = append(errs, fmt.Errorf("MAX_SESSION_CARDS must be at least 1 (got %d)", c.MaxSessionCards))
	}

	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil && c.Timezone != "" {
		return loc
	}
	return time.UTC
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
