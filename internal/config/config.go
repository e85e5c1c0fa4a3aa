// internal/config/config.go
//
// Process configuration for the Quartiles server.
// Values come from the environment, optionally seeded from a `.env` file in
// development. Missing or unparsable values fall back to defaults; Validate
// reports values that parse but make no sense.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port         string
	LogLevel     string
	WordsFile    string // empty → embedded default list
	ClientOrigin string
	JWTSecret    string
	SessionTTL   time.Duration
	DailySalt    string

	GenMaxAttempts int
	GenTimeout     time.Duration
	OracleWorkers  int
	PregenWorkers  int
	PregenQueue    int
}

// Load reads configuration from a .env file (if present) and environment
// variables.
func Load() Config {
	// .env is optional; production sets the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:           envOr("PORT", "5175"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		WordsFile:      envOr("WORDS_FILE", ""),
		ClientOrigin:   envOr("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:      envOr("JWT_SECRET", "dev_secret_change_me"),
		SessionTTL:     envDurationOr("SESSION_TTL", 24*time.Hour),
		DailySalt:      envOr("DAILY_SALT", "local_dev_salt"),
		GenMaxAttempts: envIntOr("GEN_MAX_ATTEMPTS", 500),
		GenTimeout:     envDurationOr("GEN_TIMEOUT", 20*time.Second),
		OracleWorkers:  envIntOr("ORACLE_WORKERS", 4),
		PregenWorkers:  envIntOr("PREGEN_WORKERS", 1),
		PregenQueue:    envIntOr("PREGEN_QUEUE", 4),
	}
}

// Validate returns every configuration problem joined into one error.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT cannot be empty"))
	} else if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET cannot be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.GenMaxAttempts < 1 {
		errs = append(errs, errors.New("GEN_MAX_ATTEMPTS must be at least 1"))
	}
	if c.GenTimeout <= 0 {
		errs = append(errs, errors.New("GEN_TIMEOUT must be positive"))
	}
	if c.OracleWorkers < 1 {
		errs = append(errs, errors.New("ORACLE_WORKERS must be at least 1"))
	}
	if c.PregenWorkers < 1 {
		errs = append(errs, errors.New("PREGEN_WORKERS must be at least 1"))
	}
	if c.PregenQueue < 1 {
		errs = append(errs, errors.New("PREGEN_QUEUE must be at least 1"))
	}
	return errors.Join(errs...)
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
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid integer, using default")
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
	}
	return def
}
