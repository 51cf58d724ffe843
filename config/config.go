package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the fully resolved runtime configuration. It is built once
// at startup and passed explicitly; nothing reads the environment after
// Load returns.
type Config struct {
	SheetID            string
	ServiceAccountFile string
	Games              string
	PollInterval       time.Duration
}

// Load reads configuration from a .env file next to the executable,
// falling back to the working directory and then to plain environment
// variables.
func Load() *Config {
	if !loadDotenv() {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	// Parse poll interval, default 5 seconds
	interval, err := strconv.Atoi(os.Getenv("POLL_INTERVAL_SECONDS"))
	if err != nil || interval < 1 {
		interval = 5
	}

	return &Config{
		SheetID:            getEnv("GOOGLE_SHEET_ID", ""),
		ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		Games:              getEnv("GAMES", ""),
		PollInterval:       time.Duration(interval) * time.Second,
	}
}

// loadDotenv tries the executable's directory first so the background
// watcher finds its .env no matter what directory it was launched from.
func loadDotenv() bool {
	if exe, err := os.Executable(); err == nil {
		if err := godotenv.Load(filepath.Join(filepath.Dir(exe), ".env")); err == nil {
			return true
		}
	}
	return godotenv.Load() == nil
}

// getEnv fetches an env var with a fallback.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
