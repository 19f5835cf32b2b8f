// Package config resolves runtime configuration from a .env file (if present)
// and environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// GatewayURL is the base URL the TUI and CLI talk to.
	GatewayURL string

	// ListenAddr and DBPath configure `anthropide serve`.
	ListenAddr string
	DBPath     string

	// Debounce is the quiescence window before an edit burst is saved.
	Debounce time.Duration
}

// Load reads configuration. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		GatewayURL: envOr("ANTHROPIDE_GATEWAY", "http://127.0.0.1:8089"),
		ListenAddr: envOr("ANTHROPIDE_ADDR", "127.0.0.1:8089"),
		DBPath:     envOr("ANTHROPIDE_DB", ""),
		Debounce:   envDuration("ANTHROPIDE_DEBOUNCE_MS", 500*time.Millisecond),
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return d
	}
	return time.Duration(ms) * time.Millisecond
}
