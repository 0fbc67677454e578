package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port           string
	Environment    string
	AllowedOrigins []string

	// Storage. An empty DatabaseURL keeps everything in memory.
	DatabaseURL string
	PlayersFile string

	// Rooms
	CallTimeout time.Duration
	OutboxSize  int

	// Cleanup
	LobbyTTL        time.Duration
	CleanupInterval time.Duration
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	envInt := func(key string, fallback int) int {
		n, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		PlayersFile:     getEnv("PLAYERS_FILE", ""),
		CallTimeout:     time.Duration(envInt("CALL_TIMEOUT_MS", 3000)) * time.Millisecond,
		OutboxSize:      envInt("OUTBOX_SIZE", 32),
		LobbyTTL:        time.Duration(envInt("LOBBY_TTL_MINUTES", 60)) * time.Minute,
		CleanupInterval: time.Duration(envInt("CLEANUP_INTERVAL_MINUTES", 60)) * time.Minute,
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.CallTimeout <= 0 {
		return nil, fmt.Errorf("CALL_TIMEOUT_MS must be positive")
	}
	if cfg.OutboxSize <= 0 {
		return nil, fmt.Errorf("OUTBOX_SIZE must be positive")
	}
	if cfg.LobbyTTL <= 0 || cfg.CleanupInterval <= 0 {
		return nil, fmt.Errorf("LOBBY_TTL_MINUTES and CLEANUP_INTERVAL_MINUTES must be positive")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt returns fallback for an unset or blank key and an error for a
// value that is not an integer.
func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
