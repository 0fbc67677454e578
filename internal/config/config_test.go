package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Blank numbers fall back to defaults.
	for _, key := range []string{"ENVIRONMENT", "DATABASE_URL", "ALLOWED_ORIGINS", "OUTBOX_SIZE", "LOBBY_TTL_MINUTES"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "9090")
	t.Setenv("CALL_TIMEOUT_MS", " ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.CallTimeout)
	assert.Equal(t, time.Hour, cfg.LobbyTTL)
	assert.Equal(t, 32, cfg.OutboxSize)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CALL_TIMEOUT_MS", "250")
	t.Setenv("OUTBOX_SIZE", "4")
	t.Setenv("CLEANUP_INTERVAL_MINUTES", "5")
	t.Setenv("LOBBY_TTL_MINUTES", "60")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.CallTimeout)
	assert.Equal(t, 4, cfg.OutboxSize)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
}

func TestLoad_RejectsNonPositive(t *testing.T) {
	t.Setenv("OUTBOX_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsMalformedNumbers(t *testing.T) {
	t.Setenv("CALL_TIMEOUT_MS", "abc")
	t.Setenv("LOBBY_TTL_MINUTES", "1h")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `CALL_TIMEOUT_MS must be an integer, got "abc"`)
	assert.Contains(t, err.Error(), "LOBBY_TTL_MINUTES")
}
