package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://agentpages.dev", cfg.PublicBaseURL)
	assert.Equal(t, 30*time.Second, cfg.StatsTTL)
	assert.Equal(t, 8*time.Second, cfg.CardTimeout)
	assert.True(t, cfg.Migrate)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://example.com/")
	t.Setenv("STATS_TTL", "5s")
	t.Setenv("ADMIN_SECRET", "s3cret")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://example.com", cfg.PublicBaseURL)
	assert.Equal(t, 5*time.Second, cfg.StatsTTL)
	assert.Equal(t, "s3cret", cfg.AdminSecret)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("CRAWL_WORKERS", "many")

	_, err := LoadCrawler()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
