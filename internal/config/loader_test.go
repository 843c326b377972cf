package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\nlog_level: debug\njwt_ttl: 1h\n"), 0o600))

	t.Setenv("GHOSTCORD_LOG_LEVEL", "warn")
	t.Setenv("GHOSTCORD_REQUIRE_TOKEN", "true")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.RequireToken)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, Default().DatabasePath, cfg.DatabasePath)
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", DatabasePath: "other.db"})

	assert.Equal(t, ":1234", cfg.Addr)
	assert.Equal(t, "other.db", cfg.DatabasePath)
	assert.Equal(t, Default().ShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoadUsesDefaultPathEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	t.Setenv("GHOSTCORD_CONFIG_DEFAULT_PATH", dir)

	_, resolved, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), resolved)

	_, err = os.Stat(resolved)
	require.NoError(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: \"\"\njwt_ttl: 0s\n"), 0o600))

	_, _, err := Load(nil, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret is empty")
	assert.Contains(t, err.Error(), "jwt_ttl must be positive")
}
