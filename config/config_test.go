package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("SERVER_PORT", "")
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "portal-events", cfg.KafkaTopic)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxFileBytes)
	assert.Equal(t, 10, cfg.LoginPerMin)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("SERVER_PORT", ":8080")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MAX_FILE_BYTES", "1024")
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerPort)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, int64(1024), cfg.MaxFileBytes)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
