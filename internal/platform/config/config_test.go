package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10, cfg.ChunkSize)
	assert.Equal(t, 100*time.Millisecond, cfg.ChunkPacing)
	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.Equal(t, 1000, cfg.MaxNumbers)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("NUMCHECK_ADDR", ":9999")
	t.Setenv("NUMCHECK_CHUNK_SIZE", "25")
	t.Setenv("NUMCHECK_CHUNK_PACING", "250ms")
	t.Setenv("NUMCHECK_REDIS_URL", "redis://localhost:6379/0")

	cfg := FromEnv()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 25, cfg.ChunkSize)
	assert.Equal(t, 250*time.Millisecond, cfg.ChunkPacing)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("NUMCHECK_CHUNK_SIZE", "lots")
	t.Setenv("NUMCHECK_CHUNK_PACING", "soonish")

	cfg := FromEnv()
	assert.Equal(t, 10, cfg.ChunkSize)
	assert.Equal(t, 100*time.Millisecond, cfg.ChunkPacing)
}

func TestParseAPIKeys(t *testing.T) {
	keys := parseAPIKeys("alice:$2a$10$abc, bob:$2a$10$def ,, :broken,nohash:")
	require.Len(t, keys, 2)
	assert.Equal(t, "$2a$10$abc", keys["alice"])
	assert.Equal(t, "$2a$10$def", keys["bob"])
}

func TestValidate(t *testing.T) {
	t.Setenv("NUMCHECK_API_KEYS", "alice:$2a$10$abc")
	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.ChunkSize = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.APIKeys = nil
	assert.Error(t, bad.Validate())
}
