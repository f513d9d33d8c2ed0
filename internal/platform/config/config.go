// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the full runtime configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	TokenTTL      time.Duration

	// APIKeys maps caller IDs to bcrypt hashes of their API keys, parsed
	// from "caller:hash" pairs.
	APIKeys map[string]string

	Redis RedisConfig

	ChunkSize   int
	ChunkPacing time.Duration
	CallTimeout time.Duration
	MaxNumbers  int

	SessionTTL time.Duration

	// CheckerSeed pins the simulated checker backend. Real deployments
	// replace the backend entirely and ignore this.
	CheckerSeed uint64
}

// RedisConfig carries connection settings for the optional Redis session
// store. An empty URL means sessions stay in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("NUMCHECK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("NUMCHECK_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default, must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		LogLevel:      envString("NUMCHECK_LOG_LEVEL", "info"),
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      envDuration("NUMCHECK_TOKEN_TTL", time.Hour),
		APIKeys:       parseAPIKeys(os.Getenv("NUMCHECK_API_KEYS")),
		Redis: RedisConfig{
			URL:          os.Getenv("NUMCHECK_REDIS_URL"),
			PoolSize:     envInt("NUMCHECK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("NUMCHECK_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("NUMCHECK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("NUMCHECK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("NUMCHECK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		ChunkSize:   envInt("NUMCHECK_CHUNK_SIZE", 10),
		ChunkPacing: envDuration("NUMCHECK_CHUNK_PACING", 100*time.Millisecond),
		CallTimeout: envDuration("NUMCHECK_CALL_TIMEOUT", 5*time.Second),
		MaxNumbers:  envInt("NUMCHECK_MAX_NUMBERS", 1000),
		SessionTTL:  envDuration("NUMCHECK_SESSION_TTL", 24*time.Hour),
		CheckerSeed: uint64(envInt("NUMCHECK_CHECKER_SEED", 1)),
	}
}

// Validate catches configuration mistakes at startup rather than mid-run.
func (s Server) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", s.ChunkSize)
	}
	if s.MaxNumbers <= 0 {
		return fmt.Errorf("max numbers must be positive, got %d", s.MaxNumbers)
	}
	if s.CallTimeout <= 0 {
		return fmt.Errorf("call timeout must be positive, got %s", s.CallTimeout)
	}
	if len(s.APIKeys) == 0 {
		return fmt.Errorf("no API keys configured, set NUMCHECK_API_KEYS")
	}
	return nil
}

// parseAPIKeys splits "caller:bcrypt-hash" pairs separated by commas. Bcrypt
// hashes never contain colons or commas, so plain splitting is safe.
func parseAPIKeys(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		caller, hash, ok := strings.Cut(pair, ":")
		if !ok || caller == "" || hash == "" {
			continue
		}
		keys[caller] = hash
	}
	return keys
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
