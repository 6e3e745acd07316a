// Package config loads the engine's environment-driven runtime knobs:
// persistence connection details and routing/pricing defaults. Modeled
// on the getEnv*/Config pattern of chidi150c-coinbase's env.go and
// config.go.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "y", "yes":
		return true
	case "0", "false", "n", "no":
		return false
	default:
		return def
	}
}

// Config holds every runtime knob the engine reads from the environment.
type Config struct {
	// Persistence (Redis)
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	RedisTLS      bool
	RedisRPS      int // rate limit applied to the store's Redis client

	// Routing/pricing defaults
	MaxHops           int
	MaxBinTraversal   int
	DefaultFeeRate    float64
	TokenGraphVersion string

	// Caching TTLs — caching policy knobs for an external cache manager;
	// this process never caches these itself.
	TokenGraphTTL time.Duration
	PoolMetaTTL   time.Duration

	// HTTP surface
	HTTPPort int
}

// Load reads the process environment and returns a Config with its
// documented defaults.
func Load() Config {
	return Config{
		RedisHost:         getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:         getEnvInt("REDIS_PORT", 6379),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvBool("REDIS_TLS", false),
		RedisRPS:          getEnvInt("REDIS_RPS", 200),
		MaxHops:           getEnvInt("MAX_HOPS", 3),
		MaxBinTraversal:   getEnvInt("MAX_BIN_TRAVERSAL", 1000),
		DefaultFeeRate:    getEnvFloat("DEFAULT_FEE_RATE", 0.001),
		TokenGraphVersion: getEnv("TOKEN_GRAPH_VERSION", "latest"),
		TokenGraphTTL:     time.Duration(getEnvInt("TOKEN_GRAPH_TTL_SECONDS", 120)) * time.Second,
		PoolMetaTTL:       time.Duration(getEnvInt("POOL_META_TTL_MS", 1500)) * time.Millisecond,
		HTTPPort:          getEnvInt("PORT", 8080),
	}
}
