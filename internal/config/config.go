// Package config loads qkv-server's process configuration from
// environment variables, in the same spirit as the teacher's
// internal/env package: small, declarative, no external config library.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the fully-resolved process configuration.
type Config struct {
	Env string // "dev" or "prod"

	HTTPAddr string

	RedisAddr string
	RedisDB   int

	// DefaultFill is the fill factor internal/kvservice passes to every
	// list operation on every key: a plain non-negative per-node entry-count
	// ceiling (internal/quicklist never implements ziplist's
	// negative-means-byte-size sentinel).
	DefaultFill int
	// MaxNodeBytes caps a single block's byte size regardless of fill
	// factor, the same role plain-node-size capping plays in the
	// original quicklist.
	MaxNodeBytes int

	AdminUsername string
	AdminPassword string
	SessionSecret string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	c := &Config{
		Env:           getEnv("QKV_ENV", "prod"),
		HTTPAddr:      getEnv("QKV_HTTP_ADDR", "127.0.0.1:8080"),
		RedisAddr:     getEnv("QKV_REDIS_ADDR", "127.0.0.1:6379"),
		AdminUsername: getEnv("QKV_ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("QKV_ADMIN_PASSWORD", ""),
		SessionSecret: getEnv("QKV_SESSION_SECRET", ""),
	}

	var err error
	if c.RedisDB, err = getEnvInt("QKV_REDIS_DB", 0); err != nil {
		return nil, err
	}
	if c.DefaultFill, err = getEnvInt("QKV_DEFAULT_FILL", 128); err != nil {
		return nil, err
	}
	if c.MaxNodeBytes, err = getEnvInt("QKV_MAX_NODE_BYTES", 8*1024); err != nil {
		return nil, err
	}

	if c.Env != "dev" && c.AdminPassword == "" {
		return nil, fmt.Errorf("QKV_ADMIN_PASSWORD must be set outside dev")
	}
	if c.Env != "dev" && c.SessionSecret == "" {
		return nil, fmt.Errorf("QKV_SESSION_SECRET must be set outside dev")
	}

	return c, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}
