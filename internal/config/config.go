// Package config loads service configuration from environment
// variables. Configuration is read once at startup and treated as
// immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything cmd/authd needs to wire the service.
type Config struct {
	// Server
	Addr string

	// Database; empty means the in-memory development store.
	DatabaseURL string

	// Tokens
	AuthSecret  string
	TokenTTL    time.Duration
	TokenIssuer string

	// Pipeline
	LoginPath string
	// Extra public path prefixes on top of the built-in set
	// (/ping, /healthz, /readyz, /metrics and the login path).
	PublicPrefixes []string

	// HTTP hardening
	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// Load reads configuration from WISHOP_* environment variables.
// WISHOP_AUTH_SECRET is required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.AuthSecret = strings.TrimSpace(os.Getenv("WISHOP_AUTH_SECRET"))
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("required environment variable is not set: WISHOP_AUTH_SECRET")
	}

	cfg.Addr = getEnvString("WISHOP_ADDR", ":8080")
	cfg.DatabaseURL = os.Getenv("WISHOP_PG_DSN")
	cfg.TokenTTL = getEnvDuration("WISHOP_TOKEN_TTL", 15*time.Minute)
	cfg.TokenIssuer = getEnvString("WISHOP_TOKEN_ISSUER", "wishop-authd")
	cfg.LoginPath = getEnvString("WISHOP_LOGIN_PATH", "/login")
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return nil, fmt.Errorf("WISHOP_LOGIN_PATH must start with /: %q", cfg.LoginPath)
	}
	cfg.PublicPrefixes = splitList(os.Getenv("WISHOP_PUBLIC_PREFIXES"))
	cfg.RateBurst = getEnvInt("WISHOP_RATE_BURST", 50)
	cfg.RatePerSecond = getEnvInt("WISHOP_RATE_PER_SECOND", 25)
	cfg.MaxBodyBytes = getEnvInt64("WISHOP_MAX_BODY_BYTES", 1<<20)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
