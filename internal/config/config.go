// Package config loads runtime configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	JWTTTL    time.Duration
}

// Load reads configuration from the environment and performs minimal
// validation. getenv is injectable for tests; pass os.Getenv in production.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:      fallback(getenv("PORT"), "8080"),
		DBPath:    fallback(getenv("DB_PATH"), "./data/splitledger.db"),
		JWTSecret: strings.TrimSpace(getenv("JWT_SECRET")),
	}

	hours := fallback(getenv("JWT_TTL_HOURS"), "24")
	if ttlHours, err := strconv.Atoi(hours); err == nil && ttlHours > 0 {
		cfg.JWTTTL = time.Duration(ttlHours) * time.Hour
	} else {
		cfg.JWTTTL = 24 * time.Hour
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
