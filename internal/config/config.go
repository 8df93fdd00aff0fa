package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API reads from the environment.
type Config struct {
	Port            string
	DatabaseDSN     string
	RedisURL        string
	JWTSecret       string
	JWTTTL          time.Duration
	FrontendURL     string
	RateLimitMax    int
	RateLimitWindow time.Duration
	StatsCacheTTL   time.Duration
	GinMode         string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:        withDefault(getenv("PORT"), "8080"),
		DatabaseDSN: getenv("DB_DSN_PRIMARY"),
		RedisURL:    getenv("REDIS_URL"),
		JWTSecret:   getenv("JWT_SECRET"),
		FrontendURL: withDefault(getenv("FRONTEND_URL"), "http://localhost:3000"),
		GinMode:     getenv("GIN_MODE"),
	}

	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DB_DSN_PRIMARY environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}

	var err error
	if cfg.JWTTTL, err = parseDuration(getenv, "JWT_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = parseDuration(getenv, "RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StatsCacheTTL, err = parseDuration(getenv, "STATS_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}

	cfg.RateLimitMax = 100
	if v := getenv("RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("RATE_LIMIT_MAX must be a positive integer, got %q", v)
		}
		cfg.RateLimitMax = n
	}

	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
