package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"DB_DSN_PRIMARY": "user:pass@tcp(localhost:3306)/yourqueen?parseTime=true",
		"JWT_SECRET":     "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, time.Minute, cfg.StatsCacheTTL)
	assert.Empty(t, cfg.RedisURL)
}

func TestFromEnvErrors(t *testing.T) {
	base := map[string]string{"DB_DSN_PRIMARY": "dsn", "JWT_SECRET": "s"}
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing dsn", "DB_DSN_PRIMARY", ""},
		{"missing secret", "JWT_SECRET", ""},
		{"bad ttl", "JWT_TTL", "three days"},
		{"negative window", "RATE_LIMIT_WINDOW", "-1m"},
		{"zero limit", "RATE_LIMIT_MAX", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range base {
				env[k] = v
			}
			env[tc.key] = tc.val
			_, err := FromEnv(lookup(env))
			assert.Error(t, err)
		})
	}
}
