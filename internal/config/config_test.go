package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, 60, cfg.RateLimitWindow)
	assert.Equal(t, 30, cfg.RateLimitMax)
	assert.Equal(t, 10, cfg.AnomalyWindow)
	assert.Equal(t, 8.0, cfg.AnomalyTolerance)
	assert.Equal(t, 0, cfg.RetentionDays)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_LISTEN_ADDR", ":9000")
	t.Setenv("RATE_LIMIT_WINDOW", "120")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("ANOMALY_WINDOW", "20")
	t.Setenv("ANOMALY_TOLERANCE", "3.5")
	t.Setenv("RETENTION_DAYS", "14")
	t.Setenv("BLOCKCHAIN_RPC", "http://localhost:8545")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 120, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 20, cfg.AnomalyWindow)
	assert.Equal(t, 3.5, cfg.AnomalyTolerance)
	assert.Equal(t, 14, cfg.RetentionDays)
	assert.Equal(t, "http://localhost:8545", cfg.BlockchainRPC)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-number")
	t.Setenv("RATE_LIMIT_MAX", "-3")
	t.Setenv("ANOMALY_TOLERANCE", "0")

	cfg := Load()

	assert.Equal(t, 60, cfg.RateLimitWindow)
	assert.Equal(t, 30, cfg.RateLimitMax)
	assert.Equal(t, 8.0, cfg.AnomalyTolerance)
}
