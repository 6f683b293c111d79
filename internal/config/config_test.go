package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "PointsLedger", cfg.AppName)
	assert.Equal(t, ":8000", cfg.Address())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "points.events", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Zero(t, cfg.SpendRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("PORT", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("SPEND_RATE_LIMIT_PER_MIN", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, 30, cfg.SpendRateLimit)
}

func TestLoadSecondsOverrideTakesPrecedence(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.ShutdownPeriod)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresRedisOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	require.ErrorContains(t, err, "REDIS_URL")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDev())
}
