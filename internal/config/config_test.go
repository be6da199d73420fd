package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "suryawash.db", cfg.DatabaseURL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.CatalogFetchTimeout)
	assert.Equal(t, 2*time.Second, cfg.PaymentStepDelay)
	assert.Equal(t, 5, cfg.OTPMaxPerWindow)
	assert.False(t, cfg.UseRedis())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("REDIS_ADDR", "redis-a:6379, redis-b:6379")
	t.Setenv("PAYMENT_STEP_DELAY", "0s")
	t.Setenv("OTP_MAX_PER_WINDOW", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://suryamotors.in")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, cfg.RedisAddrs)
	assert.True(t, cfg.UseRedis())
	assert.Equal(t, time.Duration(0), cfg.PaymentStepDelay)
	assert.Equal(t, 3, cfg.OTPMaxPerWindow)
	assert.Equal(t, []string{"https://suryamotors.in"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_TTL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_TTL")

	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("OTP_MAX_PER_WINDOW", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "OTP_MAX_PER_WINDOW")
}

func TestProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("CHALLENGE_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "CHALLENGE_SECRET")

	t.Setenv("CHALLENGE_SECRET", "another-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
