package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("DB_HOST", "localhost")
	v.Set("DB_PORT", 5432)
	v.Set("DB_USER", "bookswap")
	v.Set("DB_NAME", "bookswap")
	v.Set("DB_SSL_MODE", "disable")
	v.Set("JWT_ACCESS_SECRET", strings.Repeat("s", 32))
	v.Set("MATCH_GENERATION_LOCK_TTL_SEC", 60)
	v.Set("MATCH_TRANSFER_LOCK_TTL_SEC", 5)
	v.Set("TRANSFER_RATE_PER_SEC", 1.5)
	v.Set("TRANSFER_RATE_BURST", 3)
	return v
}

func TestFromViper(t *testing.T) {
	cfg, err := fromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Matching.GenerationLockTTL)
	assert.Equal(t, 5*time.Second, cfg.Matching.TransferLockTTL)
	assert.Equal(t, time.Duration(0), cfg.Matching.DefaultMeetingDuration)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 1.5, cfg.RateLimit.TransferPerSecond)
	assert.Equal(t, "host=localhost port=5432 user=bookswap password= dbname=bookswap sslmode=disable", cfg.Database.GetDSN())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		want  string
	}{
		{"missing db host", "DB_HOST", "", "database host is required"},
		{"short secret", "JWT_ACCESS_SECRET", "short", "at least 32 characters"},
		{"zero lock ttl", "MATCH_TRANSFER_LOCK_TTL_SEC", 0, "lock TTLs"},
		{"zero burst", "TRANSFER_RATE_BURST", 0, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := baseViper()
			v.Set(tt.key, tt.value)

			_, err := fromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIsProduction(t *testing.T) {
	assert.False(t, (&ServerConfig{Env: "dev"}).IsProduction())
	assert.True(t, (&ServerConfig{Env: "prod"}).IsProduction())
}

func TestRedisAddr(t *testing.T) {
	assert.Equal(t, "cache:6380", (&RedisConfig{Host: "cache", Port: 6380}).GetAddr())
}
