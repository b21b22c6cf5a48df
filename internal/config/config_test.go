package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/pkg/numerator"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 20*time.Second, cfg.HTTPShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "billing_db", cfg.MongoDatabase)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, &numerator.Options{Strategy: numerator.StrategyStrict, RangeSize: 50}, cfg.NumeratorOptions())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RECONCILE_REPAIR", "true")
	t.Setenv("NUMERATOR_STRATEGY", "cached")
	t.Setenv("NUMERATOR_RANGE_SIZE", "10")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.True(t, cfg.RedisEnabled())
	assert.True(t, cfg.ReconcileRepair)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, &numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 10}, cfg.NumeratorOptions())
}

func TestFromEnv_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}, want: "JWT_SECRET"},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "sqlite"}, want: "STORE_DRIVER"},
		{name: "zero lock ttl", env: map[string]string{"JWT_SECRET": "x", "LOCK_TTL": "0s"}, want: "LOCK_TTL"},
		{name: "unknown numerator strategy", env: map[string]string{"JWT_SECRET": "x", "NUMERATOR_STRATEGY": "ranged"}, want: "NUMERATOR_STRATEGY"},
		{name: "zero range size", env: map[string]string{"JWT_SECRET": "x", "NUMERATOR_RANGE_SIZE": "0"}, want: "NUMERATOR_RANGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
