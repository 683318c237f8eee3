package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "8", cfg.Payroll.FullDayHours.String())
	assert.Equal(t, "120", cfg.Payroll.FullDayRate.String())
	assert.Equal(t, "email_queue", cfg.RabbitMQ.Queue)
	assert.Equal(t, 5, cfg.RabbitMQ.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.RabbitMQ.RetryDelay)
	assert.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadPayrollOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PAYROLL_FULL_DAY_HOURS", "7.5")
	t.Setenv("PAYROLL_FULL_DAY_RATE", "99.90")

	cfg, err := Load()
	require.NoError(t, err)
	rates := cfg.Rates()
	assert.Equal(t, "7.5", rates.FullDayHours.String())
	assert.Equal(t, "99.9", rates.FullDayRate.String())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) Config {
		t.Helper()
		t.Setenv("STORE_DRIVER", "memory")
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "postgres without url", mutate: func(c *Config) { c.StoreDriver = DriverPostgres }},
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "sqlite" }},
		{name: "empty secret", mutate: func(c *Config) { c.JWTSecret = " " }},
		{name: "dev secret in production", mutate: func(c *Config) { c.Environment = "production"; c.Seed.Password = "x" }},
		{name: "small body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = 0 }},
		{name: "zero full day hours", mutate: func(c *Config) { c.Payroll.FullDayHours = c.Payroll.FullDayHours.Sub(c.Payroll.FullDayHours) }},
		{name: "bad timezone", mutate: func(c *Config) { c.Payroll.Timezone = "Not/AZone" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
