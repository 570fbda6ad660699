package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Lending.DefaultLoanDays)
	assert.Equal(t, 365, cfg.Lending.MaxLoanDays)
	assert.True(t, cfg.Lending.LateFeePerDay.Equal(decimal.RequireFromString("0.50")))
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "0 8 * * *", cfg.Jobs.OverdueNotifyCron)
	assert.Equal(t, time.Second, cfg.Database.RetryDelay)
	assert.Equal(t, 4, cfg.Notification.Parallelism)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LENDING_DEFAULT_DAYS", "21")
	t.Setenv("LATE_FEE_PER_DAY", "1.25")
	t.Setenv("NOTIFY_BREAKER_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 21, cfg.Lending.DefaultLoanDays)
	assert.Equal(t, "1.25", cfg.Lending.LateFeePerDay.String())
	assert.Equal(t, 30*time.Second, cfg.Notification.BreakerTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"default above max", map[string]string{"LENDING_DEFAULT_DAYS": "30", "LENDING_MAX_DAYS": "10"}},
		{"negative fee", map[string]string{"LATE_FEE_PER_DAY": "-1"}},
		{"bad fee", map[string]string{"LATE_FEE_PER_DAY": "abc"}},
		{"bad cron", map[string]string{"JOB_OVERDUE_NOTIFY_CRON": "every morning"}},
		{"prod default secret", map[string]string{"APP_ENV": "production", "DB_PASSWORD": "x"}},
		{"unknown email driver", map[string]string{"EMAIL_DRIVER": "carrier-pigeon"}},
		{"bad db port", map[string]string{"DB_PORT": "five"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
