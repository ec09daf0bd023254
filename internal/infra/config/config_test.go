package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "STORE_DRIVER", "SEED_FILE", "TELEGRAM_TOKEN", "ADMIN_TELEGRAM_IDS",
		"RECAP_CHAT_ID", "HTTP_ADDR", "LOG_LEVEL", "ENVIRONMENT", "TIMEZONE",
		"CRON_SPEC_DAILY_RECAP", "FUND_TARGET_PER_HOUSEHOLD", "RUN_MIGRATIONS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/jimpitan")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "Asia/Jakarta", cfg.Location.String())
	assert.Equal(t, "0 21 * * *", cfg.CronSpecDailyRecap)
	assert.True(t, cfg.FundTargetPerHousehold.IsZero())
	assert.True(t, cfg.RunMigrations)
	assert.Empty(t, cfg.AdminTelegramIDs)
}

func TestLoad_MemoryDriverNeedsNoDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SEED_FILE", "seed.json")
	t.Setenv("FUND_TARGET_PER_HOUSEHOLD", "15000.50")
	t.Setenv("ADMIN_TELEGRAM_IDS", "11, 22,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "seed.json", cfg.SeedFile)
	assert.Equal(t, "15000.5", cfg.FundTargetPerHousehold.String())
	assert.Equal(t, []int64{11, 22}, cfg.AdminTelegramIDs)
	assert.True(t, cfg.IsAdmin(22))
	assert.False(t, cfg.IsAdmin(33))
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database":    {"STORE_DRIVER": "postgres"},
		"unknown driver":      {"STORE_DRIVER": "sqlite"},
		"bad admin ids":       {"STORE_DRIVER": "memory", "ADMIN_TELEGRAM_IDS": "abc"},
		"token without admin": {"STORE_DRIVER": "memory", "TELEGRAM_TOKEN": "x"},
		"bad timezone":        {"STORE_DRIVER": "memory", "TIMEZONE": "Mars/Olympus"},
		"negative target":     {"STORE_DRIVER": "memory", "FUND_TARGET_PER_HOUSEHOLD": "-1"},
		"bad migrations flag": {"STORE_DRIVER": "memory", "RUN_MIGRATIONS": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
