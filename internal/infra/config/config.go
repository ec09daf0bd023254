package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Jakarta in minimal images

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL            string
	StoreDriver            string
	SeedFile               string // memory driver only
	TelegramToken          string // bot disabled when empty
	AdminTelegramIDs       []int64
	RecapChatID            int64 // 0 disables the recap post
	HTTPAddr               string
	LogLevel               string
	Environment            string
	Timezone               string
	Location               *time.Location
	CronSpecDailyRecap     string
	FundTargetPerHousehold decimal.Decimal
	RunMigrations          bool
}

// IsAdmin reports whether the Telegram user may run bot commands.
func (c *AppConfig) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.StoreDriver = strings.ToLower(getenv("STORE_DRIVER", StoreDriverPostgres))
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case StoreDriverMemory:
		cfg.SeedFile = os.Getenv("SEED_FILE")
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: expected %s or %s", cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	cfg.AdminTelegramIDs, err = parseIDList(os.Getenv("ADMIN_TELEGRAM_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_IDS: %w", err)
	}
	if cfg.TelegramToken != "" && len(cfg.AdminTelegramIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_IDS is not set")
	}

	if raw := os.Getenv("RECAP_CHAT_ID"); raw != "" {
		cfg.RecapChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RECAP_CHAT_ID: %w", err)
		}
	}

	cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))

	cfg.Timezone = getenv("TIMEZONE", "Asia/Jakarta")
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.CronSpecDailyRecap = getenv("CRON_SPEC_DAILY_RECAP", "0 21 * * *") // 21:00 local, start of the night shift

	cfg.FundTargetPerHousehold = decimal.Zero
	if raw := os.Getenv("FUND_TARGET_PER_HOUSEHOLD"); raw != "" {
		cfg.FundTargetPerHousehold, err = decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FUND_TARGET_PER_HOUSEHOLD: %w", err)
		}
		if cfg.FundTargetPerHousehold.IsNegative() {
			return nil, fmt.Errorf("FUND_TARGET_PER_HOUSEHOLD must not be negative")
		}
	}

	cfg.RunMigrations = true
	if raw := os.Getenv("RUN_MIGRATIONS"); raw != "" {
		cfg.RunMigrations, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
