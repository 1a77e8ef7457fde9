package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"PMS_APP_NAME":                         os.Getenv("PMS_APP_NAME"),
		"PMS_APP_ENV":                          os.Getenv("PMS_APP_ENV"),
		"PMS_APP_PORT":                         os.Getenv("PMS_APP_PORT"),
		"PMS_DATABASE_HOST":                    os.Getenv("PMS_DATABASE_HOST"),
		"PMS_DATABASE_PORT":                    os.Getenv("PMS_DATABASE_PORT"),
		"PMS_DATABASE_USER":                    os.Getenv("PMS_DATABASE_USER"),
		"PMS_DATABASE_PASSWORD":                os.Getenv("PMS_DATABASE_PASSWORD"),
		"PMS_DATABASE_DBNAME":                  os.Getenv("PMS_DATABASE_DBNAME"),
		"PMS_LOG_LEVEL":                        os.Getenv("PMS_LOG_LEVEL"),
		"PMS_BOOKING_MAX_STAY_NIGHTS":          os.Getenv("PMS_BOOKING_MAX_STAY_NIGHTS"),
		"PMS_ACCOUNTING_OWNER_PAYABLE_ACCOUNT": os.Getenv("PMS_ACCOUNTING_OWNER_PAYABLE_ACCOUNT"),
		"PMS_SCHEDULER_MONTHLY_SETTLEMENT_DAY": os.Getenv("PMS_SCHEDULER_MONTHLY_SETTLEMENT_DAY"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pms-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "pms", cfg.Database.DBName)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 90, cfg.Booking.MaxStayNights)
		assert.Equal(t, []string{"friday", "saturday"}, cfg.Booking.WeekendDays)
		assert.Equal(t, "2100-OWNER-PAYABLE", cfg.Accounting.OwnerPayableAccount)
		assert.Equal(t, "15", cfg.Accounting.DefaultCommissionRate)
		assert.Equal(t, 1, cfg.Scheduler.MonthlySettlementDay)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with PMS prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("PMS_APP_NAME", "test-app")
		os.Setenv("PMS_APP_ENV", "production")
		os.Setenv("PMS_APP_PORT", "9000")
		os.Setenv("PMS_DATABASE_HOST", "testdb.local")
		os.Setenv("PMS_DATABASE_PORT", "5433")
		os.Setenv("PMS_DATABASE_USER", "pmsuser")
		os.Setenv("PMS_DATABASE_PASSWORD", "secret")
		os.Setenv("PMS_DATABASE_DBNAME", "pms_test")
		os.Setenv("PMS_BOOKING_MAX_STAY_NIGHTS", "30")
		os.Setenv("PMS_ACCOUNTING_OWNER_PAYABLE_ACCOUNT", "2110-VILLA-OWNERS")
		os.Setenv("PMS_SCHEDULER_MONTHLY_SETTLEMENT_DAY", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "production", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "pmsuser", cfg.Database.User)
		assert.Equal(t, "secret", cfg.Database.Password)
		assert.Equal(t, "pms_test", cfg.Database.DBName)
		assert.Equal(t, 30, cfg.Booking.MaxStayNights)
		assert.Equal(t, "2110-VILLA-OWNERS", cfg.Accounting.OwnerPayableAccount)
		assert.Equal(t, 3, cfg.Scheduler.MonthlySettlementDay)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("rejects invalid log level", func(t *testing.T) {
		clearEnv()
		os.Setenv("PMS_LOG_LEVEL", "verbose")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("rejects settlement day outside 1-28", func(t *testing.T) {
		clearEnv()
		os.Setenv("PMS_SCHEDULER_MONTHLY_SETTLEMENT_DAY", "31")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "monthly settlement day")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "pmsuser",
		Password: "secret",
		DBName:   "pms",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "user=pmsuser")
	assert.Contains(t, dsn, "dbname=pms")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}

func TestConfig_WeekendWeekdays(t *testing.T) {
	t.Run("parses configured day names", func(t *testing.T) {
		cfg := &Config{Booking: BookingConfig{WeekendDays: []string{"Friday", "saturday"}}}

		days, err := cfg.WeekendWeekdays()
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, days)
	})

	t.Run("rejects unknown day name", func(t *testing.T) {
		cfg := &Config{Booking: BookingConfig{WeekendDays: []string{"froday"}}}

		_, err := cfg.WeekendWeekdays()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown weekend day")
	})
}
