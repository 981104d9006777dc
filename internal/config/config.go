// Package config loads the environment and the accounts file into immutable values.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// ErrInvalidConfig is returned when a required setting is missing or malformed.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	TInvestURL            string
	TInvestToken          string
	TInvestRetryMax       int
	TInvestRetryBaseDelay time.Duration
	CBRURL                string
	CBRRetryMax           int
	CBRDelay              time.Duration
	DatabaseURL           string
	CachePath             string
	MarketPriceMaxAge     time.Duration
	InstrumentMaxAge      time.Duration
	ReportDir             string
	AccountsFile          string
	TaxRate               decimal.Decimal
	ReportSchedule        string
	RateWorkerInterval    time.Duration
	GoogleSpreadsheetID   string
	GoogleCredentialsJSON string
	HTTPPort              string
	AdminAPIKey           string
}

// Load reads configuration from a .env file, if present, and environment variables with sensible defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		TInvestURL:            envOrDefault("TINVEST_URL", "https://invest-public-api.tinkoff.ru/rest"),
		TInvestToken:          envOrDefaultWarn("TINVEST_TOKEN", ""),
		TInvestRetryMax:       envOrDefaultInt("TINVEST_RETRY_MAX", 5),
		TInvestRetryBaseDelay: envOrDefaultDuration("TINVEST_RETRY_BASE_DELAY", 2*time.Second),
		CBRURL:                envOrDefault("CBR_URL", "https://www.cbr.ru/scripts"),
		CBRRetryMax:           envOrDefaultInt("CBR_RETRY_MAX", 3),
		CBRDelay:              envOrDefaultDuration("CBR_DELAY", 5*time.Second),
		DatabaseURL:           envOrDefault("DATABASE_URL", ""),
		CachePath:             envOrDefault("CACHE_PATH", "assets_db.db"),
		MarketPriceMaxAge:     envOrDefaultDuration("MARKET_PRICE_MAX_AGE", 10*time.Minute),
		InstrumentMaxAge:      envOrDefaultDuration("INSTRUMENT_MAX_AGE", 7*24*time.Hour),
		ReportDir:             envOrDefault("REPORT_DIR", "."),
		AccountsFile:          envOrDefault("ACCOUNTS_FILE", "accounts.yaml"),
		TaxRate:               envOrDefaultDecimal("TAX_RATE", decimal.NewFromFloat(0.13)),
		ReportSchedule:        envOrDefault("REPORT_SCHEDULE", "0 0 7 * * *"),
		RateWorkerInterval:    envOrDefaultDuration("RATE_WORKER_INTERVAL", 6*time.Hour),
		GoogleSpreadsheetID:   envOrDefault("GOOGLE_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:           envOrDefault("ADMIN_API_KEY", ""),
	}
}

// Validate checks settings every command needs.
func (c Config) Validate() error {
	if c.TInvestToken == "" {
		return errors.Join(ErrInvalidConfig, errors.New("TINVEST_TOKEN is required"))
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Join(ErrInvalidConfig, errors.New("TAX_RATE must be within [0, 1]"))
	}
	return nil
}

// SheetsEnabled reports whether the Google Sheets summary is configured.
func (c Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != "" && c.GoogleCredentialsJSON != ""
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
