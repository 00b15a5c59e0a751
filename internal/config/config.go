package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Port             string
	DBURL            string
	UseInMemoryStore bool
	Environment      string

	PriceTTL        time.Duration
	RefreshSchedule string

	// Capital-gains parameters. Rates are fractions (0.15 for 15%); the
	// term threshold separates SHORT from LONG holdings, in days.
	TermThresholdDays int
	ShortTermRate     decimal.Decimal
	LongTermRate      decimal.Decimal

	StartingCashBalance decimal.Decimal

	AdminUsername string
	AdminPassword string
	AdminTokenTTL time.Duration
}

// Load reads configuration from environment variables. A .env file is loaded
// if present to simplify local development. We look in bin/.env so the file
// can live alongside a built binary, and fall back to .env in the project
// root for compatibility.
func Load() Config {
	loadDotEnv()

	cfg := Config{
		Port:                getString("PORT", "8080"),
		DBURL:               getString("DATABASE_URL", ""),
		Environment:         getString("ENVIRONMENT", "local"),
		PriceTTL:            getDurationMinutes("PRICE_TTL_MINUTES", 60),
		RefreshSchedule:     getString("MARKET_REFRESH_SCHEDULE", ""),
		TermThresholdDays:   getInt("TERM_THRESHOLD_DAYS", 365),
		ShortTermRate:       getDecimal("SHORT_TERM_TAX_RATE", "0.15"),
		LongTermRate:        getDecimal("LONG_TERM_TAX_RATE", "0.10"),
		StartingCashBalance: getDecimal("STARTING_CASH_BALANCE", "1000000"),
		AdminUsername:       getString("ADMIN_USERNAME", "admin"),
		AdminPassword:       getString("ADMIN_PASSWORD", ""),
		AdminTokenTTL:       getDurationMinutes("ADMIN_TOKEN_TTL_MINUTES", 120),
	}

	cfg.UseInMemoryStore = cfg.DBURL == ""
	return cfg
}

func loadDotEnv() {
	candidates := []string{
		filepath.Join("bin", ".env"),
		".env",
	}

	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append([]string{
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "bin", ".env"),
		}, candidates...)
	}

	for _, path := range candidates {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			log.Printf("invalid value for %s, using fallback: %v", key, err)
			return fallback
		}
		return n
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("invalid value for %s, using fallback: %v", key, err)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

func getDurationMinutes(key string, fallback int) time.Duration {
	if val := os.Getenv(key); val != "" {
		mins, err := strconv.Atoi(val)
		if err != nil {
			log.Printf("invalid value for %s, using fallback: %v", key, err)
			return time.Duration(fallback) * time.Minute
		}
		return time.Duration(mins) * time.Minute
	}
	return time.Duration(fallback) * time.Minute
}
