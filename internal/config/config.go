package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	Storage     string
	DatabaseURL string
	// Pricing
	Pricer      string
	RateAPIBase string
	RateAPIKey  string
	Currency    string
	// Quotes
	QuoteTTLDays int
	// Worker
	PurgePoll time.Duration
	// Redis (idempotency)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:           getEnv("ENV", "local"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnv("PORT", "8080"),
		Storage:       getEnv("STORAGE", "pg"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Pricer:        getEnv("PRICER", "table"),
		RateAPIBase:   getEnv("RATE_API_BASE", ""),
		RateAPIKey:    getEnv("RATE_API_KEY", ""),
		Currency:      getEnv("CURRENCY", "USD"),
		QuoteTTLDays:  atoiDef(getEnv("QUOTE_TTL_DAYS", "30"), 30),
		PurgePoll:     time.Duration(atoiDef(getEnv("PURGE_POLL_MS", "60000"), 60000)) * time.Millisecond,
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:      time.Duration(atoiDef(getEnv("IDEMPOTENCY_TTL_MS", "86400000"), 86400000)) * time.Millisecond,
	}
}
