package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	DBDriver   string
	MySQLDSN   string
	SQLitePath string
	RedisAddr  string
	RedisDB    int
	RedisPass  string
	JWTSecret  string
	LogLevel   string

	// Redirect pages returned to the client after a gateway callback.
	SuccessURL string
	FailureURL string
	PendingURL string
	// Checkout page that hosts the gateway widget; the reference token
	// is appended as a query parameter.
	CheckoutURL string

	// Upper bound for a single adapter invocation. On expiry the record
	// is left queued or in error, never guessed successful.
	GatewayTimeout time.Duration
}

// Load builds Config from environment with sensible defaults. A .env
// file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBDriver:       getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:       getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/paylog?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath:     getEnv("SQLITE_PATH", "paylog.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SuccessURL:     getEnv("REDIRECT_SUCCESS_URL", "/payment-success"),
		FailureURL:     getEnv("REDIRECT_FAILURE_URL", "/payment-failed"),
		PendingURL:     getEnv("REDIRECT_PENDING_URL", "/payment-running"),
		CheckoutURL:    getEnv("CHECKOUT_URL", "/pay"),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
