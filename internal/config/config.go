package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Market   MarketConfig
	Security SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MarketConfig holds market-data configuration
type MarketConfig struct {
	BaseCurrency string
	// QuoteRefreshSchedule is a cron expression for the background
	// quote and FX refresh job. Empty disables the scheduler.
	QuoteRefreshSchedule string
}

// SecurityConfig holds secrets-related configuration
type SecurityConfig struct {
	// FernetKey encrypts market-provider credentials at rest.
	FernetKey string
	// InternalAPIKey protects maintenance endpoints. Empty disables them.
	InternalAPIKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/deepstock.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Market: MarketConfig{
			BaseCurrency:         getEnv("BASE_CURRENCY", "CZK"),
			QuoteRefreshSchedule: getEnv("QUOTE_REFRESH_SCHEDULE", "0 */30 * * * *"),
		},
		Security: SecurityConfig{
			FernetKey:      getEnv("FERNET_KEY", ""),
			InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated environment value into trimmed entries
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
