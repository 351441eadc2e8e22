package configs

import (
	"os"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Quotes   QuoteProviderConfig
	Trading  TradingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// QuoteProviderConfig holds quote provider configuration
type QuoteProviderConfig struct {
	BaseURL string
}

// TradingConfig holds trading configuration
type TradingConfig struct {
	// StartingCash is the cash balance granted to a newly registered user,
	// as a decimal string
	StartingCash string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Quotes: QuoteProviderConfig{
			BaseURL: getEnv("QUOTE_API_URL", "https://api.iex.cloud"),
		},
		Trading: TradingConfig{
			StartingCash: getEnv("STARTING_CASH", "10000.00"),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
