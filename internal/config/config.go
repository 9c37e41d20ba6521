// Package config loads process-wide settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the service reads at startup.
type Config struct {
	// PostgreSQL connection parameters
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int

	// JWT / auth settings
	SecretKey                string // signing key for access tokens
	Algorithm                string // JWT signing algorithm (HS256 by default)
	AccessTokenExpireMinutes int    // token lifetime in minutes

	// Server settings
	Port    string // API listen port
	GinMode string // gin run mode (debug, release, test)

	// CORS
	CORSAllowedOrigins string // comma-separated list of allowed origins
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		PostgresUser:     getEnv("POSTGRES_USER", "todo_user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "StrongPassword123!"),
		PostgresDB:       getEnv("POSTGRES_DB", "todo"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),

		SecretKey:                getEnv("SECRET_KEY", "dev-secret-change-me"),
		Algorithm:                getEnv("ALGORITHM", "HS256"),
		AccessTokenExpireMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 1440),

		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB)
}

// Validate checks settings that must not ship with their dev defaults.
func (c *Config) Validate() error {
	if c.GinMode == "release" {
		if c.SecretKey == "" || c.SecretKey == "dev-secret-change-me" {
			return fmt.Errorf("SECRET_KEY must be set in release mode")
		}
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable, or a default when unset.
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
