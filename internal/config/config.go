package config

import (
	"os"
	"strconv"

	"toxeval/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Health   HealthConfig
	Data     DataConfig
	Engine   EngineConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// HealthConfig holds the health sidecar settings
type HealthConfig struct {
	Port    string
	Enabled bool
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	StudyFile string
}

// EngineConfig holds evaluation engine settings
type EngineConfig struct {
	Concurrency int
}

// Load reads configuration from environment variables and validates it.
// DATABASE_URL is only required by components that persist runs; callers
// that evaluate in memory pass requireDatabase=false.
func Load(requireDatabase bool) (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Health: HealthConfig{
			Port:    getEnvOrDefault("HEALTH_PORT", "8081"),
			Enabled: getEnvBoolOrDefault("HEALTH_ENABLED", true),
		},
		Data: DataConfig{
			StudyFile: getEnvOrDefault("STUDY_FILE", ""),
		},
		Engine: EngineConfig{
			Concurrency: getEnvIntOrDefault("EVAL_CONCURRENCY", 4),
		},
	}

	if requireDatabase && config.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Engine.Concurrency < 1 {
		return nil, errors.ConfigInvalid("EVAL_CONCURRENCY must be at least 1")
	}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
