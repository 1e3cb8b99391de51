package config

import (
	"os"
	"strconv"

	"bais/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Server   ServerConfig
}

// AnalysisConfig holds the defaults used by the comparison service and the CLI
type AnalysisConfig struct {
	Alpha                 float64
	BootstrapIterations   int
	PermutationIterations int
	Seed                  uint32
	Workers               int
	MinGroupSize          int
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	analysis, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}

	config := &Config{
		Analysis: *analysis,
		Server:   *loadServerConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration Load produces with an empty environment.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Alpha:                 0.05,
			BootstrapIterations:   2000,
			PermutationIterations: 10000,
			Seed:                  123456789,
			Workers:               4,
			MinGroupSize:          5,
		},
		Server: ServerConfig{Port: "8080"},
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	defaults := Default().Analysis

	seed := defaults.Seed
	if value := os.Getenv("BAIS_SEED"); value != "" {
		parsed, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, errors.ConfigInvalid("BAIS_SEED must be an unsigned 32-bit integer")
		}
		seed = uint32(parsed)
	}

	return &AnalysisConfig{
		Alpha:                 getEnvFloatOrDefault("BAIS_ALPHA", defaults.Alpha),
		BootstrapIterations:   getEnvIntOrDefault("BAIS_BOOTSTRAP_ITERATIONS", defaults.BootstrapIterations),
		PermutationIterations: getEnvIntOrDefault("BAIS_PERMUTATION_ITERATIONS", defaults.PermutationIterations),
		Seed:                  seed,
		Workers:               getEnvIntOrDefault("BAIS_WORKERS", defaults.Workers),
		MinGroupSize:          getEnvIntOrDefault("BAIS_MIN_GROUP_SIZE", defaults.MinGroupSize),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func validateConfig(config *Config) error {
	a := config.Analysis
	if !(a.Alpha > 0 && a.Alpha < 1) {
		return errors.ConfigInvalid("BAIS_ALPHA must be in (0, 1)")
	}
	if a.BootstrapIterations < 100 {
		return errors.ConfigInvalid("BAIS_BOOTSTRAP_ITERATIONS must be at least 100")
	}
	if a.PermutationIterations < 100 {
		return errors.ConfigInvalid("BAIS_PERMUTATION_ITERATIONS must be at least 100")
	}
	if a.Workers < 1 {
		return errors.ConfigInvalid("BAIS_WORKERS must be positive")
	}
	if a.MinGroupSize < 2 {
		return errors.ConfigInvalid("BAIS_MIN_GROUP_SIZE must be at least 2")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
