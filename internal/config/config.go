package config

import (
	"fmt"
	"os"
	"strconv"

	"boxplot/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Preview  PreviewConfig
	Data     DataConfig
	Chart    ChartConfig
	Render   RenderConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver string
	URL    string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// PreviewConfig holds the HTML preview server settings
type PreviewConfig struct {
	Port    string
	Enabled bool
}

// DataConfig holds data file settings
type DataConfig struct {
	Dir      string // base directory of file sources
	File     string // default data file of the CLI
	RowLimit int    // max rows read from a SQL source, 0 for no limit
}

// ChartConfig holds chart rendering defaults
type ChartConfig struct {
	DefaultsFile      string
	PrerenderTooltips bool
}

// RenderConfig holds batch rendering settings
type RenderConfig struct {
	Concurrency int
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Preview:  loadPreviewConfig(),
		Data:     loadDataConfig(),
		Chart:    loadChartConfig(),
		Render:   RenderConfig{Concurrency: getEnvIntOrDefault("RENDER_CONCURRENCY", 4)},
		Metrics:  MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	driver := getEnvOrDefault("DATABASE_DRIVER", "sqlite3")
	url := os.Getenv("DATABASE_URL")
	if url == "" && driver == "sqlite3" {
		url = "file:boxplot.db?_foreign_keys=on"
	}
	return DatabaseConfig{Driver: driver, URL: url}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Port:    getEnvOrDefault("PREVIEW_PORT", "8081"),
		Enabled: getEnvBoolOrDefault("PREVIEW_ENABLED", true),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		Dir:      getEnvOrDefault("DATA_DIR", "./data"),
		File:     getEnvOrDefault("DATA_FILE", ""),
		RowLimit: getEnvIntOrDefault("QUERY_ROW_LIMIT", 0),
	}
}

func loadChartConfig() ChartConfig {
	return ChartConfig{
		DefaultsFile:      getEnvOrDefault("CHART_DEFAULTS_FILE", ""),
		PrerenderTooltips: getEnvBoolOrDefault("PRERENDER_TOOLTIPS", true),
	}
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unsupported DATABASE_DRIVER %q", config.Database.Driver))
	}
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Render.Concurrency < 1 {
		return errors.ConfigInvalid("RENDER_CONCURRENCY must be at least 1")
	}
	if config.Data.RowLimit < 0 {
		return errors.ConfigInvalid("QUERY_ROW_LIMIT cannot be negative")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
