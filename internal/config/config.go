// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"aws-cost/internal/logging"
)

// DefaultEndpoint is the public AWS Price List bulk endpoint.
const DefaultEndpoint = "https://pricing.us-east-1.amazonaws.com"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing source configuration
	Pricing PricingConfig `json:"pricing"`

	// Cache contains document cache configuration
	Cache CacheConfig `json:"cache"`

	// Output contains report output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`

	// AWS contains AWS-specific configuration
	AWS AWSConfig `json:"aws,omitempty"`
}

// PricingConfig contains pricing source settings
type PricingConfig struct {
	// Endpoint is the Price List bulk API base URL
	Endpoint string `json:"endpoint"`

	// RequestTimeoutSeconds bounds each catalog or offer fetch
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`

	// Currency is the price currency to select from offer files
	Currency string `json:"currency"`
}

// RequestTimeout returns the per-request timeout as a duration
func (p PricingConfig) RequestTimeout() time.Duration {
	if p.RequestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.RequestTimeoutSeconds) * time.Second
}

// CacheConfig contains document cache settings
type CacheConfig struct {
	// Enabled enables the in-memory pricing document cache
	Enabled bool `json:"enabled"`

	// TTLSeconds is how long a fetched document stays fresh
	TTLSeconds int `json:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// OutputConfig contains report output settings
type OutputConfig struct {
	// DefaultFormat is the default report format (table, json, markdown)
	DefaultFormat string `json:"default_format"`

	// Directory is where saved reports are written
	Directory string `json:"directory"`
}

// AWSConfig contains AWS-specific settings
type AWSConfig struct {
	// DefaultRegion preselects a region in the interactive session
	DefaultRegion string `json:"default_region,omitempty"`

	// Profile is the AWS profile used by the live lookup command
	Profile string `json:"profile,omitempty"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	outputDir := filepath.Join(homeDir, ".aws-cost", "reports")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Endpoint:              DefaultEndpoint,
			RequestTimeoutSeconds: 60,
			Currency:              "USD",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
		},
		Output: OutputConfig{
			DefaultFormat: "table",
			Directory:     outputDir,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".aws-cost.json"
	}
	return filepath.Join(homeDir, ".aws-cost.json")
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
