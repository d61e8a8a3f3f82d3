package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gridwatch/src/helpers"
	"gridwatch/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that carry the market-data API credential, in
// lookup order.
var TokenEnvVars = []string{"ENTSOE_API_KEY", "VITE_ENTSOE_API_KEY"}

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file at configPath, overlays .env and process
// environment, fills defaults and validates the result.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	// .env next to the config file first, then the working directory.
	// Variables already present in the environment are never overwritten.
	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env"), ".env"); err != nil {
		return nil, err
	}

	config := &Config{MConfig: &modelConfig}
	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func loadDotEnv(paths ...string) error {
	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if err := godotenv.Load(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return helpers.NewConfigurationError(fmt.Sprintf("failed to load env file '%s'", abs), err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() {
	for _, key := range TokenEnvVars {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			c.Entsoe.SecurityToken = v
			return
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return invalid("application name cannot be empty")
	}

	if c.Host == "" {
		return invalid("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return invalid("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return invalid("database path cannot be empty for sqlite")
		}
	case "postgres", "postgresql":
		if c.Storage.DBConnectionString == "" {
			return invalid("database connection string cannot be empty for postgres")
		}
	default:
		return invalid("unsupported database type %q", c.Storage.DBType)
	}

	if c.Network.RequestTimeout <= 0 {
		return invalid("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return invalid("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return invalid("concurrent requests must be greater than 0")
	}
	if c.Network.RequestsPerMinute < 0 {
		return invalid("requests per minute cannot be negative")
	}
	if c.Network.Enabled {
		for _, p := range c.Network.Proxies {
			if _, err := helpers.ParseProxy(p); err != nil {
				return invalid("%v", err)
			}
		}
	}

	if c.Entsoe.SecurityToken == "" {
		return invalid("API security token missing: set %s", strings.Join(TokenEnvVars, " or "))
	}

	if c.DataSource.UpdateIntervalSeconds <= 0 {
		return invalid("update interval must be greater than 0")
	}
	if c.DataSource.DataRetentionDays <= 0 {
		return invalid("data retention days must be greater than 0")
	}
	if len(c.DataSource.Zones) == 0 {
		return invalid("at least one zone must be configured")
	}
	for i, raw := range c.DataSource.Zones {
		zone, err := models.ParseZoneCode(raw)
		if err != nil {
			return helpers.NewConfigurationError("config validation failed", err)
		}
		c.DataSource.Zones[i] = zone.String()
	}

	if c.Analysis.CheapestHours <= 0 {
		return invalid("cheapest hours must be greater than 0")
	}
	if c.Analysis.ZScoreLimit <= 0 {
		return invalid("zscore limit must be greater than 0")
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return helpers.NewConfigurationError("config validation failed: "+fmt.Sprintf(format, args...), nil)
}

// -----------------------------------------------------------------------------

// ZoneCodes returns the configured zones. Call after Validate.
func (c *Config) ZoneCodes() []models.ZoneCode {
	zones := make([]models.ZoneCode, 0, len(c.DataSource.Zones))
	for _, z := range c.DataSource.Zones {
		zones = append(zones, models.ZoneCode(z))
	}
	return zones
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path.
// The credential is never written back.
func (c *Config) Save(configPath string) error {
	out := *c.MConfig
	out.Entsoe.SecurityToken = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
