package models

import "time"

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	Entsoe     MEntsoeConfig     `yaml:"entsoe"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Analysis   MAnalysisConfig   `yaml:"analysis"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	DBSchema           string `yaml:"db_schema"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	RequestsPerMinute  int      `yaml:"requests_per_minute"`
	UserAgent          string   `yaml:"user_agent"`
}

// MEntsoeConfig holds the market-data API endpoint and credential.
// SecurityToken is usually injected from the environment, not the YAML file.
type MEntsoeConfig struct {
	BaseURL       string `yaml:"base_url"`
	SecurityToken string `yaml:"security_token"`
}

type MDataSourceConfig struct {
	DataRetentionDays     int      `yaml:"data_retention_days"`
	UpdateIntervalSeconds int      `yaml:"update_interval_seconds"`
	Zones                 []string `yaml:"zones"`
}

type MAnalysisConfig struct {
	PriceThreshold float64 `yaml:"price_threshold"`
	CheapestHours  int     `yaml:"cheapest_hours"`
	ZScoreLimit    float64 `yaml:"zscore_limit"`
}

// GetLogLevel returns the configured log level, empty for a nil config.
func (c *MConfig) GetLogLevel() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}

// RequestTimeoutDuration returns the outbound request timeout.
func (c MNetworkConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
