package config

import "gridwatch/src/models"

// Default values for optional configuration fields.
const (
	DefaultName                  = "gridwatch"
	DefaultHost                  = "127.0.0.1"
	DefaultPort                  = 8000
	DefaultLogLevel              = "INFO"
	DefaultDBType                = "sqlite"
	DefaultDBPath                = "gridwatch.db"
	DefaultRequestTimeout        = 10
	DefaultConcurrentRequests    = 1
	DefaultBaseURL               = "https://web-api.tp.entsoe.eu/api"
	DefaultUpdateIntervalSeconds = 3600
	DefaultDataRetentionDays     = 365
	DefaultPriceThreshold        = 100.0
	DefaultCheapestHours         = 5
	DefaultZScoreLimit           = 2.5
)

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	// Storage defaults
	if c.Storage.DBType == "" {
		c.Storage.DBType = DefaultDBType
	}
	if c.Storage.DBType == DefaultDBType && c.Storage.DBPath == "" {
		c.Storage.DBPath = DefaultDBPath
	}

	// Network defaults; retries stay at zero unless configured.
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = DefaultRequestTimeout
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = DefaultConcurrentRequests
	}

	if c.Entsoe.BaseURL == "" {
		c.Entsoe.BaseURL = DefaultBaseURL
	}

	// Data source defaults
	if c.DataSource.UpdateIntervalSeconds == 0 {
		c.DataSource.UpdateIntervalSeconds = DefaultUpdateIntervalSeconds
	}
	if c.DataSource.DataRetentionDays == 0 {
		c.DataSource.DataRetentionDays = DefaultDataRetentionDays
	}
	if len(c.DataSource.Zones) == 0 {
		for _, z := range models.DefaultZones {
			c.DataSource.Zones = append(c.DataSource.Zones, z.String())
		}
	}

	// Analysis defaults
	if c.Analysis.PriceThreshold == 0 {
		c.Analysis.PriceThreshold = DefaultPriceThreshold
	}
	if c.Analysis.CheapestHours == 0 {
		c.Analysis.CheapestHours = DefaultCheapestHours
	}
	if c.Analysis.ZScoreLimit == 0 {
		c.Analysis.ZScoreLimit = DefaultZScoreLimit
	}
}
