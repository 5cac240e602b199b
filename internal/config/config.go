// Package config assembles runtime settings for the journal engine from
// defaults, an optional JSON file and command-line flags, each layer
// overriding the previous one.
package config

import "time"

// Config holds runtime settings.
//
// LocalDSN points at the on-device SQLite file; RemoteDSN at the hosted sync
// database. SyncEnabled is the user-level preference that routes captures and
// enables the remote leg of merged reads.
type Config struct {
	LocalDSN    string
	RemoteDSN   string
	SyncEnabled bool

	HistoryPath      string
	HistoryRetention time.Duration
	StreakWalkBound  int

	EntitlementToken  string
	EntitlementSecret string

	S3Region       string
	S3BaseEndpoint string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDSN = "loop.db"
	c.RemoteDSN = ""
	c.SyncEnabled = false
	c.HistoryPath = "resurfacing_history.json"
	c.HistoryRetention = 90 * 24 * time.Hour
	c.StreakWalkBound = 365
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
