package config

import (
	"encoding/json"
	"os"

	"github.com/loopjournal/loop/internal/flagx"
	"github.com/loopjournal/loop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the file can spell the retention either as "2160h" or as
// integer nanoseconds; values are copied into the runtime Config afterwards.
type JsonConfig struct {
	LocalDSN    *string `json:"local_dsn"`
	RemoteDSN   *string `json:"remote_dsn"`
	SyncEnabled *bool   `json:"sync_enabled"`

	HistoryPath      *string         `json:"history_path"`
	HistoryRetention *timex.Duration `json:"history_retention"`
	StreakWalkBound  *int            `json:"streak_walk_bound"`

	EntitlementToken  *string `json:"entitlement_token"`
	EntitlementSecret *string `json:"entitlement_secret"`

	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3Bucket       *string `json:"s3_bucket"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Fields absent from the file keep their current values. Panics on read or
// unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.LocalDSN != nil {
		cfg.LocalDSN = *jc.LocalDSN
	}
	if jc.RemoteDSN != nil {
		cfg.RemoteDSN = *jc.RemoteDSN
	}
	if jc.SyncEnabled != nil {
		cfg.SyncEnabled = *jc.SyncEnabled
	}
	if jc.HistoryPath != nil {
		cfg.HistoryPath = *jc.HistoryPath
	}
	if jc.HistoryRetention != nil {
		cfg.HistoryRetention = jc.HistoryRetention.Duration
	}
	if jc.StreakWalkBound != nil {
		cfg.StreakWalkBound = *jc.StreakWalkBound
	}
	if jc.EntitlementToken != nil {
		cfg.EntitlementToken = *jc.EntitlementToken
	}
	if jc.EntitlementSecret != nil {
		cfg.EntitlementSecret = *jc.EntitlementSecret
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3BaseEndpoint != nil {
		cfg.S3BaseEndpoint = *jc.S3BaseEndpoint
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3AccessKey != nil {
		cfg.S3AccessKey = *jc.S3AccessKey
	}
	if jc.S3SecretKey != nil {
		cfg.S3SecretKey = *jc.S3SecretKey
	}
}
