package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authguard/internal/flagx"
)

// JSONConfig is the intermediate DTO for reading JSON configuration files.
// Interval fields use config.Duration so both "3s" strings and integer
// nanoseconds parse. Zero values mean "not set" and leave the current
// Config value untouched.
type JSONConfig struct {
	DatabaseDSN                 string   `json:"database_dsn"`
	SecretKey                   string   `json:"secret_key"`
	AccessTokenValidityDuration Duration `json:"access_token_validity_duration"`
	FallbackHashIterations      int      `json:"fallback_hash_iterations"`
	StyleProbeURL               string   `json:"style_probe_url"`
	StyleProbeMarker            string   `json:"style_probe_marker"`
	StyleProbeTimeout           Duration `json:"style_probe_timeout"`
	AIAPIKey                    string   `json:"ai_api_key"`
	AIModel                     string   `json:"ai_model"`
	LoginAttemptsPerMin         float64  `json:"login_attempts_per_min"`
	LoginAttemptBurst           int      `json:"login_attempt_burst"`
	ErrorLogCapacity            int      `json:"error_log_capacity"`
}

// parseJSON loads configuration values from the JSON file named by the
// -c / -config flags into config. Nothing happens when the flag is absent.
// An unreadable or invalid file panics: a deployment that points at a
// broken config file should not start.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	c := &JSONConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.FallbackHashIterations != 0 {
		config.FallbackHashIterations = c.FallbackHashIterations
	}
	if c.StyleProbeURL != "" {
		config.StyleProbeURL = c.StyleProbeURL
	}
	if c.StyleProbeMarker != "" {
		config.StyleProbeMarker = c.StyleProbeMarker
	}
	if c.StyleProbeTimeout.Duration != 0 {
		config.StyleProbeTimeout = c.StyleProbeTimeout.Duration
	}
	if c.AIAPIKey != "" {
		config.AIAPIKey = c.AIAPIKey
	}
	if c.AIModel != "" {
		config.AIModel = c.AIModel
	}
	if c.LoginAttemptsPerMin != 0 {
		config.LoginAttemptsPerMin = c.LoginAttemptsPerMin
	}
	if c.LoginAttemptBurst != 0 {
		config.LoginAttemptBurst = c.LoginAttemptBurst
	}
	if c.ErrorLogCapacity != 0 {
		config.ErrorLogCapacity = c.ErrorLogCapacity
	}
}
