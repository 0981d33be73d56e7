// Package config handles configuration for the authguard process,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN (pgx) for the user registry. An empty
//     value selects the in-memory store.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidityDuration: access token lifetime.
//   - FallbackHashIterations: PBKDF2 iteration count used when the
//     preferred hashing primitive is unavailable. Values below the
//     provider's floor are raised.
//   - StyleProbeURL / StyleProbeMarker / StyleProbeTimeout: styling
//     service detection settings.
//   - AIAPIKey / AIModel: optional AI-configuration dependency settings.
//   - LoginAttemptsPerMin / LoginAttemptBurst: per-identifier login
//     throttling.
//   - ErrorLogCapacity: size of the diagnostic ring buffer.
type Config struct {
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	FallbackHashIterations      int
	StyleProbeURL               string
	StyleProbeMarker            string
	StyleProbeTimeout           time.Duration
	AIAPIKey                    string
	AIModel                     string
	LoginAttemptsPerMin         float64
	LoginAttemptBurst           int
	ErrorLogCapacity            int
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.FallbackHashIterations = 600000
	c.StyleProbeURL = "https://styles.example.com/authguard/app.css"
	c.StyleProbeMarker = ".auth-form"
	c.StyleProbeTimeout = 3 * time.Second
	c.AIAPIKey = ""
	c.AIModel = "gemini-2.0-flash"
	c.LoginAttemptsPerMin = 30
	c.LoginAttemptBurst = 10
	c.ErrorLogCapacity = 256
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
