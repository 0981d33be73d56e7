package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authguard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN (empty selects the in-memory store)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-i int      PBKDF2 fallback iteration count
//	-y string   styling probe URL
//	-o int      styling probe timeout, seconds
//	-k string   AI API key
//	-m string   AI model name
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-i", "-y", "-o", "-k", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.IntVar(&config.FallbackHashIterations, "i", config.FallbackHashIterations, "fallback hash iteration count")
	fs.StringVar(&config.StyleProbeURL, "y", config.StyleProbeURL, "styling probe URL")

	probeTimeout := fs.Int("o", int(config.StyleProbeTimeout.Seconds()), "styling probe timeout (in seconds)")

	fs.StringVar(&config.AIAPIKey, "k", config.AIAPIKey, "AI API key")
	fs.StringVar(&config.AIModel, "m", config.AIModel, "AI model name")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.StyleProbeTimeout = time.Duration(*probeTimeout) * time.Second
}
