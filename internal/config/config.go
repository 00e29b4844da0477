package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
// The service is stateless: compositions live on disk under OutputDir.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Composition
	OutputDir       string // where generated .mid files are written
	DefaultMode     string // opaque mode tag recorded when a request has none
	HumanizeSeed    uint64 // seed used when a request does not carry one
	Humanize        bool
	TicksPerQuarter int
	WriteStems      bool // also write one file per track next to each song

	// Auth mode
	// - "none": no auth (self-hosted, local dev)
	// - "gateway": trust X-User-* headers from an upstream gateway
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		Port:            getEnv("PORT", "8080"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		OutputDir:       getEnv("SC_OUTPUT_DIR", "./output"),
		DefaultMode:     getEnv("SC_DEFAULT_MODE", "default"),
		HumanizeSeed:    getEnvUint("SC_HUMANIZE_SEED", 1),
		Humanize:        getEnvBool("SC_HUMANIZE", true),
		TicksPerQuarter: getEnvInt("SC_TICKS_PER_QUARTER", 480),
		WriteStems:      getEnvBool("SC_WRITE_STEMS", false),
		AuthMode:        getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	v, err := strconv.ParseUint(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
