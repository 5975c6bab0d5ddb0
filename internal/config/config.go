// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// APIKeyHash is the bcrypt hash the sync API verifies bearer keys
	// against. Empty disables authentication, for private deployments.
	APIKeyHash string

	// PresetDir, when set, points at a directory of additional calendar
	// definition YAML files loaded alongside the built-in presets.
	PresetDir string

	// CORSOrigins lists origins allowed to call the API cross-origin, for
	// VTT modules running in the browser. Empty disables CORS; "*" allows
	// any origin.
	CORSOrigins []string

	// TrustedProxies lists CIDRs of reverse proxies whose forwarding
	// headers are trusted when resolving client IPs.
	TrustedProxies []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnvInt("PORT", 8080),
		LogLevel:   getEnv("LOG_LEVEL", "debug"),
		APIKeyHash: getEnv("API_KEY_HASH", ""),
		PresetDir:  getEnv("PRESET_DIR", ""),

		CORSOrigins:    getEnvList("CORS_ORIGINS"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var into a slice, trimming
// whitespace around each entry. Unset or empty yields nil.
func getEnvList(key string) []string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
