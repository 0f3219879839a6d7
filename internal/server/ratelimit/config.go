package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one route. Path is a pattern whose "*" segments match any
// single path segment; a trailing "/" matches any deeper path.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per window
	Window time.Duration
	Burst  int // defaults to Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept before cleanup drops it.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt("RATE_LIMIT_FEEDBACK_PER_HOUR", 30)),
	}
}

// DefaultEndpointConfigs returns per-route limits. feedbackPerHour bounds the routes that call
// the speech and critique models.
func DefaultEndpointConfigs(feedbackPerHour int) []EndpointConfig {
	return []EndpointConfig{
		// Model-backed routes
		{Path: "/responses/*/feedback", Method: "POST", Limit: feedbackPerHour, Window: time.Hour, Burst: 5},
		{Path: "/responses/*/feedback/transcript", Method: "POST", Limit: feedbackPerHour, Window: time.Hour, Burst: 5},
		{Path: "/speech", Method: "POST", Limit: 2 * feedbackPerHour, Window: time.Hour, Burst: 10},

		// Reads fall through to the default limit; GET /health is unlimited in MatchEndpoint.
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
