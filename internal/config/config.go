// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Initial fetch policies control readiness behavior when the very first
// downstream fetch fails.
const (
	// InitialFetchFailFast refuses to start if the initial fetch fails.
	InitialFetchFailFast = "fail-fast"
	// InitialFetchDegrade becomes ready without a snapshot; reads report unavailable.
	InitialFetchDegrade = "degrade"
	// InitialFetchBoundedRetry retries the initial fetch up to a timeout, then degrades.
	InitialFetchBoundedRetry = "bounded-retry"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// DownstreamBaseURL is the base URL of the downstream entity API.
	DownstreamBaseURL string
	// DownstreamTimeout is the per-request timeout for downstream fetches.
	DownstreamTimeout time.Duration
	// DownstreamMaxRetries is the number of retries per downstream fetch.
	DownstreamMaxRetries int

	// CacheTTL is how long a published snapshot is considered fresh.
	CacheTTL time.Duration
	// RefreshInterval is the wall-clock interval between background refreshes.
	RefreshInterval time.Duration
	// InitialFetchPolicy is one of "fail-fast", "degrade" or "bounded-retry".
	InitialFetchPolicy string
	// InitialFetchTimeout bounds the bounded-retry policy before degrading.
	InitialFetchTimeout time.Duration

	// JWTHMACSecret is the shared secret for HS256 token verification.
	// Leave empty when using RSA verification.
	JWTHMACSecret string
	// JWTRSAPublicKey is a PEM-encoded RSA public key for RS256 verification.
	JWTRSAPublicKey string
	// JWTIssuer, when set, is required to match the token "iss" claim.
	JWTIssuer string
	// JWTAudience, when set, is required to match the token "aud" claim.
	JWTAudience string

	// MinimumGlobalRoles is the set of roles of which a caller must hold at
	// least one to pass the global access layer. Empty disables the check.
	MinimumGlobalRoles []string
	// SessionEntitlementMaxAge caps how long resolved entitlements may be
	// reused; the effective expiry never exceeds the token's own expiry.
	SessionEntitlementMaxAge time.Duration
	// SessionSweepInterval is how often expired session records are swept.
	SessionSweepInterval time.Duration

	// RateLimitEnabled indicates whether per-session rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per session.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for per-session rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Downstream entity API
		DownstreamBaseURL:    env.GetString("DOWNSTREAM_BASE_URL", ""),
		DownstreamTimeout:    env.GetDuration("DOWNSTREAM_TIMEOUT_SECONDS", 30, time.Second),
		DownstreamMaxRetries: env.GetInt("DOWNSTREAM_MAX_RETRIES", 2),

		// Cache
		CacheTTL:            env.GetDuration("CACHE_TTL_SECONDS", 300, time.Second),
		RefreshInterval:     env.GetDuration("CACHE_REFRESH_INTERVAL_SECONDS", 300, time.Second),
		InitialFetchPolicy:  env.GetString("INITIAL_FETCH_POLICY", InitialFetchDegrade),
		InitialFetchTimeout: env.GetDuration("INITIAL_FETCH_TIMEOUT_SECONDS", 60, time.Second),

		// Identity verification
		JWTHMACSecret:   env.GetString("JWT_HMAC_SECRET", ""),
		JWTRSAPublicKey: env.GetString("JWT_RSA_PUBLIC_KEY", ""),
		JWTIssuer:       env.GetString("JWT_ISSUER", ""),
		JWTAudience:     env.GetString("JWT_AUDIENCE", ""),

		// Authorization
		MinimumGlobalRoles:       splitAndTrim(env.GetString("MINIMUM_GLOBAL_ROLES", "reader")),
		SessionEntitlementMaxAge: env.GetDuration("SESSION_ENTITLEMENT_MAX_AGE_SECONDS", 900, time.Second),
		SessionSweepInterval:     env.GetDuration("SESSION_SWEEP_INTERVAL_SECONDS", 60, time.Second),

		// Rate Limiting (per authenticated session)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "entitygate"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// splitAndTrim parses a comma-separated list and drops empty elements.
func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
