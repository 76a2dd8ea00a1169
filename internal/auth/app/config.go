package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/Noctuaa/coach-appointment-manager/pkg/jwtx"
)

var (
	ErrMissingSecrets = errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must both be set")
	ErrEqualSecrets   = errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must differ")
)

type Config struct {
	AccessSecret  string // Required: HMAC secret for access tokens
	RefreshSecret string // Required: HMAC secret for refresh tokens, distinct from AccessSecret

	AccessTTL     time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL    time.Duration // Optional: refresh token lifetime (default: 24h)
	RememberMeTTL time.Duration // Optional: refresh token lifetime with rememberMe (default: 720h)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		AccessSecret:  os.Getenv("AUTH_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("AUTH_REFRESH_SECRET"),

		AccessTTL:     getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:    getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		RememberMeTTL: getEnvDurationOrDefault("AUTH_REFRESH_REMEMBER", jwtx.DefaultRememberMeTTL),

		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:          getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	// Fail fast on secret misconfiguration. Sharing one secret between the
	// two token types would let a refresh token pass as an access token.
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return Config{}, ErrMissingSecrets
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return Config{}, ErrEqualSecrets
	}

	return cfg, nil
}

// SecureCookies reports whether session cookies should carry the Secure
// attribute. Only production is assumed to be behind TLS.
func (c Config) SecureCookies() bool {
	return c.Env == "prod"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
