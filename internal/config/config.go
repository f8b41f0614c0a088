// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CAMPUS_DB_PATH" envDefault:"./data/campus.db"`
	SessionSecret string `env:"CAMPUS_SESSION_SECRET,required"`
	ServerHost    string `env:"CAMPUS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CAMPUS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CAMPUS_ENV" envDefault:"development"`
	LogLevel      string `env:"CAMPUS_LOG_LEVEL" envDefault:"info"`
	CollegeName   string `env:"CAMPUS_COLLEGE_NAME" envDefault:"Campus College"`

	// Backend REST API
	APIBaseURL string        `env:"CAMPUS_API_URL" envDefault:"http://localhost:5000/api"`
	APITimeout time.Duration `env:"CAMPUS_API_TIMEOUT" envDefault:"30s"`

	// Cache configuration
	RedisURL     string        `env:"CAMPUS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string        `env:"CAMPUS_CACHE_PREFIX" envDefault:"campus:"` // Redis key prefix
	CacheTTL     time.Duration `env:"CAMPUS_CACHE_TTL" envDefault:"5m"`
	CacheMaxSize int           `env:"CAMPUS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Uploads
	UploadMaxSize int64 `env:"CAMPUS_UPLOAD_MAX_SIZE" envDefault:"10485760"`
	ImageMaxWidth int   `env:"CAMPUS_IMAGE_MAX_WIDTH" envDefault:"1920"`

	// Background jobs
	WarmupSchedule   string        `env:"CAMPUS_WARMUP_SCHEDULE" envDefault:"*/10 * * * *"`
	WorkspaceIdleTTL time.Duration `env:"CAMPUS_WORKSPACE_IDLE_TTL" envDefault:"2h"`
	EventRetention   time.Duration `env:"CAMPUS_EVENT_RETENTION" envDefault:"720h"`

	MetricsEnabled bool `env:"CAMPUS_METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CAMPUS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("CAMPUS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CAMPUS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if err := validateAPIURL(cfg.APIBaseURL); err != nil {
		return nil, err
	}

	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("CAMPUS_API_TIMEOUT must be positive, got %s", cfg.APITimeout)
	}

	if cfg.UploadMaxSize <= 0 {
		return nil, fmt.Errorf("CAMPUS_UPLOAD_MAX_SIZE must be positive, got %d", cfg.UploadMaxSize)
	}

	return cfg, nil
}

// validateAPIURL requires an absolute http(s) URL.
func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("CAMPUS_API_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CAMPUS_API_URL must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("CAMPUS_API_URL must include a host, got %q", raw)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
