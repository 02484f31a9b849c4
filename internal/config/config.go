// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret signs tokens when APP_ENV is development and JWT_SECRET is unset.
const DevJWTSecret = "moneysplit-development-secret-change-me"

const minProductionSecretLength = 32

type Config struct {
	// HTTP Server
	Port string

	// Database
	DBPath string

	// Sessions
	JWTSecret     string
	TokenDuration time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Environment: development or production
	AppEnv string
}

// Load reads envFiles (default ".env") into the process environment without
// overriding variables that are already set, then builds the configuration.
// Missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/moneysplit.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "tint"),
		AppEnv:        getEnv("APP_ENV", "development"),
	}

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = DevJWTSecret
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}

	validEnvs := []string{"development", "production"}
	if !slices.Contains(validEnvs, c.AppEnv) {
		errs = append(errs, fmt.Sprintf("invalid app env '%s': must be one of %v", c.AppEnv, validEnvs))
	}

	switch {
	case c.JWTSecret == "":
		errs = append(errs, "JWT secret is required")
	case !c.IsDevelopment() && c.JWTSecret == DevJWTSecret:
		errs = append(errs, "JWT secret must not be the development default outside development")
	case !c.IsDevelopment() && len(c.JWTSecret) < minProductionSecretLength:
		errs = append(errs, fmt.Sprintf("JWT secret must be at least %d characters in production", minProductionSecretLength))
	}

	if c.TokenDuration < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.TokenDuration))
	} else if c.TokenDuration > 30*24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid token duration %v: must be at most 30 days", c.TokenDuration))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	validFormats := []string{"tint", "json"}
	if !slices.Contains(validFormats, c.LogFormat) {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
