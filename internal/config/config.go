// Package config loads the platform configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Auth holds session, token and login throttle configuration.
	Auth AuthConfig
	// Redis holds key-value store configuration.
	Redis RedisConfig
	// Mail holds verification mail configuration.
	Mail MailConfig
	// Storage holds attachment storage configuration.
	Storage StorageConfig
	// Scoring holds ranking configuration.
	Scoring ScoringConfig
	// PublicURL is the externally visible base URL used to build links.
	PublicURL string
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Config{
		Server:    LoadServerConfigFromEnv(),
		Logger:    LoadLoggerConfigFromEnv(),
		Auth:      LoadAuthConfigFromEnv(),
		Redis:     LoadRedisConfigFromEnv(),
		Mail:      LoadMailConfigFromEnv(),
		Storage:   LoadStorageConfigFromEnv(),
		Scoring:   LoadScoringConfigFromEnv(),
		PublicURL: strings.TrimRight(GetEnv("PUBLIC_URL", "http://127.0.0.1:8080"), "/"),
		GinMode:   GetEnv("GIN_MODE", "release"),
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := c.Auth.Validate(c.GinMode); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config validation failed: %w", err)
	}

	if err := c.Mail.Validate(); err != nil {
		return fmt.Errorf("mail config validation failed: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}

	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring config validation failed: %w", err)
	}

	u, err := url.Parse(c.PublicURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid PUBLIC_URL: %q", c.PublicURL)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s (must be: debug, release, test)", c.GinMode)
	}

	return nil
}
