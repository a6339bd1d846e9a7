package config

import (
	"fmt"
	"time"
)

// MailConfig holds SMTP configuration for verification mail.
// An empty Host disables delivery; messages are only logged.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// LoadMailConfigFromEnv loads mail configuration from environment variables.
func LoadMailConfigFromEnv() MailConfig {
	username := GetEnv("MAIL_USERNAME", "")
	return MailConfig{
		Host:     GetEnv("MAIL_HOST", ""),
		Port:     GetEnvInt("MAIL_PORT", 465),
		Username: username,
		Password: GetEnv("MAIL_PASSWORD", ""),
		From:     GetEnv("MAIL_FROM", username),
		Timeout:  GetEnvDuration("MAIL_TIMEOUT", 30*time.Second),
	}
}

// Enabled reports whether SMTP delivery is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

// Validate validates mail configuration.
func (c MailConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid MAIL_PORT: %d", c.Port)
	}
	if c.From == "" {
		return fmt.Errorf("MAIL_FROM or MAIL_USERNAME must be set when MAIL_HOST is set")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be greater than 0")
	}
	return nil
}
