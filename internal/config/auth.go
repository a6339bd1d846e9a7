package config

import (
	"fmt"
	"time"
)

// AuthConfig holds session and credential configuration.
type AuthConfig struct {
	// JWTSecret signs session and email confirmation tokens.
	JWTSecret string
	// SessionTTL is the lifetime of a login session.
	SessionTTL time.Duration
	// ConfirmTTL is the lifetime of an email confirmation token.
	ConfirmTTL time.Duration
	// LoginMaxFailures is the number of failed logins tolerated per client IP.
	LoginMaxFailures int
	// LoginForbidTime is how long an IP stays locked out after too many failures.
	LoginForbidTime time.Duration
	// CookieName is the name of the session cookie.
	CookieName string
	// CookieSecure marks the session cookie as Secure.
	CookieSecure bool
	// AdminName and AdminPassword seed the initial administrator when both are set.
	AdminName     string
	AdminPassword string
}

const defaultJWTSecret = "change-me-in-production"

// LoadAuthConfigFromEnv loads auth configuration from environment variables.
func LoadAuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		JWTSecret:        GetEnv("AUTH_JWT_SECRET", defaultJWTSecret),
		SessionTTL:       GetEnvDuration("AUTH_SESSION_TTL", 24*time.Hour),
		ConfirmTTL:       GetEnvDuration("AUTH_CONFIRM_TTL", time.Hour),
		LoginMaxFailures: GetEnvInt("AUTH_LOGIN_MAX_FAILURES", 5),
		LoginForbidTime:  GetEnvDuration("AUTH_LOGIN_FORBID_TIME", 10*time.Minute),
		CookieName:       GetEnv("AUTH_COOKIE_NAME", "session"),
		CookieSecure:     GetEnvBool("AUTH_COOKIE_SECURE", true),
		AdminName:        GetEnv("ADMIN_NAME", ""),
		AdminPassword:    GetEnv("ADMIN_PASSWORD", ""),
	}
}

// Validate validates auth configuration.
// The default secret is rejected in release mode.
func (c AuthConfig) Validate(ginMode string) error {
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must not be empty")
	}
	if ginMode == "release" && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("AUTH_JWT_SECRET must be set in release mode")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SessionTTL must be greater than 0")
	}
	if c.ConfirmTTL <= 0 {
		return fmt.Errorf("ConfirmTTL must be greater than 0")
	}
	if c.LoginMaxFailures <= 0 {
		return fmt.Errorf("LoginMaxFailures must be greater than 0")
	}
	if c.LoginForbidTime <= 0 {
		return fmt.Errorf("LoginForbidTime must be greater than 0")
	}
	if c.CookieName == "" {
		return fmt.Errorf("CookieName must not be empty")
	}
	if (c.AdminName == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_NAME and ADMIN_PASSWORD must be set together")
	}
	return nil
}
