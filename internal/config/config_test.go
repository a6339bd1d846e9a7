package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Auth: AuthConfig{
			JWTSecret:        "secret",
			SessionTTL:       24 * time.Hour,
			ConfirmTTL:       time.Hour,
			LoginMaxFailures: 5,
			LoginForbidTime:  10 * time.Minute,
			CookieName:       "session",
		},
		Redis:     RedisConfig{Addr: "127.0.0.1:6379", PoolSize: 10},
		Storage:   StorageConfig{UploadDir: "./storage", MaxUploadSize: 1 << 20},
		Scoring:   ScoringConfig{RankMode: RankModeCompetition, LeaderboardTTL: 15 * time.Second},
		PublicURL: "http://127.0.0.1:8080",
		GinMode:   "release",
	}
}

func TestLoadFromEnv_DefaultValues(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "LOG_LEVEL", "GIN_MODE", "PUBLIC_URL", "SCORING_RANK_MODE", "REDIS_ADDR", "MAIL_PORT"} {
		t.Setenv(key, "")
	}

	cfg := LoadFromEnv()
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.PublicURL)
	assert.Equal(t, RankModeCompetition, cfg.Scoring.RankMode)
	assert.Equal(t, 15*time.Second, cfg.Scoring.LeaderboardTTL)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ConfirmTTL)
	assert.Equal(t, 5, cfg.Auth.LoginMaxFailures)
	assert.Equal(t, 10*time.Minute, cfg.Auth.LoginForbidTime)
}

func TestLoadFromEnv_CustomValues(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("PUBLIC_URL", "https://ctf.example.com/")
	t.Setenv("SCORING_RANK_MODE", "dense")
	t.Setenv("AUTH_LOGIN_MAX_FAILURES", "3")
	t.Setenv("MAIL_USERNAME", "noreply@example.com")
	t.Setenv("MAIL_FROM", "")

	cfg := LoadFromEnv()
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "https://ctf.example.com", cfg.PublicURL, "trailing slash is trimmed")
	assert.Equal(t, RankModeDense, cfg.Scoring.RankMode)
	assert.Equal(t, 3, cfg.Auth.LoginMaxFailures)
	assert.Equal(t, "noreply@example.com", cfg.Mail.From, "sender defaults to the SMTP user")
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid server config",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "server config validation failed",
		},
		{
			name:    "invalid logger config",
			mutate:  func(c *Config) { c.Logger.Level = "verbose" },
			wantErr: "logger config validation failed",
		},
		{
			name:    "default secret in release mode",
			mutate:  func(c *Config) { c.Auth.JWTSecret = defaultJWTSecret },
			wantErr: "auth config validation failed",
		},
		{
			name:    "admin name without password",
			mutate:  func(c *Config) { c.Auth.AdminName = "root" },
			wantErr: "ADMIN_NAME and ADMIN_PASSWORD",
		},
		{
			name:    "empty redis addr",
			mutate:  func(c *Config) { c.Redis.Addr = "" },
			wantErr: "redis config validation failed",
		},
		{
			name:    "mail host without sender",
			mutate:  func(c *Config) { c.Mail = MailConfig{Host: "smtp.example.com", Port: 465, Timeout: time.Second} },
			wantErr: "mail config validation failed",
		},
		{
			name:    "unknown rank mode",
			mutate:  func(c *Config) { c.Scoring.RankMode = "olympic" },
			wantErr: "invalid SCORING_RANK_MODE",
		},
		{
			name:    "empty upload dir",
			mutate:  func(c *Config) { c.Storage.UploadDir = "" },
			wantErr: "storage config validation failed",
		},
		{
			name:    "relative public url",
			mutate:  func(c *Config) { c.PublicURL = "/ctf" },
			wantErr: "invalid PUBLIC_URL",
		},
		{
			name:    "invalid gin mode",
			mutate:  func(c *Config) { c.GinMode = "production" },
			wantErr: "invalid GIN_MODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("default secret accepted in debug mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.GinMode = "debug"
		cfg.Auth.JWTSecret = defaultJWTSecret
		assert.NoError(t, cfg.Validate())
	})

	t.Run("mail disabled skips mail checks", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mail = MailConfig{Port: -1}
		assert.NoError(t, cfg.Validate())
		assert.False(t, cfg.Mail.Enabled())
	})
}
