package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		for _, key := range []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT", "DB_SSLMODE", "DB_TIMEZONE"} {
			t.Setenv(key, "")
		}

		cfg := LoadConfigFromEnv()
		assert.Equal(t, Config{
			Host:     "localhost",
			User:     "postgres",
			Password: "postgres",
			DBName:   "ctf_platform",
			Port:     "5432",
			SSLMode:  "disable",
			TimeZone: "UTC",
		}, cfg)
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("DB_HOST", "db")
		t.Setenv("DB_NAME", "ctf")
		t.Setenv("DB_SSLMODE", "require")

		cfg := LoadConfigFromEnv()
		assert.Equal(t, "db", cfg.Host)
		assert.Equal(t, "ctf", cfg.DBName)
		assert.Equal(t, "require", cfg.SSLMode)
	})
}

func TestBuildDSN(t *testing.T) {
	cfg := Config{Host: "h", User: "u", Password: "p", DBName: "d", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=d port=5432 sslmode=disable TimeZone=UTC", BuildDSN(cfg))
	assert.Equal(t, "host=h user=u password=*** dbname=d port=5432 sslmode=disable TimeZone=UTC", cfg.SafeDSN())
}

func TestSanitizeError(t *testing.T) {
	cfg := Config{Host: "h", User: "u", Password: "hunter2", DBName: "d", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}

	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, SanitizeError(nil, cfg))
	})

	t.Run("password removed", func(t *testing.T) {
		err := SanitizeError(errors.New("cannot parse `"+BuildDSN(cfg)+"`: auth failed for hunter2"), cfg)
		assert.NotContains(t, err.Error(), "hunter2")
		assert.Contains(t, err.Error(), "password=***")
		assert.Contains(t, err.Error(), "failed to connect to database")
	})

	t.Run("empty password leaves message intact", func(t *testing.T) {
		noPass := cfg
		noPass.Password = ""
		err := SanitizeError(errors.New("dial tcp: connection refused"), noPass)
		assert.Contains(t, err.Error(), "dial tcp: connection refused")
	})
}

func TestLoadRetryConfigFromEnv(t *testing.T) {
	t.Setenv("DB_RETRY_MAX_ATTEMPTS", "2")
	t.Setenv("DB_RETRY_INITIAL_DELAY", "50ms")
	t.Setenv("DB_RETRY_MAX_DELAY", "1s")
	t.Setenv("DB_RETRY_MULTIPLIER", "1.5")

	cfg := LoadRetryConfigFromEnv()
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, time.Second, cfg.MaxDelay)
	assert.InDelta(t, 1.5, cfg.Multiplier, 1e-9)
	assert.Contains(t, cfg.RetryableErrors, "connection refused")
}
