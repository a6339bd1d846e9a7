package config

import "fmt"

// RedisConfig holds redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// LoadRedisConfigFromEnv loads redis configuration from environment variables.
func LoadRedisConfigFromEnv() RedisConfig {
	return RedisConfig{
		Addr:     GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: GetEnv("REDIS_PASSWORD", ""),
		DB:       GetEnvInt("REDIS_DB", 0),
		PoolSize: GetEnvInt("REDIS_POOL_SIZE", 10),
	}
}

// Validate validates redis configuration.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("REDIS_ADDR must not be empty")
	}
	if c.DB < 0 {
		return fmt.Errorf("REDIS_DB must be non-negative")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("REDIS_POOL_SIZE must be greater than 0")
	}
	return nil
}
