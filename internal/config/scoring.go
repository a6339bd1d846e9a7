package config

import (
	"fmt"
	"time"
)

// Rank modes.
const (
	// RankModeCompetition gives tied entries the same rank and skips the following ranks (1,1,3).
	RankModeCompetition = "competition"
	// RankModeDense gives tied entries the same rank without gaps (1,1,2).
	RankModeDense = "dense"
)

// ScoringConfig holds ranking and leaderboard configuration.
type ScoringConfig struct {
	RankMode       string
	LeaderboardTTL time.Duration
}

// LoadScoringConfigFromEnv loads scoring configuration from environment variables.
func LoadScoringConfigFromEnv() ScoringConfig {
	return ScoringConfig{
		RankMode:       GetEnv("SCORING_RANK_MODE", RankModeCompetition),
		LeaderboardTTL: GetEnvDuration("LEADERBOARD_CACHE_TTL", 15*time.Second),
	}
}

// Validate validates scoring configuration.
func (c ScoringConfig) Validate() error {
	if c.RankMode != RankModeCompetition && c.RankMode != RankModeDense {
		return fmt.Errorf("invalid SCORING_RANK_MODE: %s (must be: competition, dense)", c.RankMode)
	}
	if c.LeaderboardTTL <= 0 {
		return fmt.Errorf("LeaderboardTTL must be greater than 0")
	}
	return nil
}

// StorageConfig holds attachment storage configuration.
type StorageConfig struct {
	UploadDir string
	// MaxUploadSize caps the multipart body accepted for problem attachments.
	MaxUploadSize int64
}

// LoadStorageConfigFromEnv loads storage configuration from environment variables.
func LoadStorageConfigFromEnv() StorageConfig {
	return StorageConfig{
		UploadDir:     GetEnv("UPLOAD_DIR", "./storage"),
		MaxUploadSize: int64(GetEnvInt("UPLOAD_MAX_SIZE_MB", 64)) << 20,
	}
}

// Validate validates storage configuration.
func (c StorageConfig) Validate() error {
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_MB must be greater than 0")
	}
	return nil
}
