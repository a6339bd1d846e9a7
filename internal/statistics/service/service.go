// Package service provides business logic layer for statistics module.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/statistics/model"
	"github.com/festy23/ctf_platform/internal/statistics/repository"
)

// Service defines the interface for statistics business logic operations.
type Service interface {
	// GetProblemsStatistics returns solve counts for every problem.
	GetProblemsStatistics(ctx context.Context) (*model.ProblemsStatisticsResponse, error)

	// GetOverview returns competition-wide totals.
	GetOverview(ctx context.Context) (*model.Overview, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new statistics service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

// GetProblemsStatistics returns statistics for all problems.
func (s *service) GetProblemsStatistics(ctx context.Context) (*model.ProblemsStatisticsResponse, error) {
	s.logger.Debugw("GetProblemsStatistics called")

	problems, err := s.repo.GetProblemsStatistics(ctx)
	if err != nil {
		s.logger.Errorw("GetProblemsStatistics failed", "error", err)
		return nil, err
	}

	if problems == nil {
		problems = []model.ProblemStatistics{}
	}

	s.logger.Infow("GetProblemsStatistics completed", "count", len(problems))
	return &model.ProblemsStatisticsResponse{
		Problems: problems,
		Total:    len(problems),
	}, nil
}

// GetOverview returns competition-wide totals.
func (s *service) GetOverview(ctx context.Context) (*model.Overview, error) {
	s.logger.Debugw("GetOverview called")

	overview, err := s.repo.GetOverview(ctx)
	if err != nil {
		s.logger.Errorw("GetOverview failed", "error", err)
		return nil, err
	}

	s.logger.Infow("GetOverview completed", "users", overview.Users, "problems", overview.Problems)
	return overview, nil
}
