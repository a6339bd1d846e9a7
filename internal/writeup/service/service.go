// Package service provides business logic layer for writeups.
package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/apperr"
	"github.com/festy23/ctf_platform/internal/database/database"
	"github.com/festy23/ctf_platform/internal/writeup/model"
	"github.com/festy23/ctf_platform/internal/writeup/repository"
)

// Service defines the interface for writeup business logic operations.
type Service interface {
	// List returns the writeup menu.
	List(ctx context.Context) ([]model.Summary, error)

	// Get returns one writeup with its content.
	Get(ctx context.Context, id uint) (*model.Detail, error)

	// ListMine returns the caller's writeups.
	ListMine(ctx context.Context, userID uint) ([]model.Summary, error)

	// Add publishes a writeup for an existing problem.
	Add(ctx context.Context, userID uint, req *model.AddRequest) error

	// Change edits a writeup owned by the caller.
	Change(ctx context.Context, userID uint, req *model.ChangeRequest) error

	// Delete removes a writeup owned by the caller.
	Delete(ctx context.Context, userID uint, req *model.DeleteRequest) error
}

type service struct {
	db     *gorm.DB
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new writeup service instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Service {
	return &service{db: db, repo: repository.New(db, logger), logger: logger}
}

func (s *service) List(ctx context.Context) ([]model.Summary, error) {
	writeups, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return summaries(writeups), nil
}

func (s *service) Get(ctx context.Context, id uint) (*model.Detail, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.ToDetail(), nil
}

func (s *service) ListMine(ctx context.Context, userID uint) ([]model.Summary, error) {
	name, err := s.repo.AuthorName(ctx, userID)
	if err != nil {
		return nil, err
	}
	writeups, err := s.repo.ListByAuthor(ctx, name)
	if err != nil {
		return nil, err
	}
	return summaries(writeups), nil
}

func (s *service) Add(ctx context.Context, userID uint, req *model.AddRequest) error {
	if utf8.RuneCountInString(req.Content) > model.MaxContentLength {
		return apperr.ErrInvalidParams
	}

	var w *model.Writeup
	err := database.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repository.New(tx, s.logger)

		name, err := repo.AuthorName(ctx, userID)
		if err != nil {
			return err
		}
		if err := checkProblem(ctx, repo, req.ProblemName); err != nil {
			return err
		}

		w = &model.Writeup{
			ProblemName: req.ProblemName,
			UserName:    name,
			Tag:         normalizeTag(req.Tag),
			Name:        req.Name,
			Content:     req.Content,
		}
		return repo.Create(ctx, w)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("writeup published", "id", w.ID, "author", w.UserName, "problem_name", w.ProblemName)
	return nil
}

func (s *service) Change(ctx context.Context, userID uint, req *model.ChangeRequest) error {
	if utf8.RuneCountInString(req.Content) > model.MaxContentLength {
		return apperr.ErrInvalidParams
	}

	err := s.owned(ctx, userID, req.ID, func(repo repository.Repository, w *model.Writeup) error {
		if err := checkProblem(ctx, repo, req.ProblemName); err != nil {
			return err
		}
		w.ProblemName = req.ProblemName
		w.Tag = normalizeTag(req.Tag)
		w.Name = req.Name
		w.Content = req.Content
		return repo.Update(ctx, w)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("writeup changed", "id", req.ID, "user_id", userID)
	return nil
}

func (s *service) Delete(ctx context.Context, userID uint, req *model.DeleteRequest) error {
	err := s.owned(ctx, userID, req.ID, func(repo repository.Repository, w *model.Writeup) error {
		return repo.Delete(ctx, w.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("writeup deleted", "id", req.ID, "user_id", userID)
	return nil
}

// owned runs fn on a locked writeup after checking that userID wrote it.
func (s *service) owned(ctx context.Context, userID, id uint, fn func(repo repository.Repository, w *model.Writeup) error) error {
	return database.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repository.New(tx, s.logger)

		w, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		name, err := repo.AuthorName(ctx, userID)
		if err != nil {
			return err
		}
		if w.UserName != name {
			return model.ErrNotOwner
		}
		return fn(repo, w)
	})
}

func checkProblem(ctx context.Context, repo repository.Repository, name string) error {
	ok, err := repo.ProblemExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrProblemNotFound
	}
	return nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func summaries(writeups []model.Writeup) []model.Summary {
	out := make([]model.Summary, 0, len(writeups))
	for i := range writeups {
		out = append(out, writeups[i].ToSummary())
	}
	return out
}
