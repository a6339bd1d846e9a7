// Package service provides business logic layer for the problem catalog.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/problem/model"
	"github.com/festy23/ctf_platform/internal/problem/repository"
	"github.com/festy23/ctf_platform/internal/storage"
)

// Service defines the interface for problem catalog operations.
type Service interface {
	// List returns every problem.
	List(ctx context.Context) ([]model.Summary, error)

	// ListByTag returns the problems of one category.
	ListByTag(ctx context.Context, tag string) ([]model.Summary, error)

	// Get returns a problem with the caller's progress, recording that the
	// caller has opened it.
	Get(ctx context.Context, userID, id uint) (*model.Detail, error)

	// AdminGet returns a problem without progress.
	AdminGet(ctx context.Context, id uint) (*model.Detail, error)

	// Create uploads a new problem and its attachment.
	Create(ctx context.Context, req *model.CreateRequest) (*model.Detail, error)

	// Delete removes a problem, its progress rows and its attachment.
	// Points already awarded for it are kept.
	Delete(ctx context.Context, id uint) error

	// Download opens a problem's attachment.
	Download(ctx context.Context, id uint) (*model.Attachment, error)

	// Assign returns the environment link of a web problem.
	Assign(ctx context.Context, id uint) (*model.AssignResponse, error)
}

type service struct {
	repo      repository.Repository
	store     storage.Store
	publicURL string
	logger    *zap.SugaredLogger
}

// New creates a new problem service instance. publicURL prefixes the
// download and environment links handed to competitors.
func New(db *gorm.DB, store storage.Store, publicURL string, logger *zap.SugaredLogger) Service {
	return &service{
		repo:      repository.New(db, logger),
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (s *service) List(ctx context.Context) ([]model.Summary, error) {
	return s.repo.List(ctx)
}

func (s *service) ListByTag(ctx context.Context, tag string) ([]model.Summary, error) {
	return s.repo.ListByTag(ctx, strings.ToLower(tag))
}

func (s *service) Get(ctx context.Context, userID, id uint) (*model.Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := s.repo.EnsureState(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}

	detail := s.detail(p)
	detail.Status = &status
	return detail, nil
}

func (s *service) AdminGet(ctx context.Context, id uint) (*model.Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(p), nil
}

// detail derives the competitor-facing link: web problems point at their
// environment, problems with an attachment at the download endpoint, and
// anything else at the link the admin configured.
func (s *service) detail(p *model.Problem) *model.Detail {
	var link string
	switch {
	case p.IsWeb():
		link = fmt.Sprintf("%s/assign/problem/%d", s.publicURL, p.ID)
	case p.FilePath != nil:
		link = fmt.Sprintf("%s/download/%d", s.publicURL, p.ID)
	case p.Link != nil:
		link = *p.Link
	}

	return &model.Detail{
		ID:      p.ID,
		Tag:     p.Tag,
		Name:    p.Name,
		Content: p.Content,
		Link:    link,
		Points:  p.Points,
	}
}

// Create stores the attachment first and removes it again when the insert
// fails, so a failed upload never leaves an orphaned blob.
func (s *service) Create(ctx context.Context, req *model.CreateRequest) (*model.Detail, error) {
	p := &model.Problem{
		Tag:     strings.ToLower(strings.TrimSpace(req.Tag)),
		Name:    req.Name,
		Flag:    req.Flag,
		Content: req.Content,
		Points:  req.Points,
	}
	if p.Points == 0 {
		p.Points = model.DefaultPoints
	}
	if req.Link != "" {
		p.Link = &req.Link
	}
	if !p.IsWeb() && req.File == nil {
		return nil, model.ErrAttachmentRequired
	}

	if taken, err := s.repo.NameTaken(ctx, p.Name); err != nil {
		return nil, err
	} else if taken {
		return nil, model.ErrDuplicateName
	}
	if taken, err := s.repo.FlagTaken(ctx, p.Flag); err != nil {
		return nil, err
	} else if taken {
		return nil, model.ErrDuplicateFlag
	}

	if req.File != nil {
		f, err := req.File.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", model.ErrStorage)
		}
		path, err := s.store.Store(req.File.Filename, f)
		_ = f.Close()
		if err != nil {
			s.logger.Errorw("attachment store failed", "name", p.Name, "error", err)
			return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
		}
		filename := req.File.Filename
		p.Filename = &filename
		p.FilePath = &path
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if p.FilePath != nil {
			if rmErr := s.store.Remove(*p.FilePath); rmErr != nil {
				s.logger.Warnw("orphaned attachment", "path", *p.FilePath, "error", rmErr)
			}
		}
		return nil, err
	}

	s.logger.Infow("problem created", "wid", p.ID, "name", p.Name, "tag", p.Tag, "points", p.Points)
	return s.detail(p), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, p); err != nil {
		return err
	}
	s.logger.Infow("problem deleted", "wid", id, "name", p.Name)

	if p.FilePath != nil {
		if err := s.store.Remove(*p.FilePath); err != nil {
			s.logger.Errorw("attachment removal failed", "wid", id, "path", *p.FilePath, "error", err)
			return fmt.Errorf("%w: %v", model.ErrStorage, err)
		}
	}
	return nil
}

func (s *service) Download(ctx context.Context, id uint) (*model.Attachment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.FilePath == nil {
		return nil, model.ErrNoAttachment
	}

	body, err := s.store.Open(*p.FilePath)
	if err != nil {
		s.logger.Errorw("attachment open failed", "wid", id, "path", *p.FilePath, "error", err)
		return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	filename := "attachment"
	if p.Filename != nil {
		filename = *p.Filename
	}
	return &model.Attachment{Filename: filename, Body: body}, nil
}

func (s *service) Assign(ctx context.Context, id uint) (*model.AssignResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsWeb() {
		return nil, model.ErrNotWeb
	}
	if p.Link == nil {
		return nil, model.ErrNoEnvironment
	}
	return &model.AssignResponse{Link: *p.Link}, nil
}
