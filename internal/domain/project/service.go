package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dynaflex/basing/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 1000
)

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create validates cfg and stores a new active project with an empty change log.
func (s *Service) Create(ctx context.Context, cfg Config) (*Project, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	now := s.now()
	proj := &Project{
		ID:        uuid.NewString(),
		Status:    StatusActive,
		ChangeLog: []ChangeLogEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	proj.Apply(cfg)

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, mapError("creating project", err)
	}

	s.logger.Info("project created", "project_id", proj.ID, "source_folder", proj.SourceFolder)
	return proj, nil
}

// Get fetches a project by ID regardless of status.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError("getting project", err)
	}
	return proj, nil
}

// List returns summaries of active projects.
func (s *Service) List(ctx context.Context, offset, limit int) ([]Summary, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxListLimit)
	}

	summaries, err := s.repo.List(ctx, ListOptions{
		Status: StatusActive,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, mapError("listing projects", err)
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return summaries, nil
}

// Update appends the current fields to the change log and applies cfg.
func (s *Service) Update(ctx context.Context, id string, cfg Config) (*Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	proj, err := s.repo.Update(ctx, id, cfg, s.now())
	if err != nil {
		return nil, mapError("updating project", err)
	}

	s.logger.Info("project updated", "project_id", id, "change_log_len", len(proj.ChangeLog))
	return proj, nil
}

// Delete marks the project inactive. The row is kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return mapError("deleting project", err)
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProjectNotFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrProjectConflict)
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
