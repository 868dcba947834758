package mocks

import (
	"context"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Summary, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, id string, cfg project.Config, updatedAt time.Time) (*project.Project, error) {
	args := m.Called(ctx, id, cfg, updatedAt)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SoftDelete(ctx context.Context, id string, updatedAt time.Time) error {
	args := m.Called(ctx, id, updatedAt)
	return args.Error(0)
}

// DashboardReader is a mock for the dashboard view reads used by the feeds.
type DashboardReader struct {
	mock.Mock
}

func (m *DashboardReader) Page(ctx context.Context, page, limit int) (*dashboard.Page, error) {
	args := m.Called(ctx, page, limit)
	if p, ok := args.Get(0).(*dashboard.Page); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DashboardReader) Aggregates(ctx context.Context) (*dashboard.Aggregates, error) {
	args := m.Called(ctx)
	if a, ok := args.Get(0).(*dashboard.Aggregates); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
