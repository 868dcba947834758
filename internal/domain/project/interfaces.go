package project

import (
	"context"
	"time"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, opts ListOptions) ([]Summary, error)
	// Update snapshots the stored fields into the change log and applies cfg
	// in one transaction.
	Update(ctx context.Context, id string, cfg Config, updatedAt time.Time) (*Project, error)
	SoftDelete(ctx context.Context, id string, updatedAt time.Time) error
}

// ListOptions filters and pages a project listing.
type ListOptions struct {
	Status Status
	Offset int
	Limit  int
}
