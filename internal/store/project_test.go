package store

import (
	"context"
	"testing"
	"time"

	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/dynaflex/basing/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestProject(name string, at time.Time) *project.Project {
	return &project.Project{
		ID:                  uuid.NewString(),
		Name:                name,
		SourceFolder:        "/src/" + name,
		DestinationFolder:   "/dst/" + name,
		PalateConfiguration: "P",
		BaseHeight:          1.5,
		Status:              project.StatusActive,
		ChangeLog:           []project.ChangeLogEntry{},
		CreatedAt:           at,
		UpdatedAt:           at,
	}
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	proj := newTestProject("A", created)
	require.NoError(t, repo.Create(ctx, proj))

	got, err := repo.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, proj.ID, got.ID)
	require.Equal(t, "A", got.Name)
	require.Equal(t, "/src/A", got.SourceFolder)
	require.Equal(t, 1.5, got.BaseHeight)
	require.Equal(t, project.StatusActive, got.Status)
	require.Empty(t, got.ChangeLog)
	require.True(t, created.Equal(got.CreatedAt))
	require.Equal(t, time.UTC, got.CreatedAt.Location())
}

func TestProjectRepository_GetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)

	_, err := repo.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_UniqueAmongActive(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first := newTestProject("A", now)
	require.NoError(t, repo.Create(ctx, first))

	dupName := newTestProject("A", now)
	dupName.SourceFolder, dupName.DestinationFolder = "/other/src", "/other/dst"
	require.ErrorIs(t, repo.Create(ctx, dupName), repository.ErrConflict)

	dupFolder := newTestProject("B", now)
	dupFolder.SourceFolder = first.SourceFolder
	require.ErrorIs(t, repo.Create(ctx, dupFolder), repository.ErrConflict)

	// Soft deletion releases the name and folders.
	require.NoError(t, repo.SoftDelete(ctx, first.ID, now))
	require.NoError(t, repo.Create(ctx, newTestProject("A", now)))
}

func TestProjectRepository_UpdateAppendsChangeLog(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	proj := newTestProject("A", created)
	require.NoError(t, repo.Create(ctx, proj))

	updates := []string{"A2", "A3", "A4"}
	for i, name := range updates {
		cfg := project.Config{
			Name:                name,
			SourceFolder:        "/src/" + name,
			DestinationFolder:   "/dst/" + name,
			PalateConfiguration: "P",
			BaseHeight:          float64(i),
		}
		updated, err := repo.Update(ctx, proj.ID, cfg, created.Add(time.Duration(i+1)*time.Minute))
		require.NoError(t, err)
		require.Equal(t, name, updated.Name)
		require.Len(t, updated.ChangeLog, i+1)
	}

	got, err := repo.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, "A4", got.Name)
	require.Len(t, got.ChangeLog, len(updates))
	require.Equal(t, "A", got.ChangeLog[0].Name)
	require.True(t, created.Equal(got.ChangeLog[0].UpdatedAt))
	require.Equal(t, "A3", got.ChangeLog[2].Name)
	require.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestProjectRepository_FailedUpdateLeavesChangeLog(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	a := newTestProject("A", now)
	b := newTestProject("B", now)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	cfg := project.Config{
		Name:                "B",
		SourceFolder:        "/x",
		DestinationFolder:   "/y",
		PalateConfiguration: "P",
		BaseHeight:          1,
	}
	_, err := repo.Update(ctx, a.ID, cfg, now)
	require.ErrorIs(t, err, repository.ErrConflict)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "A", got.Name)
	require.Empty(t, got.ChangeLog)
}

func TestProjectRepository_UpdateNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)

	_, err := repo.Update(context.Background(), uuid.NewString(), project.Config{Name: "x"}, time.Now())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_SoftDelete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	proj := newTestProject("A", now)
	require.NoError(t, repo.Create(ctx, proj))
	require.NoError(t, repo.SoftDelete(ctx, proj.ID, now.Add(time.Second)))

	active, err := repo.List(ctx, project.ListOptions{Status: project.StatusActive, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, active)

	got, err := repo.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, project.StatusInactive, got.Status)

	require.ErrorIs(t, repo.SoftDelete(ctx, uuid.NewString(), now), repository.ErrNotFound)
}

func TestProjectRepository_ListPaging(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Create(ctx, newTestProject(name, base.Add(time.Duration(i)*time.Hour))))
	}

	page, err := repo.List(ctx, project.ListOptions{Status: project.StatusActive, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "B", page[0].Name)

	all, err := repo.List(ctx, project.ListOptions{Status: project.StatusActive, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
}
