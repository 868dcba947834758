package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/dynaflex/basing/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs against a disposable Postgres database named by BASING_TEST_POSTGRES_DSN.
func TestPostgresRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("BASING_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BASING_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DialectPostgres, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`DROP VIEW IF EXISTS dashboard_view`,
		`DROP TABLE IF EXISTS task`,
		`DROP TABLE IF EXISTS project`,
		`DROP TABLE IF EXISTS users`,
		`DROP TABLE IF EXISTS schema_migrations`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Migrate(ctx))

	projects := NewProjectRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	proj := newTestProject("PG", now)
	require.NoError(t, projects.Create(ctx, proj))
	require.ErrorIs(t, projects.Create(ctx, newTestProject("PG", now)), repository.ErrConflict)

	updated, err := projects.Update(ctx, proj.ID, project.Config{
		Name:                "PG2",
		SourceFolder:        "/s2",
		DestinationFolder:   "/d2",
		PalateConfiguration: "P",
		BaseHeight:          2,
	}, now.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, updated.ChangeLog, 1)

	tasks := NewTaskRepository(db)
	dur := 3.25
	require.NoError(t, tasks.InsertTask(ctx, &dashboard.Task{
		ID:              uuid.NewString(),
		FileName:        "f",
		ProjectID:       proj.ID,
		Status:          dashboard.StatusCompleted,
		PreprocessPath:  "/pre",
		DestinationPath: "/dst",
		Duration:        &dur,
		CreatedAt:       now,
	}))

	page, err := NewDashboardRepository(db).Page(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	require.Equal(t, "3.250", page.Tasks[0]["task_duration"])
	require.Equal(t, "PG2", page.Tasks[0]["project_name"])

	agg, err := NewDashboardRepository(db).Aggregates(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), agg.CompletedCount)
}
