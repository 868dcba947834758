package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/dynaflex/basing/internal/repository"
)

// TaskRepository writes tasks. The service never creates tasks itself; this
// exists for seeding and tests.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// InsertTask stores a task row.
func (r *TaskRepository) InsertTask(ctx context.Context, task *dashboard.Task) error {
	if !task.Status.Valid() {
		return fmt.Errorf("insert task: unknown status %q", task.Status)
	}
	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := task.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	query := `
		INSERT INTO task (
			task_id, file_name, project, task_status, preprocess_path,
			destination_path, error_log, task_duration, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.db.rebind(query),
		task.ID,
		task.FileName,
		task.ProjectID,
		string(task.Status),
		task.PreprocessPath,
		task.DestinationPath,
		task.ErrorLog,
		task.Duration,
		createdAt.UTC(),
		updatedAt.UTC(),
	)
	if err != nil {
		return wrapErr("insert task", err)
	}

	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = updatedAt.UTC()
	return nil
}

// UpdateTaskStatus moves a task to status, recording duration when given.
func (r *TaskRepository) UpdateTaskStatus(ctx context.Context, id string, status dashboard.TaskStatus, duration *float64) error {
	if !status.Valid() {
		return fmt.Errorf("update task: unknown status %q", status)
	}

	query := `
		UPDATE task
		SET task_status = ?, task_duration = COALESCE(?, task_duration), updated_at = ?
		WHERE task_id = ?
	`
	result, err := r.db.ExecContext(ctx, r.db.rebind(query), string(status), duration, time.Now().UTC(), id)
	if err != nil {
		return wrapErr("update task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapErr("update task", err)
	}
	if affected == 0 {
		return fmt.Errorf("update task: %w", repository.ErrNotFound)
	}
	return nil
}
