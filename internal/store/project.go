package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/dynaflex/basing/internal/repository"
	"github.com/goccy/go-json"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const projectColumns = `project_id, project_name, source_folder, destination_folder,
	palate_configuration, base_height, project_status, change_log, created_at, updated_at`

// ProjectRepository implements project.Repository.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	changeLog, err := marshalChangeLog(proj.ChangeLog)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO project (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, r.db.rebind(query),
		proj.ID,
		proj.Name,
		proj.SourceFolder,
		proj.DestinationFolder,
		proj.PalateConfiguration,
		proj.BaseHeight,
		string(proj.Status),
		changeLog,
		proj.CreatedAt.UTC(),
		proj.UpdatedAt.UTC(),
	)
	return wrapErr("insert project", err)
}

// Get returns a project by id regardless of status.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	proj, err := r.get(ctx, r.db, id, false)
	if err != nil {
		return nil, wrapErr("get project", err)
	}
	return proj, nil
}

// List returns id/name pairs with the given status, ordered by creation.
func (r *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Summary, error) {
	query := `
		SELECT project_id, project_name
		FROM project
		WHERE project_status = ?
		ORDER BY created_at, project_id
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), string(opts.Status), opts.Limit, opts.Offset)
	if err != nil {
		return nil, wrapErr("list projects", err)
	}
	defer rows.Close()

	summaries := []project.Summary{}
	for rows.Next() {
		var s project.Summary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, wrapErr("scan project summary", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate projects", err)
	}
	return summaries, nil
}

// Update snapshots the current fields into the change log and applies cfg,
// in one transaction.
func (r *ProjectRepository) Update(ctx context.Context, id string, cfg project.Config, updatedAt time.Time) (*project.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("begin update", err)
	}
	defer tx.Rollback()

	proj, err := r.get(ctx, tx, id, r.db.dialect == DialectPostgres)
	if err != nil {
		return nil, wrapErr("load project for update", err)
	}

	proj.ChangeLog = append(proj.ChangeLog, proj.Snapshot())
	proj.Apply(cfg)
	proj.UpdatedAt = updatedAt.UTC()

	changeLog, err := marshalChangeLog(proj.ChangeLog)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE project
		SET project_name = ?, source_folder = ?, destination_folder = ?,
			palate_configuration = ?, base_height = ?, change_log = ?, updated_at = ?
		WHERE project_id = ?
	`
	if _, err := tx.ExecContext(ctx, r.db.rebind(query),
		proj.Name,
		proj.SourceFolder,
		proj.DestinationFolder,
		proj.PalateConfiguration,
		proj.BaseHeight,
		changeLog,
		proj.UpdatedAt,
		id,
	); err != nil {
		return nil, wrapErr("update project", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapErr("commit update", err)
	}
	return proj, nil
}

// SoftDelete marks a project Inactive. The row is kept.
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string, updatedAt time.Time) error {
	query := `UPDATE project SET project_status = ?, updated_at = ? WHERE project_id = ?`
	result, err := r.db.ExecContext(ctx, r.db.rebind(query), string(project.StatusInactive), updatedAt.UTC(), id)
	if err != nil {
		return wrapErr("soft delete project", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return wrapErr("soft delete project", err)
	}
	if affected == 0 {
		return fmt.Errorf("soft delete project: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *ProjectRepository) get(ctx context.Context, q queryer, id string, forUpdate bool) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE project_id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		proj      project.Project
		status    string
		changeLog []byte
	)
	err := q.QueryRowContext(ctx, r.db.rebind(query), id).Scan(
		&proj.ID,
		&proj.Name,
		&proj.SourceFolder,
		&proj.DestinationFolder,
		&proj.PalateConfiguration,
		&proj.BaseHeight,
		&status,
		&changeLog,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	proj.Status = project.Status(status)
	proj.CreatedAt = proj.CreatedAt.UTC()
	proj.UpdatedAt = proj.UpdatedAt.UTC()
	proj.ChangeLog = []project.ChangeLogEntry{}
	if len(changeLog) > 0 {
		if err := json.Unmarshal(changeLog, &proj.ChangeLog); err != nil {
			return nil, fmt.Errorf("decode change log: %w", err)
		}
	}
	return &proj, nil
}

func marshalChangeLog(entries []project.ChangeLogEntry) (string, error) {
	if entries == nil {
		entries = []project.ChangeLogEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode change log: %w", err)
	}
	return string(data), nil
}
