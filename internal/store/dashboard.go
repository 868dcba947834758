package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dynaflex/basing/internal/domain/dashboard"
)

// DashboardRepository reads dashboard_view.
type DashboardRepository struct {
	db *DB
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(db *DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Page returns one page of non-deleted tasks, newest first, and the live
// total count. Both reads share a transaction.
func (r *DashboardRepository) Page(ctx context.Context, page, limit int) (*dashboard.Page, error) {
	req := dashboard.Request{Page: page, Limit: limit}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: r.db.dialect == DialectPostgres})
	if err != nil {
		return nil, wrapErr("begin dashboard page", err)
	}
	defer tx.Rollback()

	query := `
		SELECT ` + strings.Join(dashboard.Columns, ", ") + `
		FROM dashboard_view
		WHERE task_status <> ?
		ORDER BY created_at DESC, task_id ASC
		LIMIT ? OFFSET ?
	`
	rows, err := tx.QueryContext(ctx, r.db.rebind(query), string(dashboard.StatusDeleted), req.Limit, req.Offset())
	if err != nil {
		return nil, wrapErr("query dashboard page", err)
	}
	defer rows.Close()

	tasks, err := scanRows(rows)
	if err != nil {
		return nil, wrapErr("scan dashboard page", err)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM dashboard_view WHERE task_status <> ?`
	if err := tx.QueryRowContext(ctx, r.db.rebind(countQuery), string(dashboard.StatusDeleted)).Scan(&total); err != nil {
		return nil, wrapErr("count dashboard tasks", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapErr("commit dashboard page", err)
	}

	return &dashboard.Page{
		Tasks: tasks,
		Count: dashboard.Count{TotalCount: total},
	}, nil
}

// Aggregates returns status counts and the mean duration of non-deleted
// tasks in a single query.
func (r *DashboardRepository) Aggregates(ctx context.Context) (*dashboard.Aggregates, error) {
	query := `
		SELECT
			COUNT(CASE WHEN task_status = ? THEN 1 END),
			COUNT(CASE WHEN task_status = ? THEN 1 END),
			COUNT(CASE WHEN task_status <> ? THEN 1 END),
			COUNT(CASE WHEN task_status = ? THEN 1 END),
			COUNT(CASE WHEN task_status = ? THEN 1 END),
			AVG(CASE WHEN task_status <> ? THEN task_duration END)
		FROM dashboard_view
	`
	var (
		agg dashboard.Aggregates
		avg sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, r.db.rebind(query),
		string(dashboard.StatusInProgress),
		string(dashboard.StatusCompleted),
		string(dashboard.StatusDeleted),
		string(dashboard.StatusPending),
		string(dashboard.StatusFailed),
		string(dashboard.StatusDeleted),
	).Scan(
		&agg.InProgressCount,
		&agg.CompletedCount,
		&agg.TotalCount,
		&agg.PendingCount,
		&agg.FailedCount,
		&avg,
	)
	if err != nil {
		return nil, wrapErr("query dashboard aggregates", err)
	}

	if avg.Valid {
		formatted := dashboard.FormatDecimal(avg.Float64)
		agg.AverageDuration = &formatted
	}
	return &agg, nil
}

// scanRows reads every row generically so that driver-specific value types
// all pass through dashboard.NormalizeValue.
func scanRows(rows *sql.Rows) ([]dashboard.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []dashboard.Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result = append(result, dashboard.NormalizeRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
