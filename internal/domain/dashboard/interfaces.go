package dashboard

import "context"

// Reader reads the dashboard view.
type Reader interface {
	// Page returns the tasks at the given 1-based page together with the live
	// total count, read in one transaction.
	Page(ctx context.Context, page, limit int) (*Page, error)
	Aggregates(ctx context.Context) (*Aggregates, error)
}

// TaskWriter inserts and updates tasks. Production code never writes tasks;
// seeding and tests do.
type TaskWriter interface {
	InsertTask(ctx context.Context, task *Task) error
	UpdateTaskStatus(ctx context.Context, id string, status TaskStatus, duration *float64) error
}
