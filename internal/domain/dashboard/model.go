// Package dashboard holds the read model of the dashboard view: task rows
// joined with their project, page envelopes, and aggregate counts.
package dashboard

import "time"

// TaskStatus is the processing state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
	StatusDeleted    TaskStatus = "deleted"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusDeleted:
		return true
	}
	return false
}

// Columns of dashboard_view in the order they are selected.
var Columns = []string{
	"task_id",
	"file_name",
	"project_name",
	"task_status",
	"created_at",
	"task_duration",
	"preprocess_path",
	"destination_path",
}

// Task is a per-file unit of work. Only tests and seeding write tasks.
type Task struct {
	ID              string
	FileName        string
	ProjectID       string
	Status          TaskStatus
	PreprocessPath  string
	DestinationPath string
	ErrorLog        *string
	Duration        *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Row is one normalised dashboard_view row keyed by column name.
type Row map[string]any

// Count carries the live number of non-deleted tasks.
type Count struct {
	TotalCount int64 `json:"total_count"`
}

// Page is one slice of the dashboard view.
type Page struct {
	Tasks []Row `json:"tasks"`
	Count Count `json:"count"`
}

// Request is a page request; Page is 1-based.
type Request struct {
	Page  int
	Limit int
}

// Offset returns the number of rows skipped before this page.
func (r Request) Offset() int {
	return (r.Page - 1) * r.Limit
}

// Aggregates is a point-in-time snapshot of task counts. AverageDuration is
// nil when no non-deleted task carries a duration.
type Aggregates struct {
	InProgressCount int64   `json:"in_progress_count"`
	CompletedCount  int64   `json:"completed_count"`
	TotalCount      int64   `json:"total_count"`
	PendingCount    int64   `json:"pending_count"`
	FailedCount     int64   `json:"failed_count"`
	AverageDuration *string `json:"average_duration"`
}
