package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/dynaflex/basing/internal/feed"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectFields are the editable project values.
type ProjectFields struct {
	ProjectName         string  `json:"project_name" jsonschema:"display name, unique among active projects"`
	SourceFolder        string  `json:"source_folder" jsonschema:"folder watched for parts, unique among active projects"`
	DestinationFolder   string  `json:"destination_folder" jsonschema:"folder results are written to, unique among active projects"`
	PalateConfiguration string  `json:"palate_configuration" jsonschema:"opaque palate configuration"`
	BaseHeight          float64 `json:"base_height" jsonschema:"base height, finite and not negative"`
}

func (f ProjectFields) config() project.Config {
	return project.Config{
		Name:                f.ProjectName,
		SourceFolder:        f.SourceFolder,
		DestinationFolder:   f.DestinationFolder,
		PalateConfiguration: f.PalateConfiguration,
		BaseHeight:          f.BaseHeight,
	}
}

type ProjectIDParams struct {
	ProjectID string `json:"project_id" jsonschema:"project UUID"`
}

type UpdateProjectParams struct {
	ProjectID           string  `json:"project_id" jsonschema:"project UUID"`
	ProjectName         string  `json:"project_name" jsonschema:"new display name"`
	SourceFolder        string  `json:"source_folder" jsonschema:"new source folder"`
	DestinationFolder   string  `json:"destination_folder" jsonschema:"new destination folder"`
	PalateConfiguration string  `json:"palate_configuration" jsonschema:"new palate configuration"`
	BaseHeight          float64 `json:"base_height" jsonschema:"new base height"`
}

func (p UpdateProjectParams) fields() ProjectFields {
	return ProjectFields{
		ProjectName:         p.ProjectName,
		SourceFolder:        p.SourceFolder,
		DestinationFolder:   p.DestinationFolder,
		PalateConfiguration: p.PalateConfiguration,
		BaseHeight:          p.BaseHeight,
	}
}

type ListProjectsParams struct {
	Offset int `json:"offset,omitempty" jsonschema:"rows to skip, default 0"`
	Limit  int `json:"limit,omitempty" jsonschema:"maximum rows, default 10, at most 1000"`
}

type DashboardPageParams struct {
	Page  int `json:"page,omitempty" jsonschema:"1-based page number, default 1"`
	Limit int `json:"limit,omitempty" jsonschema:"rows per page, default 100"`
}

type EmptyParams struct{}

type ChangeLogOutput struct {
	ProjectName         string  `json:"project_name"`
	SourceFolder        string  `json:"source_folder"`
	DestinationFolder   string  `json:"destination_folder"`
	PalateConfiguration string  `json:"palate_configuration"`
	BaseHeight          float64 `json:"base_height"`
	UpdatedAt           string  `json:"updated_at"`
}

type ProjectOutput struct {
	ProjectID           string            `json:"project_id"`
	ProjectName         string            `json:"project_name"`
	SourceFolder        string            `json:"source_folder"`
	DestinationFolder   string            `json:"destination_folder"`
	PalateConfiguration string            `json:"palate_configuration"`
	BaseHeight          float64           `json:"base_height"`
	ProjectStatus       string            `json:"project_status"`
	ChangeLog           []ChangeLogOutput `json:"change_log"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
}

type ProjectSummaryOutput struct {
	ProjectName string `json:"project_name"`
	ProjectID   string `json:"project_id"`
}

type ListProjectsOutput struct {
	Projects []ProjectSummaryOutput `json:"projects"`
}

type DeleteProjectOutput struct {
	ProjectID     string `json:"project_id"`
	ProjectStatus string `json:"project_status"`
}

type CountOutput struct {
	TotalCount int64 `json:"total_count"`
}

type DashboardPageOutput struct {
	Tasks []map[string]any `json:"tasks"`
	Count CountOutput      `json:"count"`
}

type AggregatesOutput struct {
	InProgressCount int64   `json:"in_progress_count"`
	CompletedCount  int64   `json:"completed_count"`
	TotalCount      int64   `json:"total_count"`
	PendingCount    int64   `json:"pending_count"`
	FailedCount     int64   `json:"failed_count"`
	AverageDuration *string `json:"average_duration,omitempty"`
}

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a project. Name and folders must be unique among active projects.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectFields) (*sdkmcp.CallToolResult, ProjectOutput, error) {
		proj, err := svc.Projects.Create(ctx, in.config())
		if err != nil {
			return nil, ProjectOutput{}, MapError(err)
		}
		return nil, toProjectOutput(proj), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List active projects as id/name pairs.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsOutput, error) {
		limit := in.Limit
		if limit == 0 {
			limit = project.DefaultListLimit
		}
		summaries, err := svc.Projects.List(ctx, in.Offset, limit)
		if err != nil {
			return nil, ListProjectsOutput{}, MapError(err)
		}
		out := ListProjectsOutput{Projects: make([]ProjectSummaryOutput, 0, len(summaries))}
		for _, s := range summaries {
			out.Projects = append(out.Projects, ProjectSummaryOutput{ProjectName: s.Name, ProjectID: s.ID})
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project by id, including inactive projects and the change log.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, ProjectOutput, error) {
		proj, err := svc.Projects.Get(ctx, in.ProjectID)
		if err != nil {
			return nil, ProjectOutput{}, MapError(err)
		}
		return nil, toProjectOutput(proj), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Replace a project's fields. The previous values are appended to its change log.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateProjectParams) (*sdkmcp.CallToolResult, ProjectOutput, error) {
		proj, err := svc.Projects.Update(ctx, in.ProjectID, in.fields().config())
		if err != nil {
			return nil, ProjectOutput{}, MapError(err)
		}
		return nil, toProjectOutput(proj), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Mark a project inactive. The record is kept.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, DeleteProjectOutput, error) {
		if err := svc.Projects.Delete(ctx, in.ProjectID); err != nil {
			return nil, DeleteProjectOutput{}, MapError(err)
		}
		return nil, DeleteProjectOutput{ProjectID: in.ProjectID, ProjectStatus: string(project.StatusInactive)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "dashboard_page",
		Description: "Read one page of non-deleted tasks, newest first, with the live total.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DashboardPageParams) (*sdkmcp.CallToolResult, DashboardPageOutput, error) {
		page, limit := in.Page, in.Limit
		if page == 0 {
			page = feed.DefaultPage
		}
		if limit == 0 {
			limit = feed.DefaultLimit
		}
		if page < 1 || limit < 1 {
			return nil, DashboardPageOutput{}, MapError(fmt.Errorf("%w: page and limit must be positive", project.ErrInvalidInput))
		}

		result, err := svc.Dashboard.Page(ctx, page, limit)
		if err != nil {
			return nil, DashboardPageOutput{}, MapError(fmt.Errorf("%w: %v", project.ErrStoreUnavailable, err))
		}
		out := DashboardPageOutput{
			Tasks: make([]map[string]any, 0, len(result.Tasks)),
			Count: CountOutput{TotalCount: result.Count.TotalCount},
		}
		for _, row := range result.Tasks {
			out.Tasks = append(out.Tasks, row)
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "dashboard_aggregates",
		Description: "Count tasks by status and report the mean duration of non-deleted tasks.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ EmptyParams) (*sdkmcp.CallToolResult, AggregatesOutput, error) {
		agg, err := svc.Dashboard.Aggregates(ctx)
		if err != nil {
			return nil, AggregatesOutput{}, MapError(fmt.Errorf("%w: %v", project.ErrStoreUnavailable, err))
		}
		return nil, toAggregatesOutput(agg), nil
	})
}

func toProjectOutput(p *project.Project) ProjectOutput {
	out := ProjectOutput{
		ProjectID:           p.ID,
		ProjectName:         p.Name,
		SourceFolder:        p.SourceFolder,
		DestinationFolder:   p.DestinationFolder,
		PalateConfiguration: p.PalateConfiguration,
		BaseHeight:          p.BaseHeight,
		ProjectStatus:       string(p.Status),
		ChangeLog:           make([]ChangeLogOutput, 0, len(p.ChangeLog)),
		CreatedAt:           formatTime(p.CreatedAt),
		UpdatedAt:           formatTime(p.UpdatedAt),
	}
	for _, entry := range p.ChangeLog {
		out.ChangeLog = append(out.ChangeLog, ChangeLogOutput{
			ProjectName:         entry.Name,
			SourceFolder:        entry.SourceFolder,
			DestinationFolder:   entry.DestinationFolder,
			PalateConfiguration: entry.PalateConfiguration,
			BaseHeight:          entry.BaseHeight,
			UpdatedAt:           formatTime(entry.UpdatedAt),
		})
	}
	return out
}

func toAggregatesOutput(a *dashboard.Aggregates) AggregatesOutput {
	return AggregatesOutput{
		InProgressCount: a.InProgressCount,
		CompletedCount:  a.CompletedCount,
		TotalCount:      a.TotalCount,
		PendingCount:    a.PendingCount,
		FailedCount:     a.FailedCount,
		AverageDuration: a.AverageDuration,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
