package mcp_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/dynaflex/basing/internal/mcp"
	"github.com/dynaflex/basing/internal/store"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type harness struct {
	session *sdkmcp.ClientSession
	db      *store.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	db := store.NewTestDB(t)
	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:  project.NewService(store.NewProjectRepository(db), nil),
			Dashboard: store.NewDashboardRepository(db),
		},
		Version: "test",
	})

	ct, st := sdkmcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return &harness{session: session, db: db}
}

func (h *harness) call(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := h.session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func decode[T any](t *testing.T, res *sdkmcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var out T
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func projectArgs(name string) map[string]any {
	return map[string]any{
		"project_name":         name,
		"source_folder":        "/src/" + name,
		"destination_folder":   "/dst/" + name,
		"palate_configuration": "P",
		"base_height":          1.5,
	}
}

func TestServer_ListsTools(t *testing.T) {
	h := newHarness(t)

	res, err := h.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"create_project", "list_projects", "get_project", "update_project",
		"delete_project", "dashboard_page", "dashboard_aggregates",
	}, names)
}

func TestServer_ProjectLifecycle(t *testing.T) {
	h := newHarness(t)

	created := decode[mcp.ProjectOutput](t, h.call(t, "create_project", projectArgs("A")))
	require.Equal(t, "A", created.ProjectName)
	require.Equal(t, "Active", created.ProjectStatus)
	require.Empty(t, created.ChangeLog)
	_, err := uuid.Parse(created.ProjectID)
	require.NoError(t, err)

	got := decode[mcp.ProjectOutput](t, h.call(t, "get_project", map[string]any{"project_id": created.ProjectID}))
	require.Equal(t, created.ProjectID, got.ProjectID)

	list := decode[mcp.ListProjectsOutput](t, h.call(t, "list_projects", nil))
	require.Equal(t, []mcp.ProjectSummaryOutput{{ProjectName: "A", ProjectID: created.ProjectID}}, list.Projects)

	upd := projectArgs("B")
	upd["project_id"] = created.ProjectID
	updated := decode[mcp.ProjectOutput](t, h.call(t, "update_project", upd))
	require.Equal(t, "B", updated.ProjectName)
	require.Len(t, updated.ChangeLog, 1)
	require.Equal(t, "A", updated.ChangeLog[0].ProjectName)
	require.Equal(t, created.UpdatedAt, updated.ChangeLog[0].UpdatedAt)

	deleted := decode[mcp.DeleteProjectOutput](t, h.call(t, "delete_project", map[string]any{"project_id": created.ProjectID}))
	require.Equal(t, "Inactive", deleted.ProjectStatus)

	list = decode[mcp.ListProjectsOutput](t, h.call(t, "list_projects", nil))
	require.Empty(t, list.Projects)

	got = decode[mcp.ProjectOutput](t, h.call(t, "get_project", map[string]any{"project_id": created.ProjectID}))
	require.Equal(t, "Inactive", got.ProjectStatus)
}

func TestServer_ToolErrors(t *testing.T) {
	h := newHarness(t)

	res := h.call(t, "create_project", map[string]any{
		"project_name":         " ",
		"source_folder":        "/s",
		"destination_folder":   "/d",
		"palate_configuration": "P",
		"base_height":          1,
	})
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "INVALID_INPUT")

	decode[mcp.ProjectOutput](t, h.call(t, "create_project", projectArgs("A")))
	res = h.call(t, "create_project", projectArgs("A"))
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "CONFLICT")

	res = h.call(t, "get_project", map[string]any{"project_id": uuid.NewString()})
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "NOT_FOUND")

	res = h.call(t, "get_project", map[string]any{"project_id": "nope"})
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "INVALID_INPUT")

	res = h.call(t, "dashboard_page", map[string]any{"page": -1})
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "INVALID_INPUT")
}

func TestServer_DashboardTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created := decode[mcp.ProjectOutput](t, h.call(t, "create_project", projectArgs("P")))
	tasks := store.NewTaskRepository(h.db)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	durations := []float64{5, 10}
	for i, status := range []dashboard.TaskStatus{dashboard.StatusCompleted, dashboard.StatusFailed} {
		d := durations[i]
		require.NoError(t, tasks.InsertTask(ctx, &dashboard.Task{
			ID:              uuid.NewString(),
			FileName:        "f" + strings.Repeat("x", i),
			ProjectID:       created.ProjectID,
			Status:          status,
			PreprocessPath:  "/pre",
			DestinationPath: "/dst",
			Duration:        &d,
			CreatedAt:       base.Add(time.Duration(i) * time.Second),
		}))
	}

	page := decode[mcp.DashboardPageOutput](t, h.call(t, "dashboard_page", nil))
	require.Equal(t, int64(2), page.Count.TotalCount)
	require.Len(t, page.Tasks, 2)
	require.Equal(t, "fx", page.Tasks[0]["file_name"])
	require.Equal(t, "10.000", page.Tasks[0]["task_duration"])

	empty := decode[mcp.DashboardPageOutput](t, h.call(t, "dashboard_page", map[string]any{"page": 2, "limit": 100}))
	require.Empty(t, empty.Tasks)
	require.Equal(t, int64(2), empty.Count.TotalCount)

	agg := decode[mcp.AggregatesOutput](t, h.call(t, "dashboard_aggregates", nil))
	require.Equal(t, int64(2), agg.TotalCount)
	require.Equal(t, int64(1), agg.CompletedCount)
	require.Equal(t, int64(1), agg.FailedCount)
	require.NotNil(t, agg.AverageDuration)
	require.Equal(t, "7.500", *agg.AverageDuration)
}

func TestServer_AggregatesWithoutDurations(t *testing.T) {
	h := newHarness(t)

	agg := decode[mcp.AggregatesOutput](t, h.call(t, "dashboard_aggregates", nil))
	require.Zero(t, agg.TotalCount)
	require.Nil(t, agg.AverageDuration)
}

func TestServer_ReadsDocs(t *testing.T) {
	h := newHarness(t)

	res, err := h.session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "basing://docs/projects"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "change_log")
}
