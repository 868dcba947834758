package functional_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/dynaflex/basing/internal/testserver"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Response string          `json:"Response"`
	Data     json.RawMessage `json:"Data"`
}

type projectBody struct {
	ProjectID     string `json:"project_id"`
	ProjectName   string `json:"project_name"`
	ProjectStatus string `json:"project_status"`
	ChangeLog     []struct {
		ProjectName string `json:"project_name"`
	} `json:"change_log"`
}

func do(t *testing.T, ts *testserver.TestServer, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func projectPayload(name string) map[string]any {
	return map[string]any{
		"project_name":         name,
		"source_folder":        "/s",
		"destination_folder":   "/d",
		"base_height":          1.5,
		"palate_configuration": "P",
	}
}

func createProject(t *testing.T, ts *testserver.TestServer, name string) projectBody {
	t.Helper()
	status, env := do(t, ts, http.MethodPost, "/project", projectPayload(name))
	require.Equal(t, http.StatusCreated, status, env.Response)
	var proj projectBody
	require.NoError(t, json.Unmarshal(env.Data, &proj))
	return proj
}

func TestFunctional_CreateThenRead(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})

	proj := createProject(t, ts, "A")
	_, err := uuid.Parse(proj.ProjectID)
	require.NoError(t, err)

	status, env := do(t, ts, http.MethodGet, "/project?offset=0&limit=10", nil)
	require.Equal(t, http.StatusOK, status)
	var list []projectBody
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	require.Equal(t, proj.ProjectID, list[0].ProjectID)
	require.Equal(t, "A", list[0].ProjectName)

	status, _ = do(t, ts, http.MethodPost, "/project", projectPayload("A"))
	require.Equal(t, http.StatusConflict, status)
}

func TestFunctional_UpdateAppendsChangeLog(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})
	proj := createProject(t, ts, "A")

	status, _ := do(t, ts, http.MethodPut, "/project/"+proj.ProjectID, projectPayload("A2"))
	require.Equal(t, http.StatusOK, status)

	status, env := do(t, ts, http.MethodGet, "/project/"+proj.ProjectID, nil)
	require.Equal(t, http.StatusOK, status)
	var got projectBody
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, "A2", got.ProjectName)
	require.Len(t, got.ChangeLog, 1)
	require.Equal(t, "A", got.ChangeLog[0].ProjectName)
}

func TestFunctional_SoftDelete(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})
	proj := createProject(t, ts, "A")

	status, _ := do(t, ts, http.MethodDelete, "/project/"+proj.ProjectID, nil)
	require.Equal(t, http.StatusOK, status)

	_, env := do(t, ts, http.MethodGet, "/project?offset=0&limit=10", nil)
	var list []projectBody
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Empty(t, list)

	status, env = do(t, ts, http.MethodGet, "/project/"+proj.ProjectID, nil)
	require.Equal(t, http.StatusOK, status)
	var got projectBody
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, "Inactive", got.ProjectStatus)

	status, _ = do(t, ts, http.MethodDelete, "/project/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, status)
}

type pageFrame struct {
	Tasks []map[string]any `json:"tasks"`
	Count struct {
		TotalCount int64 `json:"total_count"`
	} `json:"count"`
}

func readFrame(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestFunctional_TaskFeedReplaysAfterSilence(t *testing.T) {
	ts := testserver.New(t, testserver.Options{TaskIdleInterval: 300 * time.Millisecond})
	ctx := context.Background()
	proj := createProject(t, ts, "P")

	base := time.Now().UTC().Add(-time.Hour)
	first := &dashboard.Task{
		ID:              uuid.NewString(),
		FileName:        "old.stl",
		ProjectID:       proj.ProjectID,
		Status:          dashboard.StatusCompleted,
		PreprocessPath:  "/pre/old.stl",
		DestinationPath: "/dst/old.stl",
		CreatedAt:       base,
	}
	require.NoError(t, ts.Tasks.InsertTask(ctx, first))

	conn, _, err := websocket.DefaultDialer.Dial(ts.WebsocketURL("/tasks/client-1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"current_page","page":1,"limit":100}`)))
	var page pageFrame
	readFrame(t, conn, &page)
	require.Len(t, page.Tasks, 1)
	require.Equal(t, first.ID, page.Tasks[0]["task_id"])

	fresh := &dashboard.Task{
		ID:              uuid.NewString(),
		FileName:        "new.stl",
		ProjectID:       proj.ProjectID,
		Status:          dashboard.StatusPending,
		PreprocessPath:  "/pre/new.stl",
		DestinationPath: "/dst/new.stl",
		CreatedAt:       base.Add(time.Minute),
	}
	require.NoError(t, ts.Tasks.InsertTask(ctx, fresh))

	readFrame(t, conn, &page)
	require.Equal(t, int64(2), page.Count.TotalCount)
	require.Equal(t, fresh.ID, page.Tasks[0]["task_id"])
	require.Equal(t, "P", page.Tasks[0]["project_name"])
}

func TestFunctional_DashboardFeed(t *testing.T) {
	ts := testserver.New(t, testserver.Options{DashboardInterval: 200 * time.Millisecond})

	conn, _, err := websocket.DefaultDialer.Dial(ts.WebsocketURL("/dashboard/client-1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	for range 2 {
		var snapshot map[string]any
		readFrame(t, conn, &snapshot)
		for _, key := range []string{"in_progress_count", "completed_count", "total_count", "pending_count", "failed_count"} {
			require.Contains(t, snapshot, key)
		}
	}
}

func TestFunctional_MCPOverHTTP(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.Server.URL + "/mcp"}, nil)
	require.NoError(t, err)
	defer session.Close()

	require.Equal(t, "basing", session.InitializeResult().ServerInfo.Name)

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "create_project",
		Arguments: projectPayload("Over MCP"),
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	status, env := do(t, ts, http.MethodGet, "/project", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), "Over MCP")
}
