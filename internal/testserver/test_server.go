// Package testserver starts the full HTTP surface over an in-memory store
// for end-to-end tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/dynaflex/basing/internal/feed"
	"github.com/dynaflex/basing/internal/mcp"
	"github.com/dynaflex/basing/internal/store"
	"github.com/dynaflex/basing/internal/transport"
)

// Options tunes feed cadences. Zero values fall back to short test intervals.
type Options struct {
	TaskIdleInterval  time.Duration
	DashboardInterval time.Duration
}

type TestServer struct {
	Server    *httptest.Server
	DB        *store.DB
	Tasks     *store.TaskRepository
	TaskFeed  *feed.TaskFeed
	Dashboard *feed.DashboardFeed
}

func New(t *testing.T, opts Options) *TestServer {
	t.Helper()

	if opts.TaskIdleInterval == 0 {
		opts.TaskIdleInterval = 200 * time.Millisecond
	}
	if opts.DashboardInterval == 0 {
		opts.DashboardInterval = 200 * time.Millisecond
	}

	db := store.NewTestDB(t)

	projectSvc := project.NewService(store.NewProjectRepository(db), nil)
	dashboardRepo := store.NewDashboardRepository(db)

	taskFeed := feed.NewTaskFeed(dashboardRepo, feed.NewRegistry(feed.FeedTasks, nil), opts.TaskIdleInterval, nil)
	dashFeed := feed.NewDashboardFeed(dashboardRepo, feed.NewRegistry(feed.FeedDashboard, nil), opts.DashboardInterval, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:  projectSvc,
			Dashboard: dashboardRepo,
		},
		Version: "test",
	})

	server := httptest.NewServer(transport.NewServer(transport.Options{
		Projects: projectSvc,
		Store:    db,
		Feeds:    feed.NewHandler(taskFeed, dashFeed, nil),
		MCP:      mcp.NewHTTPHandler(mcpServer),
	}))

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Tasks:     store.NewTaskRepository(db),
		TaskFeed:  taskFeed,
		Dashboard: dashFeed,
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		taskFeed.Registry().CloseAll(ctx)
		dashFeed.Registry().CloseAll(ctx)
		server.Close()
	})

	return ts
}

// WebsocketURL returns the ws:// address of path on the test server.
func (ts *TestServer) WebsocketURL(path string) string {
	return "ws" + ts.Server.URL[len("http"):] + path
}
