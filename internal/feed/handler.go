package feed

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests into feed sessions.
type Handler struct {
	tasks     *TaskFeed
	dashboard *DashboardFeed
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewHandler creates a websocket handler for both feeds.
func NewHandler(tasks *TaskFeed, dash *DashboardFeed, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		tasks:     tasks,
		dashboard: dash,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Routes mounts /tasks/{client_id} and /dashboard/{client_id}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/tasks/{client_id}", h.ServeTasks)
	r.Get("/dashboard/{client_id}", h.ServeDashboard)
}

// ServeTasks accepts a task-feed connection.
func (h *Handler) ServeTasks(w http.ResponseWriter, r *http.Request) {
	s := h.accept(w, r, FeedTasks)
	if s == nil {
		return
	}
	h.tasks.Serve(r.Context(), s)
}

// ServeDashboard accepts a dashboard-feed connection.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	s := h.accept(w, r, FeedDashboard)
	if s == nil {
		return
	}
	h.dashboard.Serve(r.Context(), s)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request, feed string) *Session {
	clientID := chi.URLParam(r, "client_id")
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.logger.Warn("websocket upgrade failed", "feed", feed, "client_id", clientID, "error", err)
		return nil
	}
	return NewSession(conn, feed, clientID, h.logger)
}
