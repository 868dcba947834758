package feed

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/goccy/go-json"
)

const (
	// DefaultTaskIdleInterval is how long a task session may stay silent
	// before its last request is replayed.
	DefaultTaskIdleInterval = 30 * time.Second

	DefaultPage  = 1
	DefaultLimit = 100

	requestCurrentPage = "current_page"
)

// TaskFeed serves paginated dashboard rows to task-feed sessions.
type TaskFeed struct {
	reader   dashboard.Reader
	registry *Registry
	idle     time.Duration
	logger   *slog.Logger
}

// NewTaskFeed creates a task feed. A non-positive idle uses the default.
func NewTaskFeed(reader dashboard.Reader, registry *Registry, idle time.Duration, logger *slog.Logger) *TaskFeed {
	if idle <= 0 {
		idle = DefaultTaskIdleInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TaskFeed{
		reader:   reader,
		registry: registry,
		idle:     idle,
		logger:   logger,
	}
}

// Registry returns the registry sessions are added to.
func (f *TaskFeed) Registry() *Registry {
	return f.registry
}

// Serve runs the session until the peer disconnects, sends a malformed
// frame, a send fails, or ctx ends. Each accepted request is answered on
// this session only. After idle of silence the last accepted request is
// answered again.
func (f *TaskFeed) Serve(ctx context.Context, s *Session) {
	if err := f.registry.Register(s); err != nil {
		s.logger.Info("session refused", "error", err)
		_ = s.Close()
		return
	}
	defer f.registry.Unregister(s)
	defer s.Close()

	s.logger.Info("session opened")
	defer s.logger.Info("session closed")

	frames := s.readFrames()
	timer := time.NewTimer(f.idle)
	defer timer.Stop()

	var last *dashboard.Request
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			return
		case data, ok := <-frames:
			if !ok {
				return
			}
			req, accepted, err := parseTaskRequest(data)
			if err != nil {
				s.logger.Warn("closing session on malformed frame", "error", err)
				return
			}
			if accepted {
				last = &req
				if err := f.respond(ctx, s, req); err != nil {
					return
				}
			}
			resetTimer(timer, f.idle)
		case <-timer.C:
			if last != nil {
				s.logger.Debug("replaying last request after inactivity", "page", last.Page, "limit", last.Limit)
				if err := f.respond(ctx, s, *last); err != nil {
					return
				}
			}
			timer.Reset(f.idle)
		}
	}
}

// respond reads the page and sends it. Store failures are logged and
// swallowed; only send failures are returned.
func (f *TaskFeed) respond(ctx context.Context, s *Session, req dashboard.Request) error {
	page, err := f.reader.Page(ctx, req.Page, req.Limit)
	if err != nil {
		storeErrorsTotal.WithLabelValues(FeedTasks).Inc()
		s.logger.Error("failed to read dashboard page", "page", req.Page, "limit", req.Limit, "error", err)
		return nil
	}
	if err := s.SendJSON(ctx, page); err != nil {
		s.logger.Info("send failed", "error", err)
		return err
	}
	return nil
}

// parseTaskRequest decodes one inbound frame. accepted is false for
// well-formed frames of an unknown type, which are ignored.
func parseTaskRequest(data []byte) (req dashboard.Request, accepted bool, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return req, false, fmt.Errorf("%w: frame is not a JSON object", ErrProtocol)
	}

	var typ string
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &typ); err != nil {
			return req, false, fmt.Errorf("%w: type must be a string", ErrProtocol)
		}
	}
	if typ != requestCurrentPage {
		return req, false, nil
	}

	req.Page, err = positiveInt(fields, "page", DefaultPage)
	if err != nil {
		return req, false, err
	}
	req.Limit, err = positiveInt(fields, "limit", DefaultLimit)
	if err != nil {
		return req, false, err
	}
	return req, true, nil
}

func positiveInt(fields map[string]json.RawMessage, key string, def int) (int, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return def, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrProtocol, key)
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrProtocol, key)
	}
	return int(f), nil
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
