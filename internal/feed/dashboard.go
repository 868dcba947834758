package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
)

// DefaultDashboardInterval is the pause between aggregate snapshots.
const DefaultDashboardInterval = 30 * time.Second

// DashboardFeed pushes aggregate counts on a fixed cadence.
type DashboardFeed struct {
	reader   dashboard.Reader
	registry *Registry
	interval time.Duration
	logger   *slog.Logger
}

// NewDashboardFeed creates a dashboard feed. A non-positive interval uses
// the default.
func NewDashboardFeed(reader dashboard.Reader, registry *Registry, interval time.Duration, logger *slog.Logger) *DashboardFeed {
	if interval <= 0 {
		interval = DefaultDashboardInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DashboardFeed{
		reader:   reader,
		registry: registry,
		interval: interval,
		logger:   logger,
	}
}

// Registry returns the registry sessions are added to.
func (f *DashboardFeed) Registry() *Registry {
	return f.registry
}

// Serve sends a snapshot immediately and then one per interval, each
// interval measured from the end of the previous send. Inbound frames are
// read and dropped.
func (f *DashboardFeed) Serve(ctx context.Context, s *Session) {
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
	if err := f.emit(ctx, s); err != nil {
		return
	}

	timer := time.NewTimer(f.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			return
		case _, ok := <-frames:
			if !ok {
				return
			}
		case <-timer.C:
			if err := f.emit(ctx, s); err != nil {
				return
			}
			timer.Reset(f.interval)
		}
	}
}

func (f *DashboardFeed) emit(ctx context.Context, s *Session) error {
	agg, err := f.reader.Aggregates(ctx)
	if err != nil {
		storeErrorsTotal.WithLabelValues(FeedDashboard).Inc()
		s.logger.Error("failed to read dashboard aggregates", "error", err)
		return nil
	}
	if err := s.SendJSON(ctx, agg); err != nil {
		s.logger.Info("send failed", "error", err)
		return err
	}
	return nil
}
