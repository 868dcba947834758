package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// ShutdownNotice is broadcast to every session when the process stops.
type ShutdownNotice struct {
	Type string `json:"type"`
}

// Registry tracks the live sessions of one feed.
type Registry struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	peers  map[Peer]struct{}
	closed bool
	active sync.WaitGroup
}

// NewRegistry creates an empty registry. name labels metrics and logs.
func NewRegistry(name string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		name:   name,
		logger: logger.With("feed", name),
		peers:  make(map[Peer]struct{}),
	}
}

// Register adds p. Registering a peer twice is a no-op.
func (r *Registry) Register(p Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	if _, ok := r.peers[p]; ok {
		return nil
	}
	r.peers[p] = struct{}{}
	r.active.Add(1)
	sessionsGauge.WithLabelValues(r.name).Inc()
	return nil
}

// Unregister removes p. Unknown peers are ignored.
func (r *Registry) Unregister(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[p]; !ok {
		return
	}
	delete(r.peers, p)
	r.active.Done()
	sessionsGauge.WithLabelValues(r.name).Dec()
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

func (r *Registry) snapshot() []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	peers := make([]Peer, 0, len(r.peers))
	for p := range r.peers {
		peers = append(peers, p)
	}
	return peers
}

// Broadcast sends payload to every peer registered at call time and returns
// once each delivery has succeeded or failed. It returns the number of
// successful sends. Failed peers stay registered; their own loops remove
// them.
func (r *Registry) Broadcast(ctx context.Context, payload []byte) int {
	var (
		g    errgroup.Group
		sent atomic.Int64
	)
	for _, p := range r.snapshot() {
		g.Go(func() error {
			if err := p.Send(ctx, payload); err != nil {
				r.logger.Debug("broadcast delivery failed", "error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(sent.Load())
}

// CloseAll refuses further registrations, tells every peer the server is
// going away, and closes them.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	notice, _ := json.Marshal(ShutdownNotice{Type: "server_shutdown"})
	sent := r.Broadcast(ctx, notice)

	var g errgroup.Group
	for _, p := range r.snapshot() {
		g.Go(func() error {
			_ = p.Close()
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Info("feed closed", "notified", sent)
}

// Wait blocks until every registered peer has unregistered or ctx ends.
func (r *Registry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
