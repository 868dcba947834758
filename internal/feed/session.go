package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

var sessionIDCounter atomic.Uint64

// Peer is anything the registry can deliver to.
type Peer interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// Session is one accepted websocket connection. Writes are serialised so
// that frames from the session loop and from a broadcast never interleave.
type Session struct {
	id       uint64
	feed     string
	clientID string
	conn     *websocket.Conn
	logger   *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// NewSession wraps an upgraded connection.
func NewSession(conn *websocket.Conn, feed, clientID string, logger *slog.Logger) *Session {
	id := sessionIDCounter.Add(1)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		id:       id,
		feed:     feed,
		clientID: clientID,
		conn:     conn,
		logger: logger.With(
			"feed", feed,
			"client_id", clientID,
			"session_id", id,
			"remote", conn.RemoteAddr().String(),
		),
		closed: make(chan struct{}),
	}
}

// ID returns the process-unique session number.
func (s *Session) ID() uint64 {
	return s.id
}

// ClientID returns the identifier taken from the connection path.
func (s *Session) ClientID() string {
	return s.clientID
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// Send writes one text frame.
func (s *Session) Send(ctx context.Context, payload []byte) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	}

	framesSentTotal.WithLabelValues(s.feed).Inc()
	return nil
}

// SendJSON encodes v and sends it as one frame.
func (s *Session) SendJSON(ctx context.Context, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return s.Send(ctx, payload)
}

// Close sends a close frame and releases the socket. Safe to call more than
// once and concurrently with Send.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = s.conn.Close()
	})
	return err
}

// readFrames starts the reader goroutine. The returned channel yields every
// data frame and is closed when the peer disconnects or the session closes.
// Reads are never given a deadline: a gorilla connection cannot be read
// again after one fires.
func (s *Session) readFrames() <-chan []byte {
	frames := make(chan []byte)
	s.conn.SetReadLimit(maxMessageSize)

	go func() {
		defer close(frames)
		for {
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					s.logger.Debug("websocket read ended", "error", err)
				}
				return
			}
			select {
			case frames <- data:
			case <-s.closed:
				return
			}
		}
	}()

	return frames
}
