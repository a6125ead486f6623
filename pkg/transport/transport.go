// Package transport pushes error envelopes to connected clients over
// WebSocket. A server Stream serializes errors through the registry in
// pkg/serialize; the client side reconstructs the typed error so the
// receiving boundary can dispatch on its kind name.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bulwark-go/bulwark/pkg/serialize"
)

// Config controls stream timeouts and upgrade policy.
type Config struct {
	// ReadTimeout is the per-message read deadline (default: 60s).
	ReadTimeout time.Duration

	// WriteTimeout is the per-message write deadline (default: 10s).
	WriteTimeout time.Duration

	// HeartbeatInterval is how often pings are sent (default: 30s).
	HeartbeatInterval time.Duration

	// CheckOrigin validates upgrade requests. Nil rejects cross-origin
	// requests, matching the gorilla default.
	CheckOrigin func(r *http.Request) bool

	// Registry is the serializer registry to use. Nil means the
	// package default registry.
	Registry *serialize.Registry

	// Logger for stream errors. Nil means slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.Registry == nil {
		c.Registry = serialize.Default()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Stream is a WebSocket connection carrying error envelopes.
// Safe for concurrent SendError calls.
type Stream struct {
	conn   *websocket.Conn
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	closed atomic.Bool
	done   chan struct{}
}

func newStream(conn *websocket.Conn, config Config) *Stream {
	s := &Stream{
		conn:   conn,
		config: config,
		logger: config.Logger,
		done:   make(chan struct{}),
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(config.ReadTimeout))
	})
	return s
}

// Upgrade upgrades an HTTP request to an error stream.
func Upgrade(w http.ResponseWriter, r *http.Request, config Config) (*Stream, error) {
	config = config.withDefaults()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     config.CheckOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newStream(conn, config), nil
}

// Dial connects a client to an error stream endpoint.
// The URL scheme must be ws or wss.
func Dial(ctx context.Context, url string, config Config) (*Stream, error) {
	config = config.withDefaults()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newStream(conn, config), nil
}

// SendError serializes err through the registry and writes it as a
// text frame. Non-allow-listed error data never reaches the wire.
func (s *Stream) SendError(err error) error {
	data, merr := s.config.Registry.Marshal(err)
	if merr != nil {
		return merr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return websocket.ErrCloseSent
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if werr := s.conn.WriteMessage(websocket.TextMessage, data); werr != nil {
		s.logger.Error("error stream write failed", "error", werr)
		s.closeInternal()
		return werr
	}
	return nil
}

// ReadError blocks until the next error envelope arrives and
// reconstructs the typed error through the registry. Unknown kinds
// degrade to the generic kind; the second return reports transport
// or decode failures.
func (s *Stream) ReadError() (error, error) {
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err,
			websocket.CloseGoingAway,
			websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			s.logger.Error("error stream read failed", "error", err)
		}
		return nil, err
	}
	return s.config.Registry.Unmarshal(msg)
}

// HeartbeatLoop sends periodic pings until the stream closes.
// Run it in its own goroutine on long-lived server streams.
func (s *Stream) HeartbeatLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Stream) sendPing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return websocket.ErrCloseSent
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close sends a close frame and tears down the connection.
// Safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeInternal()
}

// closeInternal must be called with mu held.
func (s *Stream) closeInternal() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
