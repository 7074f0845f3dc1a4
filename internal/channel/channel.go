// Package channel manages the single active WebSocket connection behind each
// logical channel (view update, audio playback, audio recording).
package channel

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrNoClient is returned by send operations when no browser page is
// currently attached to the channel.
var ErrNoClient = errors.New("no client connected")

// Binding holds at most one live connection for one logical channel.
// A newly attached connection supersedes the previous one; the generation
// counter ensures a superseded connection's teardown never clears the
// reference of its successor.
type Binding struct {
	name   string
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	gen  uint64
}

// New creates an empty binding for the named channel.
func New(name string, logger *slog.Logger) *Binding {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binding{name: name, logger: logger}
}

// Name returns the channel name the binding was created with.
func (b *Binding) Name() string { return b.name }

// Attach registers conn as the active connection and returns its generation.
// Any previously attached connection is closed and superseded.
func (b *Binding) Attach(conn *websocket.Conn) uint64 {
	b.mu.Lock()
	prev := b.conn
	b.conn = conn
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	if prev != nil {
		// The old connect loop is still draining; closing the socket
		// makes its read fail so it can exit through its own cleanup.
		_ = prev.Close()
		b.logger.Debug("channel connection superseded", "channel", b.name, "generation", gen)
	}
	b.logger.Debug("channel client connected", "channel", b.name, "generation", gen)
	return gen
}

// Detach clears the active connection, but only if gen still identifies it.
// Safe to call unconditionally from a connect loop's deferred cleanup.
func (b *Binding) Detach(gen uint64) {
	b.mu.Lock()
	if b.gen == gen && b.conn != nil {
		b.conn = nil
		b.mu.Unlock()
		b.logger.Debug("channel client disconnected", "channel", b.name, "generation", gen)
		return
	}
	b.mu.Unlock()
}

// Connected reports whether a client is currently attached.
func (b *Binding) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// SendJSON marshals v and writes it as a single text frame to the active
// connection. Returns ErrNoClient when nothing is attached. The write happens
// under the binding's lock; gorilla/websocket supports only one concurrent
// writer per connection.
func (b *Binding) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return ErrNoClient
	}
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the active connection if one is attached. The owning connect
// loop observes the closed socket and runs its normal cleanup path.
func (b *Binding) Close() {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}
