// Package playback implements the audio playback session: a FIFO queue of
// pending clips drained onto the playback channel, with per-clip completion
// tracking so callers can wait for playback to finish.
package playback

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/workspace/webview/internal/channel"
)

// Message is the envelope carried on the playback channel in both directions.
// Server -> client: {"type":"audio","id":...,"data":...,"delay":...}.
// Client -> server: {"type":"playback_complete","id":...}.
type Message struct {
	Type  string  `json:"type"`
	ID    string  `json:"id,omitempty"`
	Data  string  `json:"data,omitempty"`
	Delay float64 `json:"delay,omitempty"`
}

type clip struct {
	id    string
	data  string
	delay time.Duration
}

// pendingClip tracks one submitted clip until its completion ack arrives.
// done is closed when the clip is acknowledged, force-completed on
// disconnect, or cancelled by ClearQueue.
type pendingClip struct {
	done chan struct{}
	sent bool
	gen  uint64
}

// Session is the playback session. Play and ClearQueue may be called from any
// goroutine; the connection handler calls Run.
type Session struct {
	bind   *channel.Binding
	logger *slog.Logger

	mu      sync.Mutex
	queue   []clip
	pending map[string]*pendingClip
	emptyCh chan struct{} // non-nil while waiters are blocked on an empty pending set

	// sendMu makes dequeue-and-transmit atomic so clips always hit the wire
	// in FIFO submission order, even across a connection handover.
	sendMu sync.Mutex
	wake   chan struct{}
}

// NewSession creates a playback session bound to the given channel.
func NewSession(bind *channel.Binding, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		bind:    bind,
		logger:  logger,
		pending: make(map[string]*pendingClip),
		wake:    make(chan struct{}, 1),
	}
}

// Play enqueues a clip for playback and returns its identifier immediately;
// it does not wait for the clip to be transmitted or played. data is the
// string-encoded audio payload (typically a base64 WAV data URI); delay is
// honored by the browser before starting playback.
func (s *Session) Play(data string, delay time.Duration) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.queue = append(s.queue, clip{id: id, data: data, delay: delay})
	s.pending[id] = &pendingClip{done: make(chan struct{})}
	s.mu.Unlock()

	s.poke()
	s.logger.Debug("clip queued", "id", id, "delay", delay)
	return id
}

// PlayAndWait enqueues a clip like Play and then blocks until the browser
// acknowledges it as played, the clip is cancelled, or ctx is done.
func (s *Session) PlayAndWait(ctx context.Context, data string, delay time.Duration) (string, error) {
	id := s.Play(data, delay)

	s.mu.Lock()
	p := s.pending[id]
	s.mu.Unlock()
	if p == nil {
		return id, nil
	}
	select {
	case <-p.done:
		return id, nil
	case <-ctx.Done():
		return id, ctx.Err()
	}
}

// Wait blocks until every queued or transmitted clip has been acknowledged
// (or cancelled), or until ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	if s.emptyCh == nil {
		s.emptyCh = make(chan struct{})
	}
	ch := s.emptyCh
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PendingCount returns the number of clips not yet acknowledged.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ClearQueue drops every clip that has not been transmitted yet, empties the
// pending set and releases all waiters. Playback the browser has already
// started is not interrupted; its eventual completion ack becomes a no-op.
func (s *Session) ClearQueue() {
	s.mu.Lock()
	s.queue = nil
	for id, p := range s.pending {
		close(p.done)
		delete(s.pending, id)
	}
	s.signalEmptyLocked()
	s.mu.Unlock()
	s.logger.Debug("playback queue cleared")
}

// ack removes id from the pending set. A second ack for the same id is a
// benign no-op.
func (s *Session) ack(id string) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if ok {
		close(p.done)
		delete(s.pending, id)
		if len(s.pending) == 0 {
			s.signalEmptyLocked()
		}
	}
	s.mu.Unlock()

	if ok {
		s.logger.Debug("clip acknowledged", "id", id)
	} else {
		s.logger.Debug("duplicate or unknown playback ack", "id", id)
	}
}

// signalEmptyLocked releases waiters blocked in Wait. Caller holds s.mu.
func (s *Session) signalEmptyLocked() {
	if s.emptyCh != nil {
		close(s.emptyCh)
		s.emptyCh = nil
	}
}

func (s *Session) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run owns conn until it terminates: it registers the connection, starts the
// drain loop, and consumes completion acks. Malformed inbound frames are
// treated as protocol errors and tear the connection down. On exit the
// active-connection reference is cleared and clips transmitted on this
// connection but never acknowledged are force-completed so waiters are not
// stranded; clips still queued remain queued for the next connection.
func (s *Session) Run(conn *websocket.Conn) {
	gen := s.bind.Attach(conn)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.drain(gen, stop)
	}()
	// Flush any backlog queued while disconnected.
	s.poke()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("malformed playback message, closing connection", "error", err)
			break
		}
		if msg.Type == "playback_complete" {
			s.ack(msg.ID)
		}
	}

	_ = conn.Close()
	close(stop)
	wg.Wait()
	s.bind.Detach(gen)
	s.failInFlight(gen)
}

// drain transmits queued clips in FIFO order until stopped.
func (s *Session) drain(gen uint64, stop <-chan struct{}) {
	for {
		for s.sendOne(gen) {
		}
		select {
		case <-stop:
			return
		case <-s.wake:
		}
	}
}

// sendOne dequeues and transmits the head of the queue. Returns false when
// the queue is empty or the connection is gone.
func (s *Session) sendOne(gen uint64) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	c := s.queue[0]
	s.queue = s.queue[1:]
	if p := s.pending[c.id]; p != nil {
		p.sent = true
		p.gen = gen
	}
	s.mu.Unlock()

	msg := Message{Type: "audio", ID: c.id, Data: c.data, Delay: c.delay.Seconds()}
	if err := s.bind.SendJSON(msg); err != nil {
		// Connection gone mid-send. The clip was marked sent and will be
		// force-completed during this connection's teardown.
		s.logger.Debug("clip transmit failed", "id", c.id, "error", err)
		return false
	}
	s.logger.Debug("clip transmitted", "id", c.id)
	return true
}

// failInFlight force-completes clips that were transmitted on the given
// connection generation but never acknowledged. The browser that received
// them is gone, so their acks will never arrive.
func (s *Session) failInFlight(gen uint64) {
	s.mu.Lock()
	failed := 0
	for id, p := range s.pending {
		if p.sent && p.gen == gen {
			close(p.done)
			delete(s.pending, id)
			failed++
		}
	}
	if failed > 0 && len(s.pending) == 0 {
		s.signalEmptyLocked()
	}
	s.mu.Unlock()

	if failed > 0 {
		s.logger.Debug("force-completed unacknowledged clips after disconnect", "count", failed)
	}
}
