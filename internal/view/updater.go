// Package view holds the latest HTML fragment for the host page and pushes it
// over the view channel whenever a client is connected.
package view

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/workspace/webview/internal/channel"
)

// Message is the envelope carried on the view channel.
type Message struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Updater reconciles "latest state wins" HTML pushes with a connection that
// can drop and reconnect. Update may be called from any goroutine.
type Updater struct {
	bind   *channel.Binding
	logger *slog.Logger

	mu    sync.Mutex
	html  string
	dirty bool
}

// NewUpdater creates an updater bound to the given channel.
func NewUpdater(bind *channel.Binding, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{bind: bind, logger: logger}
}

// Update sets the current HTML, marks it dirty and attempts an immediate
// push. With no client connected the push is a no-op and the content is
// flushed to the next connecting client instead. Fire-and-forget: delivery is
// best effort and two rapid updates may collapse into the second one.
func (u *Updater) Update(html string) {
	u.mu.Lock()
	u.html = html
	u.dirty = true
	u.mu.Unlock()
	u.push()
}

// HTML returns the most recently set HTML fragment.
func (u *Updater) HTML() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.html
}

// Dirty reports whether the current HTML has not yet reached a client.
func (u *Updater) Dirty() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.dirty
}

// push sends the current HTML if a client is connected, clearing the dirty
// flag on success.
func (u *Updater) push() {
	u.mu.Lock()
	html := u.html
	u.mu.Unlock()

	err := u.bind.SendJSON(Message{Type: "html", Data: html})
	switch err {
	case nil:
		u.mu.Lock()
		// Only clear if nothing newer was written while sending.
		if u.html == html {
			u.dirty = false
		}
		u.mu.Unlock()
		u.logger.Debug("view updated")
	case channel.ErrNoClient:
		u.logger.Debug("no client connected for view update")
	default:
		u.logger.Debug("view push failed", "error", err)
	}
}

// Run owns conn until it terminates. It registers the connection, flushes the
// current HTML if dirty, then drains inbound frames (the page sends nothing
// meaningful on this channel) until the connection closes or errors. The
// active-connection reference is cleared unconditionally on exit.
func (u *Updater) Run(conn *websocket.Conn) {
	gen := u.bind.Attach(conn)
	defer u.bind.Detach(gen)

	u.mu.Lock()
	dirty := u.dirty
	u.mu.Unlock()
	if dirty {
		u.push()
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
