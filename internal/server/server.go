// Package server provides the HTTP server that hosts the webview page and
// its WebSocket channel endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/workspace/webview/internal/config"
	"github.com/workspace/webview/internal/playback"
	"github.com/workspace/webview/internal/record"
	"github.com/workspace/webview/internal/view"
)

// WebSocket endpoint paths, one per logical channel.
const (
	ViewEndpoint     = "/ws-view"
	PlaybackEndpoint = "/ws-audio-player"
	RecordEndpoint   = "/ws-audio-recorder"
)

// Server hosts the page and hands accepted channel connections to the
// matching session.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	httpServer *http.Server

	view     *view.Updater
	playback *playback.Session
	record   *record.Session

	page []byte
}

// New creates a server wiring the three sessions to their endpoints.
func New(cfg *config.Config, logger *slog.Logger, v *view.Updater, p *playback.Session, r *record.Session) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:   cfg,
		logger:   logger,
		view:     v,
		playback: p,
		record:   r,
	}

	page, err := renderPage(cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("render host page: %w", err)
	}
	s.page = page

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	// WriteTimeout is intentionally left at zero: the channel connections
	// are long-lived WebSockets, and a write deadline set on the underlying
	// net.Conn before the handler runs would kill them.
	s.httpServer = &http.Server{
		Handler:     mux,
		ReadTimeout: cfg.HTTPReadTimeout,
		IdleTimeout: cfg.HTTPIdleTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET "+ViewEndpoint, s.channelHandler("view", s.view.Run))
	mux.HandleFunc("GET "+PlaybackEndpoint, s.channelHandler("playback", s.playback.Run))
	mux.HandleFunc("GET "+RecordEndpoint, s.channelHandler("recording", s.record.Run))
}

// Start binds the configured address and serves until Stop is called.
// It blocks; run it in a goroutine and use the returned listener address via
// Addr after WaitReady.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr(), err)
	}
	s.logger.Info("webview server listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// createUpgrader creates a WebSocket upgrader with origin validation.
// WebSocket upgrades bypass CORS, so origins must be validated explicitly:
// the page is served from this server, so only same-host origins (and
// non-browser clients without an Origin header) are accepted.
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  s.config.WSReadBufferSize,
		WriteBufferSize: s.config.WSWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return s.isOriginAllowed(origin, r.Host)
		},
	}
}

// isOriginAllowed accepts origins whose host matches the request host or the
// configured bind host, treating the loopback spellings as equivalent.
func (s *Server) isOriginAllowed(origin, requestHost string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if hostsEqual(u.Host, requestHost) || hostsEqual(u.Host, s.config.Addr()) {
		return true
	}
	s.logger.Warn("websocket origin rejected", "origin", origin)
	return false
}

func hostsEqual(a, b string) bool {
	return canonicalHost(a) == canonicalHost(b)
}

func canonicalHost(hostport string) string {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	if host == "localhost" || host == "::1" {
		host = "127.0.0.1"
	}
	return host + portOf(hostport)
}

func portOf(hostport string) string {
	if _, p, err := net.SplitHostPort(hostport); err == nil {
		return ":" + p
	}
	return ""
}
