package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// handleIndex serves the host page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.page)
}

// handleHealth reports liveness and per-channel connection state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"title":        s.config.Title,
		"pendingClips": s.playback.PendingCount(),
		"recording":    s.record.Recording(),
	})
}

// channelHandler upgrades the request and hands the connection to run, which
// owns it for its lifetime. Disconnects surface here only as run returning.
func (s *Server) channelHandler(name string, run func(*websocket.Conn)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upgrader := s.createUpgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", "channel", name, "error", err)
			return
		}
		defer conn.Close()
		run(conn)
		s.logger.Debug("channel connection finished", "channel", name)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
