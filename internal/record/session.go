// Package record implements the audio recording session: it toggles the
// browser-side recorder with command envelopes and forwards decoded PCM to a
// caller-supplied sink.
package record

import (
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"math"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/workspace/webview/internal/channel"
)

// Sink receives recorded audio as 16-bit signed little-endian mono PCM.
type Sink func(pcm []byte)

// Message is the envelope carried on the recording channel in both
// directions. Server -> client: {"type":"command","data":"start_recording"}.
// Client -> server: {"type":"audio_data","data":[...]} with float samples.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type commandMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Session is the recording session. Only one sink is active at a time; a
// second Start replaces the previous sink.
type Session struct {
	bind   *channel.Binding
	logger *slog.Logger

	mu        sync.Mutex
	recording bool
	sink      Sink
}

// NewSession creates a recording session bound to the given channel.
func NewSession(bind *channel.Binding, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{bind: bind, logger: logger}
}

// Start asks the browser to begin capturing microphone audio and registers
// sink for the resulting PCM stream. Returns false without side effects when
// no client is connected.
func (s *Session) Start(sink Sink) bool {
	err := s.bind.SendJSON(commandMessage{Type: "command", Data: "start_recording"})
	if err != nil {
		s.logger.Debug("no client connected to start recording", "error", err)
		return false
	}
	s.mu.Lock()
	s.recording = true
	s.sink = sink
	s.mu.Unlock()
	s.logger.Debug("recording started")
	return true
}

// Stop asks the browser to stop capturing and clears the sink. Frames still
// in flight are discarded. Returns false when no client is connected; the
// local recording flag is cleared regardless.
func (s *Session) Stop() bool {
	s.mu.Lock()
	s.recording = false
	s.sink = nil
	s.mu.Unlock()

	err := s.bind.SendJSON(commandMessage{Type: "command", Data: "stop_recording"})
	if err != nil {
		s.logger.Debug("no client connected to stop recording", "error", err)
		return false
	}
	s.logger.Debug("recording stopped")
	return true
}

// Recording reports whether the session is currently capturing.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Run owns conn until it terminates: it registers the connection, re-issues
// the start command if a recording was in progress when the page reconnected,
// then decodes inbound audio_data frames and forwards them to the sink.
// Malformed frames are protocol errors and tear the connection down. The
// active-connection reference is cleared unconditionally on exit.
func (s *Session) Run(conn *websocket.Conn) {
	gen := s.bind.Attach(conn)
	defer s.bind.Detach(gen)

	if s.Recording() {
		if err := s.bind.SendJSON(commandMessage{Type: "command", Data: "start_recording"}); err != nil {
			s.logger.Debug("failed to resume recording on reconnect", "error", err)
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("malformed recording message, closing connection", "error", err)
			_ = conn.Close()
			return
		}
		if msg.Type != "audio_data" {
			continue
		}
		var samples []float64
		if err := json.Unmarshal(msg.Data, &samples); err != nil {
			s.logger.Warn("malformed audio_data payload, closing connection", "error", err)
			_ = conn.Close()
			return
		}
		s.deliver(samples)
	}
}

// deliver converts one frame to PCM and hands it to the sink, but only while
// the recording flag is set. Frames arriving after Stop are dropped.
func (s *Session) deliver(samples []float64) {
	s.mu.Lock()
	sink := s.sink
	recording := s.recording
	s.mu.Unlock()

	if !recording || sink == nil {
		return
	}
	sink(PCM16FromFloats(samples))
}

// PCM16FromFloats converts floating-point samples in [-1.0, 1.0] to 16-bit
// signed little-endian PCM. Out-of-range input is clamped, never wrapped.
func PCM16FromFloats(samples []float64) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, sample := range samples {
		scaled := math.Round(sample * 32767)
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(scaled)))
	}
	return pcm
}
