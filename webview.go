// Package webview provides a minimal desktop-like UI shell: a local web
// server renders a single HTML page in a launched browser, and the host
// process pushes HTML fragments and audio playback/recording commands to that
// page over persistent WebSocket connections, receiving recorded audio back.
package webview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/workspace/webview/internal/browser"
	"github.com/workspace/webview/internal/channel"
	"github.com/workspace/webview/internal/config"
	"github.com/workspace/webview/internal/logging"
	"github.com/workspace/webview/internal/playback"
	"github.com/workspace/webview/internal/record"
	"github.com/workspace/webview/internal/server"
	"github.com/workspace/webview/internal/view"
)

// ClipID identifies one queued audio clip.
type ClipID = string

// RecordingSink receives recorded audio as 16-bit signed little-endian mono
// PCM buffers.
type RecordingSink func(pcm []byte)

// ErrNotStarted is returned by Stop when Start was never called.
var ErrNotStarted = errors.New("webview not started")

// WebView owns the server, the browser process and the three channel
// sessions. Construct one per process with New and share it freely; all
// methods are safe for concurrent use.
type WebView struct {
	cfg    *config.Config
	logger *slog.Logger

	view     *view.Updater
	playback *playback.Session
	record   *record.Session

	server  *server.Server
	browser *browser.Launcher

	started   bool
	serverErr chan error
}

// New creates a WebView from WEBVIEW_* environment variables overridden by
// the given options.
func New(opts ...Option) (*WebView, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(cfg, &o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logging.ParseLevel(cfg.EffectiveLogLevel()),
		}))
	}

	w := &WebView{
		cfg:      cfg,
		logger:   logger,
		view:     view.NewUpdater(channel.New("view", logger), logger),
		playback: playback.NewSession(channel.New("playback", logger), logger),
		record:   record.NewSession(channel.New("recording", logger), logger),
	}

	srv, err := server.New(cfg, logger, w.view, w.playback, w.record)
	if err != nil {
		return nil, err
	}
	w.server = srv
	w.browser = browser.New(cfg, logger)
	return w, nil
}

// Start launches the HTTP server, waits until it answers, and opens the
// browser unless configured otherwise. ctx bounds the readiness wait.
func (w *WebView) Start(ctx context.Context) error {
	if w.started {
		return fmt.Errorf("webview already started")
	}

	w.serverErr = make(chan error, 1)
	go func() {
		w.serverErr <- w.server.Start()
	}()

	if err := w.waitReady(ctx); err != nil {
		return err
	}
	w.started = true
	w.logger.Info("webview started", "url", w.cfg.URL())

	if !w.cfg.NoBrowser {
		if err := w.browser.Open(); err != nil {
			// The page is reachable by hand; a missing browser should not
			// take the host application down.
			w.logger.Warn("browser launch failed", "error", err)
		}
	}
	return nil
}

// waitReady polls the health endpoint until the server answers.
func (w *WebView) waitReady(ctx context.Context) error {
	client := &http.Client{Timeout: time.Second}
	url := w.cfg.URL() + "healthz"
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-w.serverErr:
			return fmt.Errorf("webview server failed to start: %w", err)
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := client.Get(url)
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}

// Stop closes the browser and shuts the server down gracefully.
func (w *WebView) Stop(ctx context.Context) error {
	if !w.started {
		return ErrNotStarted
	}
	w.started = false
	w.browser.Close()
	if err := w.server.Stop(ctx); err != nil {
		return err
	}
	select {
	case err := <-w.serverErr:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateView replaces the page content with html. Fire-and-forget: with no
// browser connected the content is retained and flushed on the next connect;
// only the latest of overlapping updates is guaranteed to render.
func (w *WebView) UpdateView(html string) {
	w.view.Update(html)
}

// Play queues audio for playback and returns the clip identifier as soon as
// the clip is queued; it does not wait for playback. dataURI is typically
// produced by audiofile.WAVDataURI. Clips play in submission order.
func (w *WebView) Play(dataURI string, opts ...PlayOption) ClipID {
	return w.playback.Play(dataURI, playDelay(opts))
}

// PlayAndWait queues audio like Play and blocks until the browser reports the
// clip as played or ctx is done.
func (w *WebView) PlayAndWait(ctx context.Context, dataURI string, opts ...PlayOption) (ClipID, error) {
	return w.playback.PlayAndWait(ctx, dataURI, playDelay(opts))
}

// WaitUntilFinished blocks until every queued clip has been played or
// cancelled, or until ctx is done.
func (w *WebView) WaitUntilFinished(ctx context.Context) error {
	return w.playback.Wait(ctx)
}

// ClearQueue cancels all clips that have not been transmitted yet and
// releases anyone blocked in WaitUntilFinished. Audio the browser is already
// playing is not interrupted.
func (w *WebView) ClearQueue() {
	w.playback.ClearQueue()
}

// StartRecording asks the browser to capture microphone audio and stream it
// to sink as 16-bit mono PCM. Returns false when no browser is connected.
// A second call replaces the sink.
func (w *WebView) StartRecording(sink RecordingSink) bool {
	return w.record.Start(record.Sink(sink))
}

// StopRecording stops the capture. Frames still in flight are discarded.
// Returns false when no browser is connected.
func (w *WebView) StopRecording() bool {
	return w.record.Stop()
}

// IsRecording reports whether a recording is in progress.
func (w *WebView) IsRecording() bool {
	return w.record.Recording()
}

// URL returns the address the page is served at.
func (w *WebView) URL() string {
	return w.cfg.URL()
}
