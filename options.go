package webview

import (
	"log/slog"
	"time"

	"github.com/workspace/webview/internal/config"
)

// options collects settings that live outside the configuration surface.
type options struct {
	logger *slog.Logger
}

// Option configures a WebView at construction time. Options override values
// loaded from the environment.
type Option func(*config.Config, *options)

// WithTitle sets the browser tab title.
func WithTitle(title string) Option {
	return func(c *config.Config, _ *options) { c.Title = title }
}

// WithAddr sets the host and port the server binds to.
func WithAddr(host string, port int) Option {
	return func(c *config.Config, _ *options) {
		c.Host = host
		c.Port = port
	}
}

// WithDebug enables verbose connection logging.
func WithDebug(debug bool) Option {
	return func(c *config.Config, _ *options) { c.Debug = debug }
}

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(c *config.Config, _ *options) { c.LogLevel = level }
}

// WithKiosk runs the browser fullscreen without any browser UI.
func WithKiosk(kiosk bool) Option {
	return func(c *config.Config, _ *options) { c.KioskMode = kiosk }
}

// WithOrientation forces the display orientation ("landscape" or
// "portrait"). Not all systems honor it.
func WithOrientation(orientation string) Option {
	return func(c *config.Config, _ *options) { c.Orientation = orientation }
}

// WithWindowSize requests a specific browser window size.
func WithWindowSize(width, height int) Option {
	return func(c *config.Config, _ *options) {
		c.WindowWidth = width
		c.WindowHeight = height
	}
}

// WithBrowserPath points the launcher at a specific browser binary.
func WithBrowserPath(path string) Option {
	return func(c *config.Config, _ *options) { c.BrowserPath = path }
}

// WithoutBrowser starts the server without launching a browser; the page can
// be opened by hand.
func WithoutBrowser() Option {
	return func(c *config.Config, _ *options) { c.NoBrowser = true }
}

// WithLogger supplies the slog logger used by all components. Without it a
// text logger honoring the configured level is created.
func WithLogger(logger *slog.Logger) Option {
	return func(_ *config.Config, o *options) { o.logger = logger }
}

// PlayOption configures one playback request.
type PlayOption func(*playOptions)

type playOptions struct {
	delay time.Duration
}

// WithDelay makes the browser hold the clip for d before starting playback.
// Scheduling happens browser-side; the clip is still transmitted immediately
// and in order.
func WithDelay(d time.Duration) PlayOption {
	return func(o *playOptions) { o.delay = d }
}

func playDelay(opts []PlayOption) time.Duration {
	var o playOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.delay
}
