// Package config provides configuration loading for the webview shell.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Orientation values accepted by Config.Orientation.
const (
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"
)

// Config holds all configuration values for the webview shell. The core
// components treat it as read-only input.
type Config struct {
	// Server settings
	Title string
	Host  string
	Port  int

	// Debug gates verbose connection logging only.
	Debug    bool
	LogLevel string

	// Browser settings
	BrowserPath  string
	NoBrowser    bool
	KioskMode    bool
	Orientation  string
	WindowWidth  int
	WindowHeight int

	// HTTP server timeouts. WriteTimeout stays unset because WebSocket
	// connections are long-lived; a write deadline on the underlying conn
	// would kill hijacked connections.
	HTTPReadTimeout time.Duration
	HTTPIdleTimeout time.Duration

	// WebSocket buffer sizes
	WSReadBufferSize  int
	WSWriteBufferSize int
}

// Load reads configuration from WEBVIEW_* environment variables, falling back
// to defaults suitable for a local single-user UI.
func Load() (*Config, error) {
	cfg := &Config{
		Title:    getEnv("WEBVIEW_TITLE", "Webview"),
		Host:     getEnv("WEBVIEW_HOST", "127.0.0.1"),
		Port:     getEnvInt("WEBVIEW_PORT", 8080),
		Debug:    getEnvBool("WEBVIEW_DEBUG", false),
		LogLevel: getEnv("WEBVIEW_LOG_LEVEL", "warn"),

		BrowserPath:  getEnv("WEBVIEW_BROWSER", ""),
		NoBrowser:    getEnvBool("WEBVIEW_NO_BROWSER", false),
		KioskMode:    getEnvBool("WEBVIEW_KIOSK", false),
		Orientation:  getEnv("WEBVIEW_ORIENTATION", OrientationLandscape),
		WindowWidth:  getEnvInt("WEBVIEW_WINDOW_WIDTH", 0),
		WindowHeight: getEnvInt("WEBVIEW_WINDOW_HEIGHT", 0),

		HTTPReadTimeout: getEnvDuration("WEBVIEW_HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPIdleTimeout: getEnvDuration("WEBVIEW_HTTP_IDLE_TIMEOUT", 60*time.Second),

		WSReadBufferSize:  getEnvInt("WEBVIEW_WS_READ_BUFFER_SIZE", 4096),
		WSWriteBufferSize: getEnvInt("WEBVIEW_WS_WRITE_BUFFER_SIZE", 4096),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Orientation {
	case OrientationLandscape, OrientationPortrait:
	default:
		return fmt.Errorf("orientation %q must be %q or %q", c.Orientation, OrientationLandscape, OrientationPortrait)
	}
	if (c.WindowWidth == 0) != (c.WindowHeight == 0) {
		return fmt.Errorf("window width and height must be set together")
	}
	return nil
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// URL returns the base URL the browser is pointed at.
func (c *Config) URL() string {
	return fmt.Sprintf("http://%s/", c.Addr())
}

// EffectiveLogLevel returns the configured log level, lowered to debug when
// the debug flag is set.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// BrowserArgs returns the Chromium launch arguments derived from the
// configuration.
func (c *Config) BrowserArgs() []string {
	args := []string{
		"--no-first-run",
		"--start-maximized",
		"--disable-infobars",
		"--no-default-browser-check",
		"--autoplay-policy=no-user-gesture-required",
	}
	if c.KioskMode {
		args = append(args, "--kiosk")
	}
	if c.Orientation == OrientationPortrait {
		args = append(args, "--force-device-scale-factor=1", "--force-device-orientation=portrait")
	}
	if c.WindowWidth > 0 && c.WindowHeight > 0 {
		args = append(args, fmt.Sprintf("--window-size=%d,%d", c.WindowWidth, c.WindowHeight))
	}
	return append(args, "--app="+c.URL())
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
