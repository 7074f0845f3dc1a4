// Package browser launches a local browser pointed at the webview page. It is
// deliberately thin: locate a Chromium-family binary, start it with the
// configured flags, and fall back to the OS URL opener. Process supervision
// beyond best-effort termination is out of scope.
package browser

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/workspace/webview/internal/config"
)

// chromiumCandidates lists binaries probed in order when no explicit browser
// path is configured.
var chromiumCandidates = map[string][]string{
	"linux": {
		"chromium",
		"chromium-browser",
		"google-chrome",
		"google-chrome-stable",
	},
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	},
	"windows": {
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	},
}

// Launcher starts and tracks one launched browser process.
type Launcher struct {
	cfg    *config.Config
	logger *slog.Logger
	cmd    *exec.Cmd
}

// New creates a launcher for the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{cfg: cfg, logger: logger}
}

// Open starts a browser showing the configured URL. A Chromium-family binary
// is preferred because the page relies on autoplay without a user gesture;
// when none is found the OS URL opener is used and the flags are lost.
func (l *Launcher) Open() error {
	url := l.cfg.URL()

	if path := l.findChromium(); path != "" {
		cmd := exec.Command(path, l.cfg.BrowserArgs()...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start browser %s: %w", path, err)
		}
		l.cmd = cmd
		l.logger.Info("browser launched", "path", path, "url", url)
		return nil
	}

	l.logger.Info("no chromium binary found, using system opener", "url", url)
	return openSystem(url)
}

// Close terminates a browser started by Open, best effort. Browsers opened
// through the system opener are not tracked and stay up.
func (l *Launcher) Close() {
	if l.cmd != nil && l.cmd.Process != nil {
		_ = l.cmd.Process.Kill()
		_ = l.cmd.Wait()
		l.cmd = nil
	}
}

func (l *Launcher) findChromium() string {
	if l.cfg.BrowserPath != "" {
		if path, err := exec.LookPath(l.cfg.BrowserPath); err == nil {
			return path
		}
		l.logger.Warn("configured browser not found", "path", l.cfg.BrowserPath)
		return ""
	}
	for _, candidate := range chromiumCandidates[runtime.GOOS] {
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	return ""
}

func openSystem(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
