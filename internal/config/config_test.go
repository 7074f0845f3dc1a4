package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "Webview", cfg.Title)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, OrientationLandscape, cfg.Orientation)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "http://127.0.0.1:8080/", cfg.URL())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WEBVIEW_HOST", "0.0.0.0")
	t.Setenv("WEBVIEW_PORT", "9000")
	t.Setenv("WEBVIEW_TITLE", "Status Board")
	t.Setenv("WEBVIEW_DEBUG", "true")
	t.Setenv("WEBVIEW_KIOSK", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "Status Board", cfg.Title)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.KioskMode)
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults ok", mutate: func(c *Config) {}},
		{name: "empty host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "port too small", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "bad orientation", mutate: func(c *Config) { c.Orientation = "diagonal" }, wantErr: true},
		{name: "portrait ok", mutate: func(c *Config) { c.Orientation = OrientationPortrait }},
		{name: "width without height", mutate: func(c *Config) { c.WindowWidth = 800 }, wantErr: true},
		{name: "window size ok", mutate: func(c *Config) { c.WindowWidth = 800; c.WindowHeight = 600 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tc.mutate(cfg)
			err = cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBrowserArgs(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.KioskMode = true
	cfg.WindowWidth = 1024
	cfg.WindowHeight = 768

	args := cfg.BrowserArgs()
	assert.Contains(t, args, "--kiosk")
	assert.Contains(t, args, "--window-size=1024,768")
	assert.Contains(t, args, "--autoplay-policy=no-user-gesture-required")
	assert.Contains(t, args, "--app=http://127.0.0.1:8080/")
}
