package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/workspace/webview"
	"github.com/workspace/webview/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "webview",
	Short: "Minimal desktop-like UI shell in a browser",
	Long: `webview serves a single HTML page into a launched browser and pushes
HTML fragments and audio playback/recording commands to it over
persistent WebSocket connections.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config file: %w", err)
			}
		}
		level := viper.GetString("log-level")
		if viper.GetBool("debug") {
			level = "debug"
		}
		logging.Setup(level, viper.GetString("log-format"), os.Stderr)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml)")
	pf.String("host", "127.0.0.1", "address to bind the server to")
	pf.Int("port", 8080, "port to bind the server to")
	pf.String("title", "Webview", "browser tab title")
	pf.Bool("debug", false, "enable verbose connection logging")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.Bool("kiosk", false, "run the browser in kiosk mode")
	pf.String("browser", "", "path to the browser binary")
	pf.Bool("no-browser", false, "do not launch a browser, just serve")

	for _, name := range []string{
		"host", "port", "title", "debug", "log-level", "log-format",
		"kiosk", "browser", "no-browser",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
	viper.SetEnvPrefix("WEBVIEW")
	viper.AutomaticEnv()
}

// buildWebView constructs a WebView from the resolved flag/config/env values.
func buildWebView() (*webview.WebView, error) {
	opts := []webview.Option{
		webview.WithAddr(viper.GetString("host"), viper.GetInt("port")),
		webview.WithTitle(viper.GetString("title")),
		webview.WithDebug(viper.GetBool("debug")),
		webview.WithLogLevel(viper.GetString("log-level")),
		webview.WithKiosk(viper.GetBool("kiosk")),
		webview.WithLogger(slog.Default()),
	}
	if path := viper.GetString("browser"); path != "" {
		opts = append(opts, webview.WithBrowserPath(path))
	}
	if viper.GetBool("no-browser") {
		opts = append(opts, webview.WithoutBrowser())
	}
	return webview.New(opts...)
}
