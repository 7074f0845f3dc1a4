package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/workspace/webview/audiofile"
)

var demoCmd = &cobra.Command{
	Use:   "demo [audio.wav...]",
	Short: "Show a periodically updated status page, optionally playing WAV files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		wv, err := buildWebView()
		if err != nil {
			return err
		}
		startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := wv.Start(startCtx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = wv.Stop(shutdownCtx)
		}()

		fmt.Printf("webview running at %s, press Ctrl-C to quit\n", wv.URL())

		for _, path := range args {
			uri, err := audiofile.WAVDataURI(path)
			if err != nil {
				return err
			}
			id := wv.Play(uri)
			fmt.Printf("queued %s as clip %s\n", path, id)
		}

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for i := 0; ; i++ {
			wv.UpdateView(fmt.Sprintf(
				"<h2>Update number %d</h2><p>%s</p>",
				i, time.Now().Format(time.RFC1123),
			))
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
