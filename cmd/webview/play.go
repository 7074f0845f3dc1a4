package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/workspace/webview"
	"github.com/workspace/webview/audiofile"
)

var playDelay time.Duration

var playCmd = &cobra.Command{
	Use:   "play <audio.wav> [audio.wav...]",
	Short: "Play WAV files in the browser and wait for playback to finish",
	Args:  cobra.MinimumNArgs(1),
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

		for _, path := range args {
			uri, err := audiofile.WAVDataURI(path)
			if err != nil {
				return err
			}
			id := wv.Play(uri, webview.WithDelay(playDelay))
			fmt.Printf("queued %s as clip %s\n", path, id)
		}

		if err := wv.WaitUntilFinished(ctx); err != nil {
			return err
		}
		fmt.Println("playback finished")
		return nil
	},
}

func init() {
	playCmd.Flags().DurationVar(&playDelay, "delay", 0, "delay before each clip starts playing")
	rootCmd.AddCommand(playCmd)
}
