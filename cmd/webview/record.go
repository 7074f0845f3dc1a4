package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/workspace/webview/audiofile"
)

var (
	recordDuration   time.Duration
	recordSampleRate int
)

// pcmSink is the common surface of the audiofile sinks.
type pcmSink interface {
	io.Writer
	Close() error
}

var recordCmd = &cobra.Command{
	Use:   "record <out.wav|out.flac>",
	Short: "Record microphone audio from the browser into a WAV or FLAC file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := args[0]
		var sink pcmSink
		var err error
		switch strings.ToLower(filepath.Ext(out)) {
		case ".flac":
			sink, err = audiofile.NewFLACFileSink(out, recordSampleRate)
		case ".wav":
			sink, err = audiofile.NewWAVFileSink(out, recordSampleRate)
		default:
			return fmt.Errorf("unsupported output extension %q (want .wav or .flac)", filepath.Ext(out))
		}
		if err != nil {
			return err
		}

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

		// The recorder page connects asynchronously after the browser
		// launches; keep asking until it is there.
		start := func(f func([]byte)) bool { return wv.StartRecording(f) }
		if err := startRecordingWhenConnected(ctx, start, func(pcm []byte) {
			_, _ = sink.Write(pcm)
		}); err != nil {
			return err
		}
		fmt.Printf("recording to %s", out)
		if recordDuration > 0 {
			fmt.Printf(" for %s", recordDuration)
		}
		fmt.Println(", press Ctrl-C to stop")

		if recordDuration > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(recordDuration):
			}
		} else {
			<-ctx.Done()
		}

		wv.StopRecording()
		if err := sink.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func startRecordingWhenConnected(ctx context.Context, start func(func([]byte)) bool, sink func([]byte)) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		if start(sink) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("no browser connected: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func init() {
	recordCmd.Flags().DurationVar(&recordDuration, "duration", 0, "stop after this long (0 records until Ctrl-C)")
	recordCmd.Flags().IntVar(&recordSampleRate, "sample-rate", 44100, "sample rate written to the output file")
	rootCmd.AddCommand(recordCmd)
}
