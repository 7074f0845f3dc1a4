package webview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// startWebView brings up a full shell without a browser and returns it with
// the websocket base URL.
func startWebView(t *testing.T, opts ...Option) (*WebView, string) {
	t.Helper()
	port := freePort(t)
	opts = append([]Option{
		WithAddr("127.0.0.1", port),
		WithoutBrowser(),
		WithLogger(quietLogger()),
	}, opts...)

	wv, err := New(opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, wv.Start(ctx))
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		wv.Stop(stopCtx)
	})
	return wv, fmt.Sprintf("ws://127.0.0.1:%d", port)
}

func dial(t *testing.T, wsBase, endpoint string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsBase+endpoint, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	return ws
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(WithAddr("127.0.0.1", -1), WithLogger(quietLogger()))
	assert.Error(t, err)
}

func TestStopWithoutStart(t *testing.T) {
	wv, err := New(WithoutBrowser(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.ErrorIs(t, wv.Stop(context.Background()), ErrNotStarted)
}

func TestStartTwice(t *testing.T) {
	wv, _ := startWebView(t)
	assert.Error(t, wv.Start(context.Background()))
}

func TestViewUpdateReachesPage(t *testing.T) {
	wv, wsBase := startWebView(t, WithTitle("Demo"))

	wv.UpdateView("<h1>hello</h1>")

	ws := dial(t, wsBase, "/ws-view")
	var msg struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "html", msg.Type)
	assert.Equal(t, "<h1>hello</h1>", msg.Data)
}

func TestPlaybackLifecycle(t *testing.T) {
	wv, wsBase := startWebView(t)
	ws := dial(t, wsBase, "/ws-audio-player")

	id := wv.Play("data:audio/wav;base64,AAAA", WithDelay(500*time.Millisecond))
	require.NotEmpty(t, id)

	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "audio", envelope["type"])
	assert.Equal(t, id, envelope["id"])
	assert.Equal(t, 0.5, envelope["delay"])

	require.NoError(t, ws.WriteJSON(map[string]string{"type": "playback_complete", "id": id}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wv.WaitUntilFinished(ctx))
}

func TestPlayAndWait(t *testing.T) {
	wv, wsBase := startWebView(t)
	ws := dial(t, wsBase, "/ws-audio-player")

	go func() {
		var envelope map[string]interface{}
		if err := ws.ReadJSON(&envelope); err != nil {
			return
		}
		id, _ := envelope["id"].(string)
		ws.WriteJSON(map[string]string{"type": "playback_complete", "id": id})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := wv.PlayAndWait(ctx, "data:audio/wav;base64,AAAA")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestClearQueueUnblocksWaiters(t *testing.T) {
	wv, _ := startWebView(t)

	// No connection, so the clip stays pending until cleared.
	wv.Play("data:audio/wav;base64,AAAA")

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- wv.WaitUntilFinished(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	wv.ClearQueue()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitUntilFinished did not return after ClearQueue")
	}
}

func TestRecordingRoundTrip(t *testing.T) {
	wv, wsBase := startWebView(t)

	assert.False(t, wv.StartRecording(func([]byte) {}), "no recorder connected yet")

	ws := dial(t, wsBase, "/ws-audio-recorder")

	frames := make(chan []byte, 4)
	require.Eventually(t, func() bool {
		return wv.StartRecording(func(pcm []byte) { frames <- pcm })
	}, 5*time.Second, 50*time.Millisecond)
	assert.True(t, wv.IsRecording())

	var cmd struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&cmd))
	require.Equal(t, "command", cmd.Type)
	require.Equal(t, "start_recording", cmd.Data)

	require.NoError(t, ws.WriteJSON(map[string]interface{}{
		"type": "audio_data",
		"data": []float64{0.0, 1.0, -1.0},
	}))

	select {
	case pcm := <-frames:
		assert.Len(t, pcm, 6)
	case <-time.After(5 * time.Second):
		t.Fatal("recorded frame never reached the sink")
	}

	assert.True(t, wv.StopRecording())
	require.NoError(t, ws.ReadJSON(&cmd))
	assert.Equal(t, "stop_recording", cmd.Data)
	assert.False(t, wv.IsRecording())
}

func TestURL(t *testing.T) {
	wv, err := New(WithAddr("127.0.0.1", 9321), WithoutBrowser(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9321/", wv.URL())
}
