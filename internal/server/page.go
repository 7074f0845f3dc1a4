package server

import (
	"bytes"
	"html/template"
)

// renderPage builds the host page served at GET /. The page is a thin
// collaborator: it applies html envelopes to the content div, queues and
// plays audio envelopes (acking each clip after playback), and streams
// microphone samples back while recording. All three channels reconnect on
// their own.
func renderPage(title string) ([]byte, error) {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"Title":            title,
		"ViewEndpoint":     ViewEndpoint,
		"PlaybackEndpoint": PlaybackEndpoint,
		"RecordEndpoint":   RecordEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8"/>
    <title>{{.Title}}</title>
    <style>
        html, body, #main_update_content {
            margin: 0;
            padding: 0;
            width: 100%;
            height: 100%;
        }
    </style>
</head>
<body>
    <div id="main_update_content"></div>
    <script>
    const wsBase = (location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host;
    const RECONNECT_DELAY_MS = 1000;

    class HtmlUpdater {
        constructor(path) {
            this.path = path;
            this.connect();
        }

        connect() {
            this.socket = new WebSocket(wsBase + this.path);
            this.socket.onmessage = (event) => {
                const msg = JSON.parse(event.data);
                if (msg.type === 'html') {
                    document.getElementById('main_update_content').innerHTML = msg.data;
                }
            };
            this.socket.onclose = () => setTimeout(() => this.connect(), RECONNECT_DELAY_MS);
            this.socket.onerror = (err) => console.error('html updater websocket error:', err);
        }
    }

    class AudioPlayer {
        constructor(path) {
            this.path = path;
            this.audioQueue = [];
            this.isPlaying = false;
            this.connect();
        }

        connect() {
            this.socket = new WebSocket(wsBase + this.path);
            this.socket.onmessage = (event) => {
                const msg = JSON.parse(event.data);
                if (msg.type === 'audio') {
                    this.audioQueue.push(msg);
                    if (!this.isPlaying) {
                        this.playNext();
                    }
                }
            };
            this.socket.onclose = () => setTimeout(() => this.connect(), RECONNECT_DELAY_MS);
            this.socket.onerror = (err) => console.error('audio player websocket error:', err);
        }

        playNext() {
            if (this.audioQueue.length === 0) {
                this.isPlaying = false;
                return;
            }
            this.isPlaying = true;
            const clip = this.audioQueue.shift();
            this.playClip(clip.data, clip.delay)
                .then(() => {
                    this.socket.send(JSON.stringify({type: 'playback_complete', id: clip.id}));
                    this.playNext();
                })
                .catch((err) => {
                    console.error('error playing audio:', err);
                    this.socket.send(JSON.stringify({type: 'playback_complete', id: clip.id}));
                    this.playNext();
                });
        }

        playClip(dataURI, delaySeconds) {
            return new Promise((resolve, reject) => {
                const audio = new Audio(dataURI);
                audio.onended = resolve;
                audio.onerror = reject;
                const start = () => audio.play().catch(reject);
                if (delaySeconds && delaySeconds > 0) {
                    setTimeout(start, delaySeconds * 1000);
                } else {
                    start();
                }
            });
        }
    }

    class AudioRecorder {
        constructor(path) {
            this.path = path;
            this.isRecording = false;
            this.connect();
        }

        connect() {
            this.socket = new WebSocket(wsBase + this.path);
            this.socket.onmessage = (event) => {
                const msg = JSON.parse(event.data);
                if (msg.type === 'command' && msg.data === 'start_recording') {
                    this.startRecording();
                } else if (msg.type === 'command' && msg.data === 'stop_recording') {
                    this.stopRecording();
                }
            };
            this.socket.onclose = () => setTimeout(() => this.connect(), RECONNECT_DELAY_MS);
            this.socket.onerror = (err) => console.error('audio recorder websocket error:', err);
        }

        async startRecording() {
            if (this.isRecording) return;
            try {
                this.stream = await navigator.mediaDevices.getUserMedia({audio: true});
                this.audioContext = new (window.AudioContext || window.webkitAudioContext)();
                this.source = this.audioContext.createMediaStreamSource(this.stream);
                this.processor = this.audioContext.createScriptProcessor(8192, 1, 1);
                this.processor.onaudioprocess = (event) => {
                    const input = event.inputBuffer.getChannelData(0);
                    this.socket.send(JSON.stringify({
                        type: 'audio_data',
                        data: Array.from(input)
                    }));
                };
                this.source.connect(this.processor);
                this.processor.connect(this.audioContext.destination);
                this.isRecording = true;
            } catch (err) {
                console.error('audio recorder error:', err);
            }
        }

        stopRecording() {
            if (!this.isRecording) return;
            if (this.processor) {
                this.processor.disconnect();
                this.source.disconnect();
            }
            if (this.audioContext) {
                this.audioContext.close();
            }
            if (this.stream) {
                this.stream.getTracks().forEach((track) => track.stop());
            }
            this.isRecording = false;
        }
    }

    new HtmlUpdater('{{.ViewEndpoint}}');
    new AudioPlayer('{{.PlaybackEndpoint}}');
    new AudioRecorder('{{.RecordEndpoint}}');
    </script>
</body>
</html>
`
