// Package audiofile provides helpers around the audio payloads the shell
// exchanges with the page: WAV files become base64 data URIs for playback,
// and recorded PCM streams are written to WAV or FLAC files.
package audiofile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
)

const wavDataURIPrefix = "data:audio/wav;base64,"

// WAVDataURI reads a WAV file and encodes it as a data URI suitable for a
// playback request. The file is passed through as-is; converting other
// formats is up to the caller.
func WAVDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	return WAVBytesDataURI(data)
}

// WAVBytesDataURI encodes in-memory WAV data as a data URI.
func WAVBytesDataURI(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		return "", fmt.Errorf("not a RIFF/WAVE file")
	}
	return wavDataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}
