package audiofile

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVBytesDataURI(t *testing.T) {
	wav := makeWAV(t, 22050, []byte{0x01, 0x02, 0x03, 0x04})

	uri, err := WAVBytesDataURI(wav)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:audio/wav;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:audio/wav;base64,"))
	require.NoError(t, err)
	assert.Equal(t, wav, decoded)
}

func TestWAVBytesDataURIRejectsNonRIFF(t *testing.T) {
	_, err := WAVBytesDataURI([]byte("OggS whatever"))
	assert.Error(t, err)
}

func TestWAVDataURIFromFile(t *testing.T) {
	wav := makeWAV(t, 44100, []byte{0x10, 0x20})
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, wav, 0o644))

	uri, err := WAVDataURI(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:audio/wav;base64,"))
}

func TestWAVDataURIMissingFile(t *testing.T) {
	_, err := WAVDataURI(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
