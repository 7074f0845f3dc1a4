package audiofile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriteCloser struct {
	bytes.Buffer
	closed bool
}

func (m *memWriteCloser) Close() error {
	m.closed = true
	return nil
}

// makeWAV builds a minimal valid WAV via the sink itself, for the data URI
// tests above.
func makeWAV(t *testing.T, sampleRate int, pcm []byte) []byte {
	t.Helper()
	var out memWriteCloser
	sink := NewWAVSink(&out, sampleRate)
	_, err := sink.Write(pcm)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	return out.Bytes()
}

func TestWAVSinkHeader(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0x7F, 0x00, 0x80}
	var out memWriteCloser
	sink := NewWAVSink(&out, 16000)

	_, err := sink.Write(pcm[:2])
	require.NoError(t, err)
	_, err = sink.Write(pcm[2:])
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.True(t, out.closed)

	wav := out.Bytes()
	require.Len(t, wav, 44+len(pcm))

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "mono")
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(wav[28:32]), "byte rate")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[32:34]), "block align")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestWAVSinkWriteAfterClose(t *testing.T) {
	var out memWriteCloser
	sink := NewWAVSink(&out, 8000)
	require.NoError(t, sink.Close())

	_, err := sink.Write([]byte{0x00, 0x00})
	assert.Error(t, err)

	// Close again is a no-op.
	assert.NoError(t, sink.Close())
}

func TestWAVFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.wav")
	sink, err := NewWAVFileSink(path, 44100)
	require.NoError(t, err)

	pcm := make([]byte, 256)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	_, err = sink.Write(pcm)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 44+len(pcm))
	assert.Equal(t, pcm, data[44:])

	uri, err := WAVDataURI(path)
	require.NoError(t, err)
	assert.NotEmpty(t, uri)
}
