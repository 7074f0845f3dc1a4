package audiofile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WAVSink buffers 16-bit signed little-endian mono PCM and writes a complete
// RIFF/WAVE stream on Close. The header carries sizes, so it can only be
// emitted once the recording is finished.
type WAVSink struct {
	w          io.WriteCloser
	sampleRate int
	pcm        []byte
	closed     bool
}

// NewWAVSink wraps w. The caller keeps ownership of nothing; Close closes w.
func NewWAVSink(w io.WriteCloser, sampleRate int) *WAVSink {
	return &WAVSink{w: w, sampleRate: sampleRate}
}

// NewWAVFileSink creates path and returns a sink writing to it.
func NewWAVFileSink(path string, sampleRate int) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav file: %w", err)
	}
	return NewWAVSink(f, sampleRate), nil
}

// Write buffers one PCM chunk as delivered by the recording session.
func (s *WAVSink) Write(pcm []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("wav sink closed")
	}
	s.pcm = append(s.pcm, pcm...)
	return len(pcm), nil
}

// Close writes the WAV stream and closes the underlying writer.
func (s *WAVSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := writeWAVHeader(s.w, s.sampleRate, len(s.pcm)); err != nil {
		s.w.Close()
		return err
	}
	if _, err := s.w.Write(s.pcm); err != nil {
		s.w.Close()
		return fmt.Errorf("write wav data: %w", err)
	}
	return s.w.Close()
}

// writeWAVHeader emits a canonical 44-byte header for 16-bit mono PCM.
func writeWAVHeader(w io.Writer, sampleRate, dataLen int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	var buf [44]byte
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(buf[22:24], numChannels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}
