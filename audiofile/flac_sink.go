package audiofile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const flacBlockSize = 4096

// FLACSink encodes 16-bit signed little-endian mono PCM to FLAC as it
// arrives, block by block.
type FLACSink struct {
	w          io.WriteCloser
	enc        *flac.Encoder
	sampleRate int
	buf        []int32 // samples awaiting a full block
	closed     bool
}

// NewFLACSink wraps w with a streaming FLAC encoder. Close closes w.
func NewFLACSink(w io.WriteCloser, sampleRate int) (*FLACSink, error) {
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(sampleRate),
		NChannels:     1,
		BitsPerSample: 16,
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return nil, fmt.Errorf("create flac encoder: %w", err)
	}
	return &FLACSink{w: w, enc: enc, sampleRate: sampleRate}, nil
}

// NewFLACFileSink creates path and returns a sink encoding to it.
func NewFLACFileSink(path string, sampleRate int) (*FLACSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create flac file: %w", err)
	}
	sink, err := NewFLACSink(f, sampleRate)
	if err != nil {
		f.Close()
		return nil, err
	}
	return sink, nil
}

// Write consumes one PCM chunk as delivered by the recording session and
// encodes every completed block.
func (s *FLACSink) Write(pcm []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("flac sink closed")
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		s.buf = append(s.buf, int32(int16(binary.LittleEndian.Uint16(pcm[i:]))))
	}
	for len(s.buf) >= flacBlockSize {
		if err := s.encodeBlock(s.buf[:flacBlockSize]); err != nil {
			return 0, err
		}
		s.buf = s.buf[flacBlockSize:]
	}
	return len(pcm), nil
}

// Close flushes the trailing partial block, finalizes the stream and closes
// the underlying writer.
func (s *FLACSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if len(s.buf) >= 16 {
		if err := s.encodeBlock(s.buf); err != nil {
			s.w.Close()
			return err
		}
	}
	s.buf = nil
	if err := s.enc.Close(); err != nil {
		s.w.Close()
		return fmt.Errorf("finalize flac stream: %w", err)
	}
	return s.w.Close()
}

func (s *FLACSink) encodeBlock(samples []int32) error {
	sub := &frame.Subframe{
		SubHeader: frame.SubHeader{
			Pred: frame.PredVerbatim,
		},
		Samples:  samples,
		NSamples: len(samples),
	}
	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(samples)),
			SampleRate:    uint32(s.sampleRate),
			Channels:      frame.ChannelsMono,
			BitsPerSample: 16,
		},
		Subframes: []*frame.Subframe{sub},
	}
	if err := s.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("write flac frame: %w", err)
	}
	return nil
}
