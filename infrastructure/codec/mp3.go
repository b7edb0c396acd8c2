package codec

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"audioseg/domain/segment"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo
const (
	mp3Channels = 2
	mp3BitDepth = 16
)

// MP3 decodes mp3 files using hajimehoshi/go-mp3
type MP3 struct{}

// NewMP3 creates an MP3 decoder
func NewMP3() *MP3 {
	return &MP3{}
}

// Decode implements segment.Decoder
func (c *MP3) Decode(ctx context.Context, path string) (*segment.AudioBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	frameBytes := 2 * mp3Channels
	data = data[:len(data)-len(data)%frameBytes]

	samples := make([]int32, len(data)/2)
	for i := range samples {
		samples[i] = int32(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}

	return segment.NewAudioBuffer(segment.Format{
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   mp3BitDepth,
	}, samples)
}

// Ensure MP3 implements segment.Decoder
var _ segment.Decoder = (*MP3)(nil)
