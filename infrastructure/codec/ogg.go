package codec

import (
	"context"
	"fmt"
	"os"

	"audioseg/domain/segment"

	"github.com/jfreymuth/oggvorbis"
)

// oggBitDepth is the depth float Vorbis output is quantized to
const oggBitDepth = 16

// OGG decodes Ogg Vorbis files using jfreymuth/oggvorbis
type OGG struct{}

// NewOGG creates an Ogg Vorbis decoder
func NewOGG() *OGG {
	return &OGG{}
}

// Decode implements segment.Decoder
func (c *OGG) Decode(ctx context.Context, path string) (*segment.AudioBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ogg file: %w", err)
	}
	defer f.Close()

	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("ogg vorbis decode error: %w", err)
	}

	if format.Channels > 0 {
		data = data[:len(data)-len(data)%format.Channels]
	}

	samples := make([]int32, len(data))
	for i, s := range data {
		samples[i] = floatToSample(s, oggBitDepth)
	}

	return segment.NewAudioBuffer(segment.Format{
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   oggBitDepth,
	}, samples)
}

// Ensure OGG implements segment.Decoder
var _ segment.Decoder = (*OGG)(nil)
