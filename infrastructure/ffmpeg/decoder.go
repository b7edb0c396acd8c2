package ffmpeg

import (
	"context"
	"fmt"
	"os"

	"audioseg/domain/segment"
	"audioseg/infrastructure/codec"
)

// Decoder implements segment.Decoder for any container ffmpeg can probe.
// The input is converted to a temporary 16-bit wav and read back natively.
type Decoder struct {
	options
}

// NewDecoder creates a new FFmpeg-based generic decoder
func NewDecoder(opts ...Option) *Decoder {
	return &Decoder{options: newOptions(opts)}
}

// Decode implements segment.Decoder
func (d *Decoder) Decode(ctx context.Context, path string) (*segment.AudioBuffer, error) {
	tmp, err := os.CreateTemp(d.tempDir, "audioseg-decode-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary wav: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := append(append([]string{}, baseArgs...),
		"-i", path,
		"-vn",                  // No video
		"-acodec", "pcm_s16le", // 16-bit PCM
		"-f", "wav",
		"-y", // Overwrite the placeholder temp file
		tmpPath,
	)

	if err := d.runner.Run(ctx, d.ffmpegPath, args...); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open decoded wav: %w", err)
	}
	defer f.Close()

	return codec.ReadWAV(f)
}

// Ensure Decoder implements segment.Decoder
var _ segment.Decoder = (*Decoder)(nil)
