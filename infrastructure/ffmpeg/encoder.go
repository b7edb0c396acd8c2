package ffmpeg

import (
	"context"
	"fmt"
	"os"

	"audioseg/domain/segment"
	"audioseg/infrastructure/codec"
)

// encoderArgs maps each lossy codec to its ffmpeg codec and muxer
var encoderArgs = map[segment.Codec][]string{
	segment.CodecMP3: {"-acodec", "libmp3lame", "-f", "mp3"},
	segment.CodecOGG: {"-acodec", "libvorbis", "-f", "ogg"},
}

// Encoder implements segment.Encoder for lossy codecs using ffmpeg.
// The buffer is written to a temporary wav which ffmpeg then transcodes.
type Encoder struct {
	options
	codec segment.Codec
}

// NewEncoder creates an FFmpeg-based encoder for mp3 or ogg
func NewEncoder(c segment.Codec, opts ...Option) (*Encoder, error) {
	if _, ok := encoderArgs[c]; !ok {
		return nil, fmt.Errorf("ffmpeg encoder does not support codec %s", c)
	}
	return &Encoder{options: newOptions(opts), codec: c}, nil
}

// Args returns the ffmpeg arguments used to transcode input to output
func (e *Encoder) Args(input string, spec segment.OutputSpec, output string) []string {
	args := append(append([]string{}, baseArgs...), "-i", input)
	args = append(args, encoderArgs[e.codec]...)
	if spec.Bitrate != "" {
		args = append(args, "-b:a", spec.Bitrate)
	}
	return append(args,
		"-y", // Overwrite output file if it exists
		output,
	)
}

// Encode implements segment.Encoder
func (e *Encoder) Encode(ctx context.Context, buf *segment.AudioBuffer, spec segment.OutputSpec, path string) error {
	tmp, err := os.CreateTemp(e.tempDir, "audioseg-encode-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temporary wav: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := codec.WriteWAV(tmp, buf); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temporary wav: %w", err)
	}

	if err := e.runner.Run(ctx, e.ffmpegPath, e.Args(tmpPath, spec, path)...); err != nil {
		return fmt.Errorf("ffmpeg %s encode failed: %w", e.codec, err)
	}
	return nil
}

// Ensure Encoder implements segment.Encoder
var _ segment.Encoder = (*Encoder)(nil)
