package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"audioseg/domain/segment"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// flacBlockSize is the number of frames per encoded FLAC block
const flacBlockSize = 4096

// FLAC decodes and encodes FLAC files using mewkiz/flac
type FLAC struct{}

// NewFLAC creates a FLAC codec
func NewFLAC() *FLAC {
	return &FLAC{}
}

// Decode implements segment.Decoder
func (c *FLAC) Decode(ctx context.Context, path string) (*segment.AudioBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	samples := make([]int32, 0, int(info.NSamples)*channels)

	for {
		fr, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("FLAC frame decode error: %w", err)
		}
		if len(fr.Subframes) != channels {
			return nil, fmt.Errorf("FLAC frame has %d channels, stream has %d", len(fr.Subframes), channels)
		}

		for i := 0; i < int(fr.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, fr.Subframes[ch].Samples[i])
			}
		}
	}

	return segment.NewAudioBuffer(segment.Format{
		SampleRate: int(info.SampleRate),
		Channels:   channels,
		BitDepth:   int(info.BitsPerSample),
	}, samples)
}

// Encode implements segment.Encoder. Frames are written with verbatim
// subframes, so output is lossless but not size-optimized.
func (c *FLAC) Encode(ctx context.Context, buf *segment.AudioBuffer, spec segment.OutputSpec, path string) error {
	channels := buf.Format.Channels
	if channels < 1 || channels > 8 {
		return fmt.Errorf("FLAC supports 1-8 channels, got %d", channels)
	}

	switch {
	case buf.Format.BitDepth > 24:
		buf = requantize(buf, 24)
	case buf.Format.BitDepth != 8 && buf.Format.BitDepth != 16 && buf.Format.BitDepth != 24:
		buf = requantize(buf, 16)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create FLAC file: %w", err)
	}
	defer f.Close()

	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  65535,
		SampleRate:    uint32(buf.Format.SampleRate),
		NChannels:     uint8(channels),
		BitsPerSample: uint8(buf.Format.BitDepth),
		NSamples:      uint64(buf.Frames()),
	}

	enc, err := flac.NewEncoder(f, info)
	if err != nil {
		return fmt.Errorf("failed to create FLAC encoder: %w", err)
	}

	total := buf.Frames()
	for start := 0; start < total; start += flacBlockSize {
		n := flacBlockSize
		if start+n > total {
			n = total - start
		}

		subframes := make([]*frame.Subframe, channels)
		for ch := range subframes {
			samples := make([]int32, n)
			for i := 0; i < n; i++ {
				samples[i] = buf.Samples[(start+i)*channels+ch]
			}
			subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}

		fr := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: false,
				BlockSize:         uint16(n),
				SampleRate:        uint32(buf.Format.SampleRate),
				Channels:          frame.Channels(channels - 1),
				BitsPerSample:     uint8(buf.Format.BitDepth),
				Num:               uint64(start),
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(fr); err != nil {
			enc.Close()
			return fmt.Errorf("FLAC frame encode error: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize FLAC file: %w", err)
	}
	return nil
}

// Ensure FLAC implements segment.Decoder and segment.Encoder
var (
	_ segment.Decoder = (*FLAC)(nil)
	_ segment.Encoder = (*FLAC)(nil)
)
