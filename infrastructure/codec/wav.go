package codec

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"audioseg/domain/segment"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// floatBitDepth is the depth IEEE float wav samples are quantized to
const floatBitDepth = 24

// ErrUnsupportedWAV is returned for wav encodings ReadWAV cannot decode
var ErrUnsupportedWAV = errors.New("unsupported wav encoding")

// WAV decodes and encodes wav files using go-audio/wav
type WAV struct {
	fallback segment.Decoder
}

// WAVOption is a functional option for configuring WAV
type WAVOption func(*WAV)

// WithFallbackDecoder sets the decoder used for wav encodings that
// ReadWAV does not support, such as 64-bit float or A-law
func WithFallbackDecoder(d segment.Decoder) WAVOption {
	return func(w *WAV) {
		w.fallback = d
	}
}

// NewWAV creates a WAV codec
func NewWAV(opts ...WAVOption) *WAV {
	w := &WAV{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Decode implements segment.Decoder
func (w *WAV) Decode(ctx context.Context, path string) (*segment.AudioBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	buf, err := ReadWAV(f)
	if errors.Is(err, ErrUnsupportedWAV) && w.fallback != nil {
		return w.fallback.Decode(ctx, path)
	}
	return buf, err
}

// Encode implements segment.Encoder
func (w *WAV) Encode(ctx context.Context, buf *segment.AudioBuffer, spec segment.OutputSpec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	if err := WriteWAV(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadWAV decodes a complete wav stream holding integer PCM or 32-bit
// IEEE float samples. Float samples are quantized to 24 bits.
func ReadWAV(r io.ReadSeeker) (*segment.AudioBuffer, error) {
	sampleFormat, err := wavSampleFormat(r)
	if err != nil {
		return nil, fmt.Errorf("invalid wav file: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind wav file: %w", err)
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("invalid wav file: %w", err)
		}
		return nil, errors.New("invalid wav file")
	}

	bitDepth := int(dec.BitDepth)
	switch {
	case sampleFormat == wavFormatPCM:
	case sampleFormat == wavFormatIEEEFloat && bitDepth == 32:
	case sampleFormat == wavFormatIEEEFloat:
		return nil, fmt.Errorf("%w: %d-bit float samples", ErrUnsupportedWAV, bitDepth)
	default:
		return nil, fmt.Errorf("%w: audio format %d", ErrUnsupportedWAV, sampleFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}

	samples := make([]int32, len(pcm.Data))
	for i, s := range pcm.Data {
		switch {
		case sampleFormat == wavFormatIEEEFloat:
			// go-audio hands back the raw 32-bit pattern
			samples[i] = floatToSample(math.Float32frombits(uint32(int32(s))), floatBitDepth)
		case bitDepth == 8:
			// 8-bit wav is unsigned
			samples[i] = int32(s - 128)
		default:
			samples[i] = int32(s)
		}
	}
	if sampleFormat == wavFormatIEEEFloat {
		bitDepth = floatBitDepth
	}

	channels := int(dec.NumChans)
	if channels > 0 {
		samples = samples[:len(samples)-len(samples)%channels]
	}

	return segment.NewAudioBuffer(segment.Format{
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	}, samples)
}

// wavSampleFormat reads the format tag from the fmt chunk. For
// WAVE_FORMAT_EXTENSIBLE it returns the tag embedded in the SubFormat GUID.
func wavSampleFormat(r io.Reader) (uint16, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return 0, err
	}

	for {
		chunk, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("fmt chunk not found: %w", err)
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		data := make([]byte, chunk.Size)
		if _, err := io.ReadFull(chunk, data); err != nil {
			return 0, fmt.Errorf("short fmt chunk: %w", err)
		}
		if len(data) < 16 {
			return 0, fmt.Errorf("fmt chunk is %d bytes, want at least 16", len(data))
		}

		tag := binary.LittleEndian.Uint16(data[0:2])
		// cbSize(2) validBits(2) channelMask(4) then the SubFormat GUID
		if tag == wavFormatExtensible && len(data) >= 26 {
			tag = binary.LittleEndian.Uint16(data[24:26])
		}
		return tag, nil
	}
}

// WriteWAV encodes buf as PCM wav. w is not closed.
func WriteWAV(w io.WriteSeeker, buf *segment.AudioBuffer) error {
	bitDepth := buf.Format.BitDepth
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		buf = requantize(buf, 16)
		bitDepth = 16
	}

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		if bitDepth == 8 {
			s += 128
		}
		data[i] = int(s)
	}

	enc := wav.NewEncoder(w, buf.Format.SampleRate, bitDepth, buf.Format.Channels, wavFormatPCM)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.Format.Channels,
			SampleRate:  buf.Format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("wav encode error: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return nil
}

// Ensure WAV implements segment.Decoder and segment.Encoder
var (
	_ segment.Decoder = (*WAV)(nil)
	_ segment.Encoder = (*WAV)(nil)
)
