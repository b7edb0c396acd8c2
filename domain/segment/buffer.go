package segment

import (
	"fmt"
	"math"
	"time"
)

// Format describes the sample layout of a decoded buffer
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// String returns a human readable description, e.g. "44100 Hz, 2 ch, 16-bit"
func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit", f.SampleRate, f.Channels, f.BitDepth)
}

// AudioBuffer holds a fully decoded file as interleaved integer samples.
// Samples are signed and scaled to Format.BitDepth.
type AudioBuffer struct {
	Format  Format
	Samples []int32
}

// NewAudioBuffer creates a buffer and checks that the samples form whole frames
func NewAudioBuffer(format Format, samples []int32) (*AudioBuffer, error) {
	b := &AudioBuffer{Format: format, Samples: samples}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the buffer's format and frame alignment
func (b *AudioBuffer) Validate() error {
	if b.Format.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", b.Format.SampleRate)
	}
	if b.Format.Channels <= 0 {
		return fmt.Errorf("invalid channel count %d", b.Format.Channels)
	}
	if b.Format.BitDepth <= 0 || b.Format.BitDepth > 32 {
		return fmt.Errorf("invalid bit depth %d", b.Format.BitDepth)
	}
	if len(b.Samples)%b.Format.Channels != 0 {
		return fmt.Errorf("%d samples do not divide into %d channels", len(b.Samples), b.Format.Channels)
	}
	return nil
}

// Frames returns the number of sample frames
func (b *AudioBuffer) Frames() int {
	if b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// DurationMs returns the duration rounded to the nearest millisecond
func (b *AudioBuffer) DurationMs() int64 {
	if b.Format.SampleRate <= 0 {
		return 0
	}
	return int64(math.Round(1000 * float64(b.Frames()) / float64(b.Format.SampleRate)))
}

// Seconds returns the exact duration in seconds
func (b *AudioBuffer) Seconds() float64 {
	if b.Format.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Format.SampleRate)
}

// Duration returns the exact duration
func (b *AudioBuffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// FrameAt returns the index of the frame at a millisecond offset, bounded
// to [0, Frames()]
func (b *AudioBuffer) FrameAt(ms int64) int {
	if ms <= 0 {
		return 0
	}
	frame := ms * int64(b.Format.SampleRate) / 1000
	if frame > int64(b.Frames()) {
		return b.Frames()
	}
	return int(frame)
}

// Slice returns a copy of the half-open interval [startMs, endMs).
// The receiver is not modified and shares no memory with the result.
func (b *AudioBuffer) Slice(startMs, endMs int64) *AudioBuffer {
	start := b.FrameAt(startMs)
	end := b.FrameAt(endMs)
	if end < start {
		end = start
	}

	ch := b.Format.Channels
	samples := make([]int32, (end-start)*ch)
	copy(samples, b.Samples[start*ch:end*ch])

	return &AudioBuffer{
		Format:  b.Format,
		Samples: samples,
	}
}
