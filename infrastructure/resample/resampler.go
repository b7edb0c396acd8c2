// Package resample converts decoded buffers between sample rates.
package resample

import (
	"math"

	"audioseg/domain/segment"
)

// Linear performs linear interpolation between neighbouring frames
type Linear struct{}

// NewLinear creates a linear resampler
func NewLinear() *Linear {
	return &Linear{}
}

// Resample returns buf converted to sampleRate. The input is returned
// unchanged if the rate already matches or sampleRate is not positive.
func (l *Linear) Resample(buf *segment.AudioBuffer, sampleRate int) *segment.AudioBuffer {
	inRate := buf.Format.SampleRate
	if sampleRate <= 0 || sampleRate == inRate || inRate <= 0 {
		return buf
	}

	channels := buf.Format.Channels
	inFrames := buf.Frames()
	outFrames := OutputFrames(inFrames, inRate, sampleRate)
	ratio := float64(inRate) / float64(sampleRate)

	out := make([]int32, outFrames*channels)
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		next := idx + 1
		if next >= inFrames {
			next = inFrames - 1
		}

		for ch := 0; ch < channels; ch++ {
			s1 := float64(buf.Samples[idx*channels+ch])
			s2 := float64(buf.Samples[next*channels+ch])
			out[i*channels+ch] = int32(math.Round(s1*(1-frac) + s2*frac))
		}
	}

	format := buf.Format
	format.SampleRate = sampleRate
	return &segment.AudioBuffer{Format: format, Samples: out}
}

// OutputFrames returns how many frames a resample of inFrames produces
func OutputFrames(inFrames, inRate, outRate int) int {
	if inRate <= 0 {
		return 0
	}
	return int(math.Round(float64(inFrames) * float64(outRate) / float64(inRate)))
}

// Ensure Linear implements segment.Resampler
var _ segment.Resampler = (*Linear)(nil)
