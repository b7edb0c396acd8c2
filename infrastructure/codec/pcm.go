package codec

import (
	"math"

	"audioseg/domain/segment"
)

// floatToSample scales a [-1, 1] float sample to a signed integer of bitDepth bits
func floatToSample(f float32, bitDepth int) int32 {
	if math.IsNaN(float64(f)) {
		return 0
	}
	max := float64(int64(1)<<(bitDepth-1) - 1)
	v := math.Round(float64(f) * max)
	if v > max {
		v = max
	}
	if v < -max-1 {
		v = -max - 1
	}
	return int32(v)
}

// requantize returns buf with samples shifted to bitDepth. It returns buf
// itself when the depth already matches.
func requantize(buf *segment.AudioBuffer, bitDepth int) *segment.AudioBuffer {
	shift := bitDepth - buf.Format.BitDepth
	if shift == 0 {
		return buf
	}

	samples := make([]int32, len(buf.Samples))
	for i, s := range buf.Samples {
		if shift > 0 {
			samples[i] = s << shift
		} else {
			samples[i] = s >> -shift
		}
	}

	format := buf.Format
	format.BitDepth = bitDepth
	return &segment.AudioBuffer{Format: format, Samples: samples}
}
