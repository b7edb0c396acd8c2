package segment

import (
	"math"
	"strconv"
	"strings"
)

// TimeRange is a requested segment in seconds
type TimeRange struct {
	Start float64
	End   float64
}

// NewTimeRange creates a TimeRange with validation
func NewTimeRange(start, end float64) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// Validate checks that start is non-negative and end is after start
func (r TimeRange) Validate() error {
	if math.IsNaN(r.Start) || math.IsInf(r.Start, 0) {
		return invalidArgument("start time must be a finite number, got %s", FormatSeconds(r.Start))
	}
	if math.IsNaN(r.End) || math.IsInf(r.End, 0) {
		return invalidArgument("end time must be a finite number, got %s", FormatSeconds(r.End))
	}
	if r.Start < 0 {
		return invalidArgument("start time must be non-negative, got %s", FormatSeconds(r.Start))
	}
	if r.End <= r.Start {
		return invalidArgument("end time (%s) must be greater than start time (%s)", FormatSeconds(r.End), FormatSeconds(r.Start))
	}
	return nil
}

// StartMs returns the start offset in milliseconds, truncated toward zero
func (r TimeRange) StartMs() int64 {
	return SecondsToMs(r.Start)
}

// EndMs returns the end offset in milliseconds, truncated toward zero
func (r TimeRange) EndMs() int64 {
	return SecondsToMs(r.End)
}

// Length returns End - Start in seconds
func (r TimeRange) Length() float64 {
	return r.End - r.Start
}

// String returns the range as "<start>s-<end>s"
func (r TimeRange) String() string {
	return FormatSeconds(r.Start) + "s-" + FormatSeconds(r.End) + "s"
}

// SecondsToMs converts seconds to whole milliseconds, truncating toward zero
func SecondsToMs(seconds float64) int64 {
	return int64(seconds * 1000)
}

// FormatSeconds renders seconds in shortest form while always keeping a
// decimal point: 10.5 -> "10.5", 30 -> "30.0"
func FormatSeconds(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Bounds is a TimeRange resolved against the duration of a decoded buffer
type Bounds struct {
	StartMs int64
	EndMs   int64
	Start   float64 // reported start time in seconds
	End     float64 // reported end time in seconds, after clamping
	Clamped bool
}

// Resolve converts the range to millisecond offsets and clamps the end to
// durationMs. A start at or beyond the clamped end is an invalid argument.
func (r TimeRange) Resolve(durationMs int64) (Bounds, error) {
	b := Bounds{
		StartMs: r.StartMs(),
		EndMs:   r.EndMs(),
		Start:   r.Start,
		End:     r.End,
	}

	if b.EndMs > durationMs {
		b.EndMs = durationMs
		b.End = float64(durationMs) / 1000
		b.Clamped = true
	}

	if b.StartMs >= durationMs {
		return Bounds{}, invalidArgument("start time (%s) exceeds audio duration (%s)",
			FormatSeconds(r.Start), FormatSeconds(float64(durationMs)/1000))
	}
	if b.StartMs >= b.EndMs {
		return Bounds{}, invalidArgument("time range %s-%s is shorter than 1 ms",
			FormatSeconds(r.Start), FormatSeconds(r.End))
	}

	return b, nil
}

// LengthMs returns the segment length in milliseconds
func (b Bounds) LengthMs() int64 {
	return b.EndMs - b.StartMs
}
