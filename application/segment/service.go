package segment

import (
	"context"
	"fmt"
	"io"

	"audioseg/domain/segment"
)

// ExtractResult contains the result of a segment extraction
type ExtractResult struct {
	OutputPath string
	Codec      segment.Codec
	Bounds     segment.Bounds
	Format     segment.Format
	DurationMs int64 // duration of the written segment
}

// ExtractInput represents the input for an extraction
type ExtractInput struct {
	InputPath string
	Start     float64 // seconds
	End       float64 // seconds
	Output    segment.OutputOptions
}

// ExtractService coordinates decode, slice, and encode of a segment
type ExtractService struct {
	codecs      segment.CodecRegistry
	fileChecker segment.FileChecker
	resampler   segment.Resampler
	stager      segment.OutputStager
	progress    io.Writer
}

// NewExtractService creates a new ExtractService. Progress and warning
// messages are written to progress; nil discards them.
func NewExtractService(
	codecs segment.CodecRegistry,
	fileChecker segment.FileChecker,
	resampler segment.Resampler,
	stager segment.OutputStager,
	progress io.Writer,
) *ExtractService {
	if progress == nil {
		progress = io.Discard
	}
	return &ExtractService{
		codecs:      codecs,
		fileChecker: fileChecker,
		resampler:   resampler,
		stager:      stager,
		progress:    progress,
	}
}

// Extract writes the [Start, End) segment of the input to a new file and
// returns where it was written. End is clamped to the audio's duration.
func (s *ExtractService) Extract(ctx context.Context, input ExtractInput) (*ExtractResult, error) {
	// Validate before any decoding
	if !s.fileChecker.Exists(input.InputPath) {
		return nil, segment.NotFound(input.InputPath)
	}
	timeRange, err := segment.NewTimeRange(input.Start, input.End)
	if err != nil {
		return nil, err
	}
	if err := input.Output.Validate(); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.progress, "Loading audio file: %s\n", input.InputPath)
	buf, err := s.decode(ctx, input.InputPath)
	if err != nil {
		return nil, err
	}

	durationMs := buf.DurationMs()
	fmt.Fprintf(s.progress, "Audio duration: %.2f seconds\n", float64(durationMs)/1000)

	bounds, err := timeRange.Resolve(durationMs)
	if err != nil {
		return nil, err
	}
	if bounds.Clamped {
		fmt.Fprintf(s.progress, "Warning: End time (%ss) exceeds audio duration (%ss)\n",
			segment.FormatSeconds(input.End), segment.FormatSeconds(bounds.End))
		fmt.Fprintln(s.progress, "Adjusting end time to audio duration")
	}

	fmt.Fprintf(s.progress, "Extracting segment from %ss to %ss\n",
		segment.FormatSeconds(bounds.Start), segment.FormatSeconds(bounds.End))
	seg := buf.Slice(bounds.StartMs, bounds.EndMs)

	spec, err := segment.ResolveOutput(input.InputPath, bounds, input.Output)
	if err != nil {
		return nil, err
	}

	if spec.SampleRate > 0 && spec.SampleRate != seg.Format.SampleRate {
		fmt.Fprintf(s.progress, "Resampling from %d Hz to %d Hz\n", seg.Format.SampleRate, spec.SampleRate)
		seg = s.resampler.Resample(seg, spec.SampleRate)
	}

	fmt.Fprintf(s.progress, "Saving segment to: %s\n", spec.Path)
	if err := s.encode(ctx, seg, spec); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.progress, "Successfully created segment: %.2f seconds\n", seg.Seconds())

	return &ExtractResult{
		OutputPath: spec.Path,
		Codec:      spec.Codec,
		Bounds:     bounds,
		Format:     seg.Format,
		DurationMs: seg.DurationMs(),
	}, nil
}

// decode picks a decoder from the input extension and reads the whole file
func (s *ExtractService) decode(ctx context.Context, path string) (*segment.AudioBuffer, error) {
	dec, err := s.codecs.Decoder(segment.CodecForPath(path))
	if err != nil {
		return nil, &segment.DecodeError{Path: path, Err: err}
	}

	buf, err := dec.Decode(ctx, path)
	if err != nil {
		return nil, &segment.DecodeError{Path: path, Err: err}
	}
	return buf, nil
}

// encode stages the output and only moves it to spec.Path on success
func (s *ExtractService) encode(ctx context.Context, seg *segment.AudioBuffer, spec segment.OutputSpec) error {
	enc, err := s.codecs.Encoder(spec.Codec)
	if err != nil {
		return &segment.EncodeError{Path: spec.Path, Err: err}
	}

	staged, err := s.stager.Stage(spec.Path)
	if err != nil {
		return &segment.EncodeError{Path: spec.Path, Err: err}
	}

	if err := enc.Encode(ctx, seg, spec, staged); err != nil {
		s.stager.Discard(staged)
		return &segment.EncodeError{Path: spec.Path, Err: err}
	}

	if err := s.stager.Commit(staged, spec.Path); err != nil {
		s.stager.Discard(staged)
		return &segment.EncodeError{Path: spec.Path, Err: err}
	}
	return nil
}
