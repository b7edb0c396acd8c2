package segment

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultBitrate is the bitrate used for lossy encodes when none is given
const DefaultBitrate = "192k"

// bitrateRegex matches ffmpeg-style bitrates such as "192k" or "128000"
var bitrateRegex = regexp.MustCompile(`^[1-9][0-9]*[kK]?$`)

// OutputOptions are the caller's optional encode hints
type OutputOptions struct {
	Path       string // empty derives a default path from the input
	Format     string // explicit codec override, empty to infer from Path
	Bitrate    string // empty uses DefaultBitrate
	SampleRate int    // 0 keeps the source rate
}

// Validate checks the options without touching the filesystem
func (o OutputOptions) Validate() error {
	if o.Format != "" {
		if _, err := ParseCodec(o.Format); err != nil {
			return err
		}
	}
	if o.Bitrate != "" && !bitrateRegex.MatchString(o.Bitrate) {
		return invalidArgument("invalid bitrate %q: expected a number with optional k suffix, e.g. 192k", o.Bitrate)
	}
	if o.SampleRate < 0 {
		return invalidArgument("sample rate must be positive, got %d", o.SampleRate)
	}
	return nil
}

// OutputSpec is the fully resolved encode target
type OutputSpec struct {
	Path       string
	Codec      Codec
	Bitrate    string
	SampleRate int
}

// ResolveOutput derives the OutputSpec for a segment of inputPath.
// Codec precedence: explicit format, then output extension, then DefaultOutputCodec.
func ResolveOutput(inputPath string, bounds Bounds, opts OutputOptions) (OutputSpec, error) {
	if err := opts.Validate(); err != nil {
		return OutputSpec{}, err
	}

	path := opts.Path
	if path == "" {
		path = DefaultOutputPath(inputPath, bounds.Start, bounds.End)
	}

	codec := CodecForPath(path)
	if opts.Format != "" {
		codec, _ = ParseCodec(opts.Format)
	}
	if codec == CodecGeneric {
		codec = DefaultOutputCodec
	}

	bitrate := opts.Bitrate
	if bitrate == "" {
		bitrate = DefaultBitrate
	}

	return OutputSpec{
		Path:       path,
		Codec:      codec,
		Bitrate:    bitrate,
		SampleRate: opts.SampleRate,
	}, nil
}

// DefaultOutputFilename returns "<stem>_segment_<start>-<end><ext>" for inputPath
func DefaultOutputFilename(inputPath string, start, end float64) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "_segment_" + FormatSeconds(start) + "-" + FormatSeconds(end) + ext
}

// DefaultOutputPath places DefaultOutputFilename in the input's directory
func DefaultOutputPath(inputPath string, start, end float64) string {
	return filepath.Join(filepath.Dir(inputPath), DefaultOutputFilename(inputPath, start, end))
}
