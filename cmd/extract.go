package cmd

import (
	"context"
	"fmt"
	"os"

	appsegment "audioseg/application/segment"
	"audioseg/domain/segment"
	"audioseg/infrastructure/codec"
	"audioseg/infrastructure/config"
	"audioseg/infrastructure/ffmpeg"
	"audioseg/infrastructure/filesystem"
	"audioseg/infrastructure/resample"

	"github.com/spf13/cobra"
)

var (
	extractFormat     string
	extractBitrate    string
	extractSampleRate int
)

var extractCmd = &cobra.Command{
	Use:   "extract <input_file> <start_time> <end_time> [output_file]",
	Short: "Extract a segment from an audio file",
	Long: `Extract the audio between start_time and end_time into a new file.
Times are seconds (10.5) or clock time (01:30, 1:02:03.5).

If end_time is past the end of the audio it is adjusted to the audio duration.
Without output_file the segment is written next to the input as
<name>_segment_<start>-<end><ext>.

The output format comes from --format, then the output file extension,
then falls back to mp3. Encoding mp3 and ogg requires ffmpeg.

Example:
  audioseg extract audio.mp3 10.5 25.3
  audioseg extract audio.mp3 10.5 25.3 clip.ogg --bitrate 128k
  audioseg extract story.wav 0 5.5 word1.wav
  audioseg extract lecture.flac 12:00 1:02:30 part.flac
  audioseg extract interview.m4a 60 90 --format flac --sample-rate 16000`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractFormat, "format", "", "Output format: mp3, wav, ogg, flac (default from output extension)")
	extractCmd.Flags().StringVar(&extractBitrate, "bitrate", "", "Bitrate for mp3 and ogg output (default from config or 192k)")
	extractCmd.Flags().IntVar(&extractSampleRate, "sample-rate", 0, "Resample the segment to this rate in Hz")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	input, err := parseExtractArgs(args)
	if err != nil {
		return err
	}

	// Flags win over config values
	input.Output.Format = extractFormat
	input.Output.Bitrate = extractBitrate
	if input.Output.Bitrate == "" {
		input.Output.Bitrate = cfg.Audio.Bitrate
	}
	input.Output.SampleRate = extractSampleRate
	if !cmd.Flags().Changed("sample-rate") {
		input.Output.SampleRate = cfg.Audio.SampleRate
	}

	return RunExtractWithDependencies(
		cmd.Context(),
		newCodecRegistry(cfg),
		filesystem.NewChecker(),
		resample.NewLinear(),
		filesystem.NewStager(),
		input,
		os.Stdout,
	)
}

// parseExtractArgs converts positional arguments into an ExtractInput
func parseExtractArgs(args []string) (appsegment.ExtractInput, error) {
	start, err := segment.ParseSeconds(args[1])
	if err != nil {
		return appsegment.ExtractInput{}, err
	}
	end, err := segment.ParseSeconds(args[2])
	if err != nil {
		return appsegment.ExtractInput{}, err
	}

	input := appsegment.ExtractInput{
		InputPath: args[0],
		Start:     start,
		End:       end,
	}
	if len(args) == 4 {
		input.Output.Path = args[3]
	}
	return input, nil
}

// newCodecRegistry wires the native codecs plus the ffmpeg-backed ones
func newCodecRegistry(cfg *config.Config) *codec.Registry {
	opts := []ffmpeg.Option{
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.Path),
		ffmpeg.WithTempDir(cfg.FFmpeg.TempDir),
	}

	generic := ffmpeg.NewDecoder(opts...)
	registryOpts := []codec.RegistryOption{
		codec.WithDecoder(segment.CodecGeneric, generic),
		// float64 and companded wav go through ffmpeg
		codec.WithDecoder(segment.CodecWAV, codec.NewWAV(codec.WithFallbackDecoder(generic))),
	}
	for _, c := range []segment.Codec{segment.CodecMP3, segment.CodecOGG} {
		enc, err := ffmpeg.NewEncoder(c, opts...)
		if err != nil {
			continue
		}
		registryOpts = append(registryOpts, codec.WithEncoder(c, enc))
	}

	return codec.NewRegistry(registryOpts...)
}

// RunExtractWithDependencies runs the extract command with injected dependencies (for testing)
func RunExtractWithDependencies(
	ctx context.Context,
	codecs segment.CodecRegistry,
	fileChecker segment.FileChecker,
	resampler segment.Resampler,
	stager segment.OutputStager,
	input appsegment.ExtractInput,
	output OutputWriter,
) error {
	// Create service with injected dependencies
	service := appsegment.NewExtractService(codecs, fileChecker, resampler, stager, output)

	result, err := service.Extract(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "\n✅ Success! Segment saved to: %s\n", result.OutputPath)
	return nil
}
