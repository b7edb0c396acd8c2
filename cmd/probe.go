package cmd

import (
	"context"
	"fmt"
	"os"

	appsegment "audioseg/application/segment"
	"audioseg/domain/segment"
	"audioseg/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <input_file>",
	Short: "Show duration and format of an audio file",
	Long: `Decode an audio file and print its duration, sample rate, channels and bit depth.

The file is decoded the same way extract decodes it, so probing a segment
written by extract shows exactly what it contains.

Example:
  audioseg probe word1.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	return RunProbeWithDependencies(
		cmd.Context(),
		newCodecRegistry(cfg),
		filesystem.NewChecker(),
		args[0],
		os.Stdout,
	)
}

// RunProbeWithDependencies runs the probe command with injected dependencies (for testing)
func RunProbeWithDependencies(
	ctx context.Context,
	codecs segment.CodecRegistry,
	fileChecker segment.FileChecker,
	path string,
	output OutputWriter,
) error {
	service := appsegment.NewProbeService(codecs, fileChecker)

	result, err := service.Probe(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "File:        %s\n", result.Path)
	fmt.Fprintf(output, "Codec:       %s\n", result.Codec)
	fmt.Fprintf(output, "Duration:    %.3f seconds\n", float64(result.DurationMs)/1000)
	fmt.Fprintf(output, "Sample rate: %d Hz\n", result.Format.SampleRate)
	fmt.Fprintf(output, "Channels:    %d\n", result.Format.Channels)
	fmt.Fprintf(output, "Bit depth:   %d\n", result.Format.BitDepth)
	fmt.Fprintf(output, "Frames:      %d\n", result.Frames)
	return nil
}
