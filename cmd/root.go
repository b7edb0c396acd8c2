package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"audioseg/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "audioseg",
	Short: "Extract time-bounded segments from audio files",
	Long: `audioseg cuts a segment out of an audio file and writes it to a new file.

The whole input is decoded, sliced by start and end time in seconds, and
re-encoded. The output format follows the output file extension unless
--format is given; mp3 is used when neither decides.

Supported formats: mp3, wav, ogg, flac. Other inputs are decoded with ffmpeg.

Example:
  audioseg extract audio.mp3 10.5 25.3
  audioseg extract story.wav 0 5.5 word1.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// negativeNumberRegex matches negative seconds or clock times such as -1, -0.5, -1:30
var negativeNumberRegex = regexp.MustCompile(`^-(\d+(\.\d*)?|\.\d+|\d+(:\d+)+(\.\d*)?)$`)

// Execute runs the root command and exits non-zero on any error
func Execute() {
	rootCmd.SetArgs(shieldNegativeNumbers(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}

// shieldNegativeNumbers prefixes standalone negative numbers with a space so
// the flag parser passes them through as positional arguments. Values that
// follow a flag expecting one are left alone.
func shieldNegativeNumbers(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = arg
		if !negativeNumberRegex.MatchString(arg) {
			continue
		}
		if i > 0 && takesValue(args[i-1]) {
			continue
		}
		out[i] = " " + arg
	}
	return out
}

// takesValue reports whether arg is a flag whose value is the next argument
func takesValue(arg string) bool {
	if !strings.HasPrefix(arg, "-") || arg == "--" || strings.Contains(arg, "=") {
		return false
	}
	if negativeNumberRegex.MatchString(arg) {
		return false
	}
	switch strings.TrimLeft(arg, "-") {
	case "help", "h":
		return false
	}
	return true
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// A missing config file is fine, every setting has a default
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}
