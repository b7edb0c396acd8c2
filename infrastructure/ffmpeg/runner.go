package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command. Its stderr is folded into the returned error.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%s not found in PATH (required for mp3/ogg output and unrecognized input formats): %w", name, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// options holds settings shared by the decoder and encoder
type options struct {
	ffmpegPath string
	runner     CommandRunner
	tempDir    string
}

// Option is a functional option for configuring the ffmpeg adapters
type Option func(*options)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) Option {
	return func(o *options) {
		o.runner = runner
	}
}

// WithTempDir sets the directory for intermediate wav files
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tempDir = dir
	}
}

func newOptions(opts []Option) options {
	o := options{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// baseArgs are passed to every ffmpeg invocation
var baseArgs = []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
