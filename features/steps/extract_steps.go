//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	appsegment "audioseg/application/segment"
	"audioseg/cmd"
	"audioseg/domain/segment"
	"audioseg/infrastructure/codec"
	"audioseg/infrastructure/ffmpeg"
	"audioseg/infrastructure/filesystem"
	"audioseg/infrastructure/resample"

	"github.com/cucumber/godog"
)

// mockRunner stands in for ffmpeg by copying the -i input to the output path
type mockRunner struct {
	calls      []string
	shouldFail bool
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, strings.Join(args, " "))
	if m.shouldFail {
		return errors.New("ffmpeg exited with status 1")
	}

	var input string
	for i, a := range args {
		if a == "-i" && i+1 < len(args) {
			input = args[i+1]
		}
	}
	return copyFile(input, args[len(args)-1])
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// extractContext holds test state for extract scenarios
type extractContext struct {
	dir    string
	runner *mockRunner
	codecs *codec.Registry
	output *bytes.Buffer
	err    error
}

// SharedExtractContext is reset before each scenario via Before hook
var SharedExtractContext *extractContext

func getExtractContext() *extractContext {
	return SharedExtractContext
}

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}

		runner := &mockRunner{}
		opts := []ffmpeg.Option{ffmpeg.WithCommandRunner(runner), ffmpeg.WithTempDir(dir)}
		mp3, err := ffmpeg.NewEncoder(segment.CodecMP3, opts...)
		if err != nil {
			return c, err
		}
		ogg, err := ffmpeg.NewEncoder(segment.CodecOGG, opts...)
		if err != nil {
			return c, err
		}

		SharedExtractContext = &extractContext{
			dir:    dir,
			runner: runner,
			codecs: codec.NewRegistry(
				codec.WithDecoder(segment.CodecGeneric, ffmpeg.NewDecoder(opts...)),
				codec.WithEncoder(segment.CodecMP3, mp3),
				codec.WithEncoder(segment.CodecOGG, ogg),
			),
			output: &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if e := getExtractContext(); e != nil && e.dir != "" {
			os.RemoveAll(e.dir)
		}
		SharedExtractContext = nil
		return c, nil
	})

	ctx.Step(`^a (\d+) second wav file "([^"]*)"$`, aSecondWavFile)
	ctx.Step(`^a corrupt file "([^"]*)"$`, aCorruptFile)
	ctx.Step(`^no file exists at "([^"]*)"$`, noFileExistsAt)
	ctx.Step(`^ffmpeg fails$`, ffmpegFails)
	ctx.Step(`^I extract from "([^"]*)" between ([\d.]+) and ([\d.]+) seconds$`, iExtractBetween)
	ctx.Step(`^I extract from "([^"]*)" between ([\d.]+) and ([\d.]+) seconds to "([^"]*)"$`, iExtractBetweenTo)
	ctx.Step(`^I extract from "([^"]*)" between ([\d.]+) and ([\d.]+) seconds to "([^"]*)" as "([^"]*)" at "([^"]*)"$`, iExtractBetweenToAsAt)
	ctx.Step(`^the extraction should succeed$`, theExtractionShouldSucceed)
	ctx.Step(`^the extraction should fail with an? "([^"]*)" error$`, theExtractionShouldFailWithError)
	ctx.Step(`^the file "([^"]*)" should last ([\d.]+) seconds$`, theFileShouldLastSeconds)
	ctx.Step(`^the file "([^"]*)" should exist$`, theFileShouldExist)
	ctx.Step(`^the file "([^"]*)" should not exist$`, theFileShouldNotExist)
	ctx.Step(`^the output should contain "([^"]*)"$`, theOutputShouldContain)
	ctx.Step(`^ffmpeg should have been called with "([^"]*)"$`, ffmpegShouldHaveBeenCalledWith)
}

func (e *extractContext) path(name string) string {
	return filepath.Join(e.dir, name)
}

func aSecondWavFile(seconds int, name string) error {
	e := getExtractContext()

	const rate = 8000
	samples := make([]int32, seconds*rate)
	for i := range samples {
		samples[i] = int32(8000 * math.Sin(2*math.Pi*220*float64(i)/rate))
	}
	buf := &segment.AudioBuffer{
		Format:  segment.Format{SampleRate: rate, Channels: 1, BitDepth: 16},
		Samples: samples,
	}

	f, err := os.Create(e.path(name))
	if err != nil {
		return err
	}
	defer f.Close()
	return codec.WriteWAV(f, buf)
}

func aCorruptFile(name string) error {
	e := getExtractContext()
	return os.WriteFile(e.path(name), []byte("not audio at all"), 0644)
}

func noFileExistsAt(name string) error {
	e := getExtractContext()
	if _, err := os.Stat(e.path(name)); err == nil {
		return fmt.Errorf("expected no file at %s", name)
	}
	return nil
}

func ffmpegFails() error {
	getExtractContext().runner.shouldFail = true
	return nil
}

func iExtractBetween(input, start, end string) error {
	return runExtract(input, start, end, segment.OutputOptions{})
}

func iExtractBetweenTo(input, start, end, output string) error {
	return runExtract(input, start, end, segment.OutputOptions{Path: getExtractContext().path(output)})
}

func iExtractBetweenToAsAt(input, start, end, output, format, bitrate string) error {
	return runExtract(input, start, end, segment.OutputOptions{
		Path:    getExtractContext().path(output),
		Format:  format,
		Bitrate: bitrate,
	})
}

func runExtract(input, start, end string, opts segment.OutputOptions) error {
	e := getExtractContext()

	startSec, err := strconv.ParseFloat(start, 64)
	if err != nil {
		return err
	}
	endSec, err := strconv.ParseFloat(end, 64)
	if err != nil {
		return err
	}

	e.err = cmd.RunExtractWithDependencies(
		context.Background(),
		e.codecs,
		filesystem.NewChecker(),
		resample.NewLinear(),
		filesystem.NewStager(),
		appsegment.ExtractInput{
			InputPath: e.path(input),
			Start:     startSec,
			End:       endSec,
			Output:    opts,
		},
		e.output,
	)
	return nil
}

func theExtractionShouldSucceed() error {
	e := getExtractContext()
	if e.err != nil {
		return fmt.Errorf("unexpected error: %v\noutput:\n%s", e.err, e.output.String())
	}
	return nil
}

func theExtractionShouldFailWithError(kind string) error {
	e := getExtractContext()
	if e.err == nil {
		return fmt.Errorf("expected a %s error but got none", kind)
	}

	var de *segment.DecodeError
	var ee *segment.EncodeError
	var ok bool
	switch kind {
	case "not found":
		ok = errors.Is(e.err, segment.ErrNotFound)
	case "invalid argument":
		ok = errors.Is(e.err, segment.ErrInvalidArgument)
	case "decode":
		ok = errors.As(e.err, &de)
	case "encode":
		ok = errors.As(e.err, &ee)
	default:
		return fmt.Errorf("unknown error kind %q", kind)
	}

	if !ok {
		return fmt.Errorf("expected a %s error, got: %v", kind, e.err)
	}
	return nil
}

func theFileShouldLastSeconds(name, seconds string) error {
	e := getExtractContext()

	want, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return err
	}

	result, err := appsegment.NewProbeService(e.codecs, filesystem.NewChecker()).Probe(context.Background(), e.path(name))
	if err != nil {
		return fmt.Errorf("probing %s: %w", name, err)
	}

	if wantMs := int64(math.Round(want * 1000)); result.DurationMs != wantMs {
		return fmt.Errorf("expected %s to last %dms, got %dms", name, wantMs, result.DurationMs)
	}
	return nil
}

func theFileShouldExist(name string) error {
	e := getExtractContext()
	if _, err := os.Stat(e.path(name)); err != nil {
		return fmt.Errorf("expected %s to exist: %w", name, err)
	}
	return nil
}

func theFileShouldNotExist(name string) error {
	e := getExtractContext()
	if _, err := os.Stat(e.path(name)); err == nil {
		return fmt.Errorf("expected %s not to exist", name)
	}

	// Staged partial files must be gone too
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".partial") {
			return fmt.Errorf("staged file left behind: %s", entry.Name())
		}
	}
	return nil
}

func theOutputShouldContain(expected string) error {
	e := getExtractContext()
	if !strings.Contains(e.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, e.output.String())
	}
	return nil
}

func ffmpegShouldHaveBeenCalledWith(args string) error {
	e := getExtractContext()
	for _, call := range e.runner.calls {
		if strings.Contains(call, args) {
			return nil
		}
	}
	return fmt.Errorf("expected an ffmpeg call containing %q, got %v", args, e.runner.calls)
}
