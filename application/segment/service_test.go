package segment

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"audioseg/domain/segment"
)

// --- Mock implementations for testing ---

// mockFileChecker implements segment.FileChecker for testing
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

// mockDecoder returns a fixed buffer
type mockDecoder struct {
	buf   *segment.AudioBuffer
	err   error
	calls []string
}

func (m *mockDecoder) Decode(ctx context.Context, path string) (*segment.AudioBuffer, error) {
	m.calls = append(m.calls, path)
	if m.err != nil {
		return nil, m.err
	}
	return m.buf, nil
}

// mockEncoder records what it was asked to encode
type mockEncoder struct {
	err   error
	calls []encodeCall
}

type encodeCall struct {
	buf  *segment.AudioBuffer
	spec segment.OutputSpec
	path string
}

func (m *mockEncoder) Encode(ctx context.Context, buf *segment.AudioBuffer, spec segment.OutputSpec, path string) error {
	m.calls = append(m.calls, encodeCall{buf: buf, spec: spec, path: path})
	return m.err
}

// mockRegistry implements segment.CodecRegistry for testing
type mockRegistry struct {
	decoders map[segment.Codec]*mockDecoder
	encoders map[segment.Codec]*mockEncoder
}

func (m *mockRegistry) Decoder(c segment.Codec) (segment.Decoder, error) {
	if d, ok := m.decoders[c]; ok {
		return d, nil
	}
	return nil, errors.New("no decoder available for " + c.String())
}

func (m *mockRegistry) Encoder(c segment.Codec) (segment.Encoder, error) {
	if e, ok := m.encoders[c]; ok {
		return e, nil
	}
	return nil, errors.New("no encoder available for " + c.String())
}

// mockResampler changes only the reported rate
type mockResampler struct {
	rates []int
}

func (m *mockResampler) Resample(buf *segment.AudioBuffer, sampleRate int) *segment.AudioBuffer {
	m.rates = append(m.rates, sampleRate)
	out := *buf
	out.Format.SampleRate = sampleRate
	return &out
}

// mockStager tracks staged and committed paths in memory
type mockStager struct {
	committed map[string]bool
	discarded []string
	stageErr  error
	commitErr error
}

func (m *mockStager) Stage(target string) (string, error) {
	if m.stageErr != nil {
		return "", m.stageErr
	}
	return target + ".partial", nil
}

func (m *mockStager) Commit(staged, target string) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed[target] = true
	return nil
}

func (m *mockStager) Discard(staged string) error {
	m.discarded = append(m.discarded, staged)
	return nil
}

// --- Test fixture ---

type fixture struct {
	files    *mockFileChecker
	registry *mockRegistry
	resample *mockResampler
	stager   *mockStager
	progress *bytes.Buffer
	service  *ExtractService
}

// newFixture builds a service whose every decoder returns seconds of
// 1 kHz stereo audio, one frame per millisecond
func newFixture(seconds int, existing ...string) *fixture {
	buf := &segment.AudioBuffer{
		Format:  segment.Format{SampleRate: 1000, Channels: 2, BitDepth: 16},
		Samples: make([]int32, seconds*1000*2),
	}

	f := &fixture{
		files: &mockFileChecker{existingFiles: map[string]bool{}},
		registry: &mockRegistry{
			decoders: map[segment.Codec]*mockDecoder{},
			encoders: map[segment.Codec]*mockEncoder{},
		},
		resample: &mockResampler{},
		stager:   &mockStager{committed: map[string]bool{}},
		progress: &bytes.Buffer{},
	}
	for _, c := range []segment.Codec{segment.CodecMP3, segment.CodecWAV, segment.CodecOGG, segment.CodecFLAC, segment.CodecGeneric} {
		f.registry.decoders[c] = &mockDecoder{buf: buf}
	}
	for _, c := range segment.OutputCodecs {
		f.registry.encoders[c] = &mockEncoder{}
	}
	for _, p := range existing {
		f.files.existingFiles[p] = true
	}
	f.service = NewExtractService(f.registry, f.files, f.resample, f.stager, f.progress)
	return f
}

func (f *fixture) onlyEncodeCall(t *testing.T) (segment.Codec, encodeCall) {
	t.Helper()
	var found []segment.Codec
	var call encodeCall
	for c, e := range f.registry.encoders {
		if len(e.calls) > 0 {
			found = append(found, c)
			call = e.calls[0]
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly one encoder call, got codecs %v", found)
	}
	return found[0], call
}

// --- Tests ---

func TestExtractService_Extract(t *testing.T) {
	f := newFixture(8, "story.wav")

	result, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "story.wav",
		Start:     0,
		End:       5.5,
		Output:    segment.OutputOptions{Path: "word1.wav"},
	})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if result.OutputPath != "word1.wav" {
		t.Errorf("OutputPath = %q, want word1.wav", result.OutputPath)
	}
	if result.DurationMs != 5500 {
		t.Errorf("DurationMs = %d, want 5500", result.DurationMs)
	}
	if result.Bounds.Clamped {
		t.Error("Bounds.Clamped = true, want false")
	}

	c, call := f.onlyEncodeCall(t)
	if c != segment.CodecWAV {
		t.Errorf("encoded with %s, want wav", c)
	}
	if call.path != "word1.wav.partial" {
		t.Errorf("encoder wrote to %q, want staged path", call.path)
	}
	if call.buf.Frames() != 5500 {
		t.Errorf("encoded %d frames, want 5500", call.buf.Frames())
	}
	if !f.stager.committed["word1.wav"] {
		t.Error("output was not committed")
	}
	if got := f.registry.decoders[segment.CodecWAV].calls; len(got) != 1 {
		t.Errorf("wav decoder calls = %v, want one", got)
	}
	if strings.Contains(f.progress.String(), "Warning") {
		t.Errorf("unexpected warning in progress:\n%s", f.progress.String())
	}
}

func TestExtractService_ClampsEndToDuration(t *testing.T) {
	f := newFixture(30, "audio.mp3")

	result, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "audio.mp3",
		Start:     10.5,
		End:       100.0,
	})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if result.DurationMs != 19500 {
		t.Errorf("DurationMs = %d, want 19500", result.DurationMs)
	}
	if !result.Bounds.Clamped || result.Bounds.End != 30 {
		t.Errorf("Bounds = %+v, want clamped end 30", result.Bounds)
	}
	if result.OutputPath != "audio_segment_10.5-30.0.mp3" {
		t.Errorf("OutputPath = %q, want audio_segment_10.5-30.0.mp3", result.OutputPath)
	}

	out := f.progress.String()
	for _, want := range []string{
		"Warning: End time (100.0s) exceeds audio duration (30.0s)",
		"Adjusting end time to audio duration",
		"Extracting segment from 10.5s to 30.0s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("progress missing %q:\n%s", want, out)
		}
	}
}

func TestExtractService_DefaultOutputPath(t *testing.T) {
	f := newFixture(30, "audio.mp3")

	result, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "audio.mp3",
		Start:     10.5,
		End:       25.3,
	})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if result.OutputPath != "audio_segment_10.5-25.3.mp3" {
		t.Errorf("OutputPath = %q, want audio_segment_10.5-25.3.mp3", result.OutputPath)
	}
	c, call := f.onlyEncodeCall(t)
	if c != segment.CodecMP3 || call.spec.Bitrate != segment.DefaultBitrate {
		t.Errorf("encoded with %s at %q, want mp3 at %q", c, call.spec.Bitrate, segment.DefaultBitrate)
	}
	if got := result.DurationMs; got < 14799 || got > 14801 {
		t.Errorf("DurationMs = %d, want 14800 ±1", got)
	}
}

func TestExtractService_FormatOverride(t *testing.T) {
	f := newFixture(10, "in.wav")

	_, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "in.wav",
		Start:     1,
		End:       2,
		Output:    segment.OutputOptions{Path: "out.wav", Format: "ogg", Bitrate: "96k"},
	})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	c, call := f.onlyEncodeCall(t)
	if c != segment.CodecOGG {
		t.Errorf("encoded with %s, want ogg", c)
	}
	if call.spec.Bitrate != "96k" {
		t.Errorf("Bitrate = %q, want 96k", call.spec.Bitrate)
	}
}

func TestExtractService_UnknownInputUsesGenericDecoder(t *testing.T) {
	f := newFixture(10, "voice.m4a")

	if _, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "voice.m4a",
		Start:     0,
		End:       1,
	}); err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if got := f.registry.decoders[segment.CodecGeneric].calls; len(got) != 1 {
		t.Errorf("generic decoder calls = %v, want one", got)
	}
	if c, _ := f.onlyEncodeCall(t); c != segment.CodecMP3 {
		t.Errorf("encoded with %s, want mp3 fallback", c)
	}
}

func TestExtractService_Resamples(t *testing.T) {
	f := newFixture(10, "in.wav")

	result, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "in.wav",
		Start:     0,
		End:       1,
		Output:    segment.OutputOptions{Path: "out.flac", SampleRate: 8000},
	})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if len(f.resample.rates) != 1 || f.resample.rates[0] != 8000 {
		t.Errorf("resampler calls = %v, want [8000]", f.resample.rates)
	}
	if result.Format.SampleRate != 8000 {
		t.Errorf("Format.SampleRate = %d, want 8000", result.Format.SampleRate)
	}
}

func TestExtractService_SameRateSkipsResample(t *testing.T) {
	f := newFixture(10, "in.wav")

	if _, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "in.wav",
		Start:     0,
		End:       1,
		Output:    segment.OutputOptions{Path: "out.wav", SampleRate: 1000},
	}); err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if len(f.resample.rates) != 0 {
		t.Errorf("resampler called with %v, want no calls", f.resample.rates)
	}
}

func TestExtractService_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       ExtractInput
		setup       func(f *fixture)
		wantIs      error
		wantDecode  bool
		wantEncode  bool
		errContains string
	}{
		{
			name:        "missing input",
			input:       ExtractInput{InputPath: "nope.mp3", Start: 0, End: 1},
			wantIs:      segment.ErrNotFound,
			errContains: "nope.mp3",
		},
		{
			name:        "negative start",
			input:       ExtractInput{InputPath: "audio.mp3", Start: -1, End: 1},
			wantIs:      segment.ErrInvalidArgument,
			errContains: "non-negative",
		},
		{
			name:        "end not after start",
			input:       ExtractInput{InputPath: "audio.mp3", Start: 5, End: 5},
			wantIs:      segment.ErrInvalidArgument,
			errContains: "must be greater than start time",
		},
		{
			name:        "bad format override",
			input:       ExtractInput{InputPath: "audio.mp3", Start: 0, End: 1, Output: segment.OutputOptions{Format: "aac"}},
			wantIs:      segment.ErrInvalidArgument,
			errContains: "unsupported format",
		},
		{
			name:        "start beyond duration",
			input:       ExtractInput{InputPath: "audio.mp3", Start: 45, End: 50},
			wantIs:      segment.ErrInvalidArgument,
			errContains: "exceeds audio duration",
		},
		{
			name:  "decoder failure",
			input: ExtractInput{InputPath: "audio.mp3", Start: 0, End: 1},
			setup: func(f *fixture) {
				f.registry.decoders[segment.CodecMP3].err = errors.New("invalid frame header")
			},
			wantDecode:  true,
			errContains: "invalid frame header",
		},
		{
			name:  "no encoder for codec",
			input: ExtractInput{InputPath: "audio.mp3", Start: 0, End: 1},
			setup: func(f *fixture) {
				delete(f.registry.encoders, segment.CodecMP3)
			},
			wantEncode:  true,
			errContains: "no encoder available",
		},
		{
			name:  "encoder failure",
			input: ExtractInput{InputPath: "audio.mp3", Start: 0, End: 1, Output: segment.OutputOptions{Path: "out.flac"}},
			setup: func(f *fixture) {
				f.registry.encoders[segment.CodecFLAC].err = errors.New("disk full")
			},
			wantEncode:  true,
			errContains: "disk full",
		},
		{
			name:  "commit failure",
			input: ExtractInput{InputPath: "audio.mp3", Start: 0, End: 1, Output: segment.OutputOptions{Path: "out.wav"}},
			setup: func(f *fixture) {
				f.stager.commitErr = errors.New("permission denied")
			},
			wantEncode:  true,
			errContains: "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(30, "audio.mp3")
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.service.Extract(context.Background(), tt.input)
			if err == nil {
				t.Fatal("Extract() expected error, got nil")
			}

			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Extract() error = %v, want %v", err, tt.wantIs)
			}
			var de *segment.DecodeError
			if errors.As(err, &de) != tt.wantDecode {
				t.Errorf("Extract() error = %v, DecodeError = %v, want %v", err, !tt.wantDecode, tt.wantDecode)
			}
			var ee *segment.EncodeError
			if errors.As(err, &ee) != tt.wantEncode {
				t.Errorf("Extract() error = %v, EncodeError = %v, want %v", err, !tt.wantEncode, tt.wantEncode)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Extract() error = %v, want error containing %q", err, tt.errContains)
			}
			if len(f.stager.committed) != 0 {
				t.Errorf("output committed despite error: %v", f.stager.committed)
			}
		})
	}
}

func TestExtractService_EncodeFailureDiscardsStagedFile(t *testing.T) {
	f := newFixture(30, "audio.mp3")
	f.registry.encoders[segment.CodecWAV].err = errors.New("boom")

	_, err := f.service.Extract(context.Background(), ExtractInput{
		InputPath: "audio.mp3",
		Start:     0,
		End:       1,
		Output:    segment.OutputOptions{Path: "out.wav"},
	})
	if err == nil {
		t.Fatal("Extract() expected error, got nil")
	}

	if len(f.stager.discarded) != 1 || f.stager.discarded[0] != "out.wav.partial" {
		t.Errorf("discarded = %v, want [out.wav.partial]", f.stager.discarded)
	}
}

func TestExtractService_ValidationSkipsDecode(t *testing.T) {
	f := newFixture(30, "audio.mp3")

	f.service.Extract(context.Background(), ExtractInput{InputPath: "audio.mp3", Start: 3, End: 1})

	if got := f.registry.decoders[segment.CodecMP3].calls; len(got) != 0 {
		t.Errorf("decoder called %v on invalid input", got)
	}
}

func TestExtractService_NilProgress(t *testing.T) {
	f := newFixture(2, "a.wav")
	s := NewExtractService(f.registry, f.files, f.resample, f.stager, nil)

	if _, err := s.Extract(context.Background(), ExtractInput{InputPath: "a.wav", Start: 0, End: 1}); err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
}
