package ffmpeg

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"audioseg/domain/segment"
	"audioseg/infrastructure/codec"
)

// mockRunner records invocations and optionally writes the output file
type mockRunner struct {
	calls     [][]string
	err       error
	writeWAV  *segment.AudioBuffer // written to the last argument when set
	inputSeen *segment.AudioBuffer // wav read back from the -i argument
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.err != nil {
		return m.err
	}

	for i, a := range args {
		if a == "-i" && i+1 < len(args) && strings.HasSuffix(args[i+1], ".wav") {
			f, err := os.Open(args[i+1])
			if err != nil {
				return err
			}
			buf, err := codec.ReadWAV(f)
			f.Close()
			if err != nil {
				return err
			}
			m.inputSeen = buf
		}
	}

	out := args[len(args)-1]
	if m.writeWAV != nil {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		return codec.WriteWAV(f, m.writeWAV)
	}
	return os.WriteFile(out, []byte("encoded"), 0644)
}

func testBuffer() *segment.AudioBuffer {
	return &segment.AudioBuffer{
		Format:  segment.Format{SampleRate: 8000, Channels: 1, BitDepth: 16},
		Samples: []int32{0, 100, -100, 2000},
	}
}

func hasArgs(args []string, want ...string) bool {
	joined := " " + strings.Join(args, " ") + " "
	return strings.Contains(joined, " "+strings.Join(want, " ")+" ")
}

func TestDecoder_Decode(t *testing.T) {
	runner := &mockRunner{writeWAV: testBuffer()}
	d := NewDecoder(WithCommandRunner(runner), WithFFmpegPath("/opt/ffmpeg"), WithTempDir(t.TempDir()))

	got, err := d.Decode(context.Background(), "voice.m4a")
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("ffmpeg called %d times, want 1", len(runner.calls))
	}
	call := runner.calls[0]
	if call[0] != "/opt/ffmpeg" {
		t.Errorf("executable = %q, want /opt/ffmpeg", call[0])
	}
	if !hasArgs(call, "-i", "voice.m4a") || !hasArgs(call, "-acodec", "pcm_s16le") || !hasArgs(call, "-f", "wav") {
		t.Errorf("unexpected ffmpeg arguments: %v", call)
	}

	if got.Format != testBuffer().Format || got.Frames() != 4 {
		t.Errorf("Decode() = %v with %d frames", got.Format, got.Frames())
	}
}

func TestDecoder_RemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDecoder(WithCommandRunner(&mockRunner{writeWAV: testBuffer()}), WithTempDir(dir))

	if _, err := d.Decode(context.Background(), "in.aac"); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp dir not cleaned up: %v", entries)
	}
}

func TestDecoder_RunnerFailure(t *testing.T) {
	cause := errors.New("exit status 1")
	d := NewDecoder(WithCommandRunner(&mockRunner{err: cause}), WithTempDir(t.TempDir()))

	_, err := d.Decode(context.Background(), "broken.xyz")
	if !errors.Is(err, cause) {
		t.Errorf("Decode() error = %v, want wrapping %v", err, cause)
	}
	if !strings.Contains(err.Error(), "ffmpeg decode failed") {
		t.Errorf("Decode() error = %v", err)
	}
}

func TestNewEncoder(t *testing.T) {
	tests := []struct {
		codec   segment.Codec
		wantErr bool
	}{
		{segment.CodecMP3, false},
		{segment.CodecOGG, false},
		{segment.CodecWAV, true},
		{segment.CodecGeneric, true},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			_, err := NewEncoder(tt.codec)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEncoder(%s) error = %v, wantErr %v", tt.codec, err, tt.wantErr)
			}
		})
	}
}

func TestEncoder_Args(t *testing.T) {
	tests := []struct {
		codec segment.Codec
		want  [][]string
	}{
		{segment.CodecMP3, [][]string{{"-acodec", "libmp3lame"}, {"-f", "mp3"}, {"-b:a", "128k"}, {"-y", "out.mp3"}}},
		{segment.CodecOGG, [][]string{{"-acodec", "libvorbis"}, {"-f", "ogg"}, {"-b:a", "128k"}, {"-y", "out.mp3"}}},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			e, err := NewEncoder(tt.codec)
			if err != nil {
				t.Fatal(err)
			}
			args := e.Args("in.wav", segment.OutputSpec{Bitrate: "128k"}, "out.mp3")
			for _, w := range tt.want {
				if !hasArgs(args, w...) {
					t.Errorf("Args() = %v, missing %v", args, w)
				}
			}
		})
	}
}

func TestEncoder_Encode(t *testing.T) {
	dir := t.TempDir()
	runner := &mockRunner{}
	e, err := NewEncoder(segment.CodecMP3, WithCommandRunner(runner), WithTempDir(dir))
	if err != nil {
		t.Fatal(err)
	}

	out := dir + "/segment.mp3"
	spec := segment.OutputSpec{Path: out, Codec: segment.CodecMP3, Bitrate: "192k"}
	if err := e.Encode(context.Background(), testBuffer(), spec, out); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if runner.inputSeen == nil {
		t.Fatal("ffmpeg input was not a readable wav")
	}
	if runner.inputSeen.Frames() != 4 {
		t.Errorf("ffmpeg input frames = %d, want 4", runner.inputSeen.Frames())
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp wav not cleaned up: %v", entries)
	}
}

func TestEncoder_RunnerFailure(t *testing.T) {
	cause := errors.New("Unknown encoder 'libmp3lame'")
	e, _ := NewEncoder(segment.CodecMP3, WithCommandRunner(&mockRunner{err: cause}), WithTempDir(t.TempDir()))

	err := e.Encode(context.Background(), testBuffer(), segment.OutputSpec{Bitrate: "192k"}, "out.mp3")
	if !errors.Is(err, cause) {
		t.Errorf("Encode() error = %v, want wrapping %v", err, cause)
	}
}
