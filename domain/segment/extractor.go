package segment

import "context"

// Decoder decodes an entire audio file into memory
// This is a port that can be implemented by different infrastructure adapters
type Decoder interface {
	// Decode reads and decodes the file at path
	Decode(ctx context.Context, path string) (*AudioBuffer, error)
}

// Encoder encodes a buffer into a container and writes it to path
type Encoder interface {
	// Encode writes buf to path using the codec and bitrate in spec.
	// path may differ from spec.Path when output is staged.
	Encode(ctx context.Context, buf *AudioBuffer, spec OutputSpec, path string) error
}

// CodecRegistry resolves a Codec to its decoder and encoder
type CodecRegistry interface {
	Decoder(c Codec) (Decoder, error)
	Encoder(c Codec) (Encoder, error)
}

// Resampler converts a buffer to another sample rate
type Resampler interface {
	Resample(buf *AudioBuffer, sampleRate int) *AudioBuffer
}

// FileChecker defines the interface for checking file existence
// This is used to validate that source files exist before decoding
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// OutputStager writes output next to its final location and moves it into
// place only once it is complete
type OutputStager interface {
	// Stage returns a scratch path in target's directory
	Stage(target string) (string, error)
	// Commit atomically renames the scratch file to target
	Commit(staged, target string) error
	// Discard removes the scratch file, ignoring a missing file
	Discard(staged string) error
}
