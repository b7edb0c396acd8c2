package segment

import (
	"context"

	"audioseg/domain/segment"
)

// ProbeResult describes a decoded file
type ProbeResult struct {
	Path       string
	Codec      segment.Codec
	Format     segment.Format
	Frames     int
	DurationMs int64
}

// ProbeService reports the control data of an audio file
type ProbeService struct {
	codecs      segment.CodecRegistry
	fileChecker segment.FileChecker
}

// NewProbeService creates a new ProbeService
func NewProbeService(codecs segment.CodecRegistry, fileChecker segment.FileChecker) *ProbeService {
	return &ProbeService{
		codecs:      codecs,
		fileChecker: fileChecker,
	}
}

// Probe decodes path with the same dispatch as extraction
func (s *ProbeService) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if !s.fileChecker.Exists(path) {
		return nil, segment.NotFound(path)
	}

	c := segment.CodecForPath(path)
	dec, err := s.codecs.Decoder(c)
	if err != nil {
		return nil, &segment.DecodeError{Path: path, Err: err}
	}

	buf, err := dec.Decode(ctx, path)
	if err != nil {
		return nil, &segment.DecodeError{Path: path, Err: err}
	}

	return &ProbeResult{
		Path:       path,
		Codec:      c,
		Format:     buf.Format,
		Frames:     buf.Frames(),
		DurationMs: buf.DurationMs(),
	}, nil
}
