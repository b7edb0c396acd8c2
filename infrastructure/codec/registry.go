package codec

import (
	"fmt"

	"audioseg/domain/segment"
)

// Registry implements segment.CodecRegistry with lookup tables keyed by codec
type Registry struct {
	decoders map[segment.Codec]segment.Decoder
	encoders map[segment.Codec]segment.Encoder
}

// RegistryOption is a functional option for configuring Registry
type RegistryOption func(*Registry)

// WithDecoder registers or replaces the decoder for a codec
func WithDecoder(c segment.Codec, d segment.Decoder) RegistryOption {
	return func(r *Registry) {
		r.decoders[c] = d
	}
}

// WithEncoder registers or replaces the encoder for a codec
func WithEncoder(c segment.Codec, e segment.Encoder) RegistryOption {
	return func(r *Registry) {
		r.encoders[c] = e
	}
}

// NewRegistry creates a registry preloaded with the pure Go codecs:
// wav and flac in both directions, mp3 and ogg decode only. Options add
// the rest (generic decode, mp3 and ogg encode).
func NewRegistry(opts ...RegistryOption) *Registry {
	wav := NewWAV()
	fl := NewFLAC()

	r := &Registry{
		decoders: map[segment.Codec]segment.Decoder{
			segment.CodecMP3:  NewMP3(),
			segment.CodecWAV:  wav,
			segment.CodecOGG:  NewOGG(),
			segment.CodecFLAC: fl,
		},
		encoders: map[segment.Codec]segment.Encoder{
			segment.CodecWAV:  wav,
			segment.CodecFLAC: fl,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Decoder implements segment.CodecRegistry
func (r *Registry) Decoder(c segment.Codec) (segment.Decoder, error) {
	d, ok := r.decoders[c]
	if !ok {
		return nil, fmt.Errorf("no decoder available for %s", c)
	}
	return d, nil
}

// Encoder implements segment.CodecRegistry
func (r *Registry) Encoder(c segment.Codec) (segment.Encoder, error) {
	e, ok := r.encoders[c]
	if !ok {
		return nil, fmt.Errorf("no encoder available for %s", c)
	}
	return e, nil
}

// Ensure Registry implements segment.CodecRegistry
var _ segment.CodecRegistry = (*Registry)(nil)
