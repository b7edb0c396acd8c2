package segment

import (
	"path/filepath"
	"strings"
)

// Codec identifies an audio container/codec pair
type Codec string

const (
	CodecMP3  Codec = "mp3"
	CodecWAV  Codec = "wav"
	CodecOGG  Codec = "ogg"
	CodecFLAC Codec = "flac"

	// CodecGeneric is the fallback for unrecognized extensions. Decoding
	// auto-detects the container; it is never an encode target.
	CodecGeneric Codec = "generic"
)

// DefaultOutputCodec is used when neither an override nor a known output
// extension determines the codec
const DefaultOutputCodec = CodecMP3

// codecsByExtension maps a normalized extension (no dot, lower case) to its codec
var codecsByExtension = map[string]Codec{
	"mp3":  CodecMP3,
	"wav":  CodecWAV,
	"ogg":  CodecOGG,
	"flac": CodecFLAC,
}

// OutputCodecs lists the codecs accepted as an explicit format override
var OutputCodecs = []Codec{CodecMP3, CodecWAV, CodecOGG, CodecFLAC}

// CodecForPath returns the codec for a file path's extension, or
// CodecGeneric if the extension is unknown
func CodecForPath(path string) Codec {
	return CodecForExtension(filepath.Ext(path))
}

// CodecForExtension returns the codec for an extension with or without the
// leading dot, or CodecGeneric if it is unknown
func CodecForExtension(ext string) Codec {
	if c, ok := codecsByExtension[normalizeExtension(ext)]; ok {
		return c
	}
	return CodecGeneric
}

// ParseCodec parses an explicit format override
func ParseCodec(s string) (Codec, error) {
	c, ok := codecsByExtension[normalizeExtension(s)]
	if !ok {
		return "", invalidArgument("unsupported format %q (supported: mp3, wav, ogg, flac)", s)
	}
	return c, nil
}

// IsLossy returns true for codecs where a bitrate applies
func (c Codec) IsLossy() bool {
	return c == CodecMP3 || c == CodecOGG
}

// String returns the codec name
func (c Codec) String() string {
	return string(c)
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
