package segment

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the input file does not exist
	ErrNotFound = errors.New("input file not found")

	// ErrInvalidArgument is returned for bad time bounds or encode options
	ErrInvalidArgument = errors.New("invalid argument")
)

// DecodeError is returned when the input file cannot be decoded
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to load audio file %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when the segment cannot be encoded or written
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to save audio segment %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// NotFound wraps ErrNotFound with the missing path
func NotFound(path string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
