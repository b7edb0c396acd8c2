package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"audioseg/domain/segment"
)

// Stager implements segment.OutputStager with a temporary file in the
// target directory followed by a rename
type Stager struct{}

// NewStager creates a new output stager
func NewStager() *Stager {
	return &Stager{}
}

// Stage creates an empty scratch file next to target. The scratch name
// keeps target's extension so encoders that infer containers still work.
func (s *Stager) Stage(target string) (string, error) {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)

	f, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, ext)+".*.partial"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary output file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to create temporary output file: %w", err)
	}
	return name, nil
}

// Commit renames the staged file onto target, replacing any existing file
func (s *Stager) Commit(staged, target string) error {
	if err := os.Chmod(staged, 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(staged, target); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Discard removes the staged file
func (s *Stager) Discard(staged string) error {
	if err := os.Remove(staged); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove temporary output file: %w", err)
	}
	return nil
}

// Ensure Stager implements segment.OutputStager
var _ segment.OutputStager = (*Stager)(nil)
