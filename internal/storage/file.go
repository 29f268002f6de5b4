package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileName is the results artifact written next to the process.
const DefaultFileName = "interview_results.json"

// FileStore keeps the artifact in one JSON file that is overwritten on every
// save.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path, or DefaultFileName when path
// is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Path returns the artifact location.
func (s *FileStore) Path() string { return s.path }

// Save overwrites the artifact.
func (s *FileStore) Save(_ context.Context, r *Results) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: create directory %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", s.path, err)
	}
	return nil
}

// Load reads the artifact back.
func (s *FileStore) Load(_ context.Context) (*Results, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read %s: %w", s.path, err)
	}
	return Decode(data)
}
