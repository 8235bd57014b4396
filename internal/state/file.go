package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// #region file-store
// FileStore keeps the snapshot in a JSON file. Saves write a temp file in the
// same directory and rename it over the target so readers never see a partial file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the snapshot file.
func (f *FileStore) Load(_ context.Context) (EngineState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return EngineState{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	return Unmarshal(data)
}

// Save replaces the snapshot file.
func (f *FileStore) Save(_ context.Context, s EngineState) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

// #endregion file-store
