package storage

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// ErrNoState is returned by Load when no state file has been saved yet.
var ErrNoState = errors.New("no saved workspace state")

// StateStore reads and writes the locally persisted workspace document.
type StateStore struct {
	fs   hackpadfs.FS
	path string
}

// NewStateStore returns a store for the file at name within fs. name uses
// io/fs path syntax (slash separated, no leading slash).
func NewStateStore(fs hackpadfs.FS, name string) *StateStore {
	return &StateStore{fs: fs, path: name}
}

// NewOSStateStore returns a store for an operating system file path.
func NewOSStateStore(osPath string) (*StateStore, error) {
	abs, err := filepath.Abs(osPath)
	if err != nil {
		return nil, fmt.Errorf("resolving state path: %w", err)
	}
	// hackpadfs paths don't have a leading slash
	name := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	return NewStateStore(osfs.NewFS(), name), nil
}

// Path returns the store's file path within its file system.
func (s *StateStore) Path() string {
	return s.path
}

// Load returns the saved document, or ErrNoState if none exists.
func (s *StateStore) Load() ([]byte, error) {
	data, err := hackpadfs.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, hackpadfs.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	return data, nil
}

// Save replaces the saved document, creating parent directories as needed.
func (s *StateStore) Save(data []byte) error {
	if dir := path.Dir(s.path); dir != "." {
		if err := hackpadfs.MkdirAll(s.fs, dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}
	if err := hackpadfs.WriteFullFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}
