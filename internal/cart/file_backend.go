package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidSessionID reports whether id is safe to use as a storage key on every
// backend, including as a file name.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// FileBackend writes one JSON file per session under Dir.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("cart file dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart dir %q: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) Get(ctx context.Context, sessionID string) ([]byte, error) {
	path, err := f.path(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cart snapshot: %w", err)
	}
	return data, nil
}

// Put replaces the session file atomically via a temp file in the same dir.
func (f *FileBackend) Put(ctx context.Context, sessionID string, data []byte) error {
	path, err := f.path(sessionID)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, "."+sessionID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete(ctx context.Context, sessionID string) error {
	path, err := f.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

func (f *FileBackend) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("stat cart dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cart dir %q is not a directory", f.dir)
	}
	return nil
}

func (f *FileBackend) path(sessionID string) (string, error) {
	if !ValidSessionID(sessionID) {
		return "", fmt.Errorf("invalid cart session id %q", sessionID)
	}
	return filepath.Join(f.dir, sessionID+".json"), nil
}
