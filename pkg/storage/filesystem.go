package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const defaultBaseDir = "./exports"

// LocalStorage keeps generated export files on the local filesystem,
// rooted at a single base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = defaultBaseDir
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base dir %s: %w", baseDir, err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save writes data under the base directory and returns the relative name
// callers should store as the file reference.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	target := s.Path(filename)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("storage: prepare dir for %s: %w", filename, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", filename, err)
	}
	return filename, nil
}

// Open returns a read handle for a previously saved file.
func (s *LocalStorage) Open(filename string) (*os.File, error) {
	f, err := os.Open(s.Path(filename))
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", filename, err)
	}
	return f, nil
}

// Delete removes a file. Missing files are not an error.
func (s *LocalStorage) Delete(filename string) error {
	err := os.Remove(s.Path(filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", filename, err)
	}
	return nil
}

// CleanupOlderThan deletes every file whose modification time is older than
// ttl and reports the relative names it removed.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	var removed []string

	walk := func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil || entry.IsDir() {
			return walkErr
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		if rel, err := filepath.Rel(s.baseDir, path); err == nil {
			removed = append(removed, rel)
		} else {
			removed = append(removed, path)
		}
		return nil
	}

	if err := filepath.WalkDir(s.baseDir, walk); err != nil {
		return nil, fmt.Errorf("storage: cleanup: %w", err)
	}
	return removed, nil
}

// Path resolves a stored name to its absolute location on disk.
func (s *LocalStorage) Path(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
