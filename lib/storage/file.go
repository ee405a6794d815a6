package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const snapshotExt = ".json"

// fileStorage stores one file per key inside a directory. A mutex serializes
// writers; readers only ever see complete files thanks to the rename step.
type fileStorage struct {
	opts Options
	dir  string
	mu   sync.Mutex
}

// NewFileStorage creates a file-backed storage rooted at dir. The directory is
// created if it does not exist.
func NewFileStorage(dir string, opts Options) (IStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &fileStorage{opts: opts, dir: dir}, nil
}

// pathFor maps a key to its snapshot file. Keys are restricted to a safe
// charset so they can never escape the data directory.
func (s *fileStorage) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\.") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.dir, key+snapshotExt), nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (s *fileStorage) Load(key string) ([]byte, bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	value, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *fileStorage) Save(key string, value []byte) error {
	if err := s.opts.checkQuota(value); err != nil {
		return err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file in the same directory, then rename over the target.
	// Rename is atomic on POSIX filesystems, so readers never see partial data.
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *fileStorage) Delete(key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *fileStorage) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, snapshotExt))
	}
	return keys, nil
}

func (s *fileStorage) Close() error {
	return nil
}
