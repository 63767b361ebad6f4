package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fairfund/fairfund/internal/fileutil"
)

const (
	// cacheFilePermissions is the permission mode for cache files.
	cacheFilePermissions = 0o640

	// cacheDirPermissions is the permission mode for cache directories.
	cacheDirPermissions = 0o750
)

// ErrCorruptCache indicates the cache file is malformed JSON.
var ErrCorruptCache = errors.New("cache file is corrupted")

// FileStorage persists a balance cache on the filesystem.
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-based cache store.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Save writes the cache to disk atomically.
func (s *FileStorage) Save(c *BalanceCache) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, cacheDirPermissions); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if err := fileutil.WriteAtomic(s.path, data, cacheFilePermissions); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Load reads the cache from disk. A missing file yields an empty cache; a
// corrupt file is reported so the caller can decide to discard it.
func (s *FileStorage) Load() (*BalanceCache, error) {
	// #nosec G304 -- cache path is derived from the configured home directory
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	return c, nil
}
