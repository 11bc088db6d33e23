package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lpcfmt/internal/cache"
)

// snapshotName is the file inside the cache directory.
const snapshotName = "results.mp"

// DiskCache хранит снимок кэша результатов между запусками.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu   sync.Mutex
	path string
}

// OpenDiskCache places the snapshot under $XDG_CACHE_HOME/app (or
// ~/.cache/app).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app, snapshotName)), nil
}

// NewDiskCache uses the snapshot file at path.
func NewDiskCache(path string) *DiskCache {
	return &DiskCache{path: path}
}

// Path returns the snapshot file.
func (c *DiskCache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Load fills dst from the snapshot and returns the number of live entries.
// A missing snapshot loads nothing; one written by another schema is
// removed.
func (c *DiskCache) Load(dst *cache.Cache) (int, error) {
	if c == nil || dst == nil {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	snap, err := cache.DecodeSnapshot(f)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if errors.Is(err, cache.ErrSchemaMismatch) {
		return 0, os.Remove(c.path)
	}
	if err != nil {
		return 0, fmt.Errorf("driver: %s: %w", c.path, err)
	}
	return dst.Import(snap), nil
}

// Save writes src to a temp file next to the snapshot and renames it over.
func (c *DiskCache) Save(src *cache.Cache) (err error) {
	if c == nil || src == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = src.Export().Encode(f); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), c.path)
}

// Drop removes the snapshot.
func (c *DiskCache) Drop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
