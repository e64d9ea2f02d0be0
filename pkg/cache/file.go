package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

// DefaultTTL is used by Set when no WithDefaultTTL option is given.
const DefaultTTL = 7 * 24 * time.Hour

type options struct {
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a durable cache.
type Option func(*options)

// WithDefaultTTL sets the TTL used by Set. Zero means entries never expire.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) { o.defaultTTL = ttl }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{defaultTTL: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FileCache stores one JSON file per key under a directory.
//
// Files are sharded by the first two hex digits of the key's xxhash. Every
// write goes to a temporary file in the shard directory which is then renamed
// into place, so concurrent readers (including other processes) observe either
// the old or the new entry, never a partial one. No locking is performed; the
// last rename wins.
type FileCache struct {
	dir string
	options

	// rename is os.Rename outside of tests.
	rename func(oldpath, newpath string) error
}

var _ Cache = (*FileCache)(nil)

// NewFileCache returns a cache rooted at dir, creating it if needed.
func NewFileCache(dir string, opts ...Option) (*FileCache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, iconerrors.Newf("cache.NewFileCache", iconerrors.KindStorage, dir, "directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, iconerrors.New("cache.NewFileCache", iconerrors.KindStorage, dir, err)
	}
	return &FileCache{
		dir:     dir,
		options: buildOptions(opts),
		rename:  os.Rename,
	}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) path(key string) string {
	name := fmt.Sprintf("%016x", xxhash.Sum64String(key))
	return filepath.Join(c.dir, name[:2], name+".json")
}

// Get implements Cache.
func (c *FileCache) Get(key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	path := c.path(key)
	e, err := readEntry(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		if errors.Is(err, errCorrupt) {
			_ = os.Remove(path)
			return nil, false, nil
		}
		return nil, false, iconerrors.New("cache.Get", iconerrors.KindStorage, key, err)
	}
	if e.Key != key {
		// Hash collision; the slot belongs to another key.
		return nil, false, nil
	}
	if e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Value, true, nil
}

// Set implements Cache.
func (c *FileCache) Set(key string, value []byte) error {
	return c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL implements Cache.
func (c *FileCache) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl < 0 {
		return c.Delete(key)
	}

	data, err := json.Marshal(newEntry(key, value, ttl, c.now()))
	if err != nil {
		return iconerrors.New("cache.Set", iconerrors.KindStorage, key, err)
	}
	if err := c.writeAtomic(c.path(key), data); err != nil {
		return iconerrors.New("cache.Set", iconerrors.KindStorage, key, err)
	}
	return nil
}

// writeAtomic writes data to a temp file next to path, then renames it.
func (c *FileCache) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := c.rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Delete implements Cache.
func (c *FileCache) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return iconerrors.New("cache.Delete", iconerrors.KindStorage, key, err)
	}
	return nil
}

// Has implements Cache.
func (c *FileCache) Has(key string) bool {
	_, ok, err := c.Get(key)
	return err == nil && ok
}

// Clear implements Cache. The cache directory itself is kept.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return iconerrors.New("cache.Clear", iconerrors.KindStorage, c.dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return iconerrors.New("cache.Clear", iconerrors.KindStorage, c.dir, err)
		}
	}
	return nil
}

// Stats describes what is on disk.
type Stats struct {
	Entries int
	Bytes   int64
}

// Stats counts entry files and their total size. Expired entries that have
// not been read since expiring are included.
func (c *FileCache) Stats() (Stats, error) {
	var s Stats
	err := c.walk(func(path string, info fs.FileInfo) error {
		s.Entries++
		s.Bytes += info.Size()
		return nil
	})
	return s, err
}

// Prune deletes expired and unreadable entries and returns how many it removed.
func (c *FileCache) Prune() (int, error) {
	now := c.now()
	removed := 0
	err := c.walk(func(path string, _ fs.FileInfo) error {
		e, err := readEntry(path)
		if err != nil && !errors.Is(err, errCorrupt) {
			return nil
		}
		if err == nil && !e.expired(now) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

func (c *FileCache) walk(fn func(path string, info fs.FileInfo) error) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		return fn(path, info)
	})
	if err != nil {
		return iconerrors.New("cache.walk", iconerrors.KindStorage, c.dir, err)
	}
	return nil
}

var errCorrupt = errors.New("corrupt cache entry")

func readEntry(path string) (entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	return e, nil
}
