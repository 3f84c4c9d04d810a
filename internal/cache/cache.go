// Package cache stores estimator results keyed by the request that produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/op/go-logging"

	"github.com/luxfi/lwe"
)

var log = logging.MustGetLogger("lwe/cache")

// Common errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrCacheFull  = errors.New("cache capacity exceeded")
	ErrInvalidKey = errors.New("invalid cache key")
)

// Key identifies a cached estimate.
type Key string

// ComputeKey generates a key from a canonical request encoding.
func ComputeKey(data []byte) Key {
	hash := sha256.Sum256(data)
	return Key(hex.EncodeToString(hash[:]))
}

// KeyFor returns the key of an estimate of params in the given mode.
func KeyFor(params lwe.Parameters, mode lwe.Mode) (Key, error) {
	data, err := json.Marshal(struct {
		Params lwe.Parameters `json:"params"`
		Mode   lwe.Mode       `json:"mode"`
	}{params, mode})
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}
	return ComputeKey(data), nil
}

func (k Key) valid() bool {
	if len(k) != 2*sha256.Size {
		return false
	}
	_, err := hex.DecodeString(string(k))
	return err == nil
}

// Cache defines the interface for estimate storage.
type Cache interface {
	// Load retrieves the entry stored under key.
	Load(ctx context.Context, key Key) ([]byte, error)
	// Store saves an entry, replacing any previous one.
	Store(ctx context.Context, key Key, data []byte) error
	// Delete removes an entry.
	Delete(ctx context.Context, key Key) error
	// Close closes the cache.
	Close() error
}

// MemoryCache implements an in-memory cache.
type MemoryCache struct {
	mu       sync.RWMutex
	data     map[Key][]byte
	capacity int64
	size     int64
}

// NewMemoryCache creates a new in-memory cache holding up to capacityMB megabytes.
func NewMemoryCache(capacityMB int64) *MemoryCache {
	return &MemoryCache{
		data:     make(map[Key][]byte),
		capacity: capacityMB * 1024 * 1024,
	}
}

func (c *MemoryCache) Load(ctx context.Context, key Key) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, exists := c.data[key]
	if !exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (c *MemoryCache) Store(ctx context.Context, key Key, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.size - int64(len(c.data[key])) + int64(len(data))
	if size > c.capacity {
		return ErrCacheFull
	}

	c.data[key] = append([]byte(nil), data...)
	c.size = size
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, exists := c.data[key]
	if !exists {
		return ErrNotFound
	}

	c.size -= int64(len(data))
	delete(c.data, key)
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[Key][]byte)
	c.size = 0
	return nil
}

// FileCache implements a cache in a directory tree.
type FileCache struct {
	baseDir string
}

// NewFileCache creates a file cache rooted at baseDir.
func NewFileCache(baseDir string) (*FileCache, error) {
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{baseDir: baseDir}, nil
}

// DefaultDir returns the per-user cache directory for estimates.
func DefaultDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lwe-estimate")
}

func (c *FileCache) path(key Key) (string, error) {
	if !key.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	k := string(key)
	// Shard by first 2 chars to avoid too many files in one directory.
	return filepath.Join(c.baseDir, k[:2], k+".json"), nil
}

func (c *FileCache) Load(ctx context.Context, key Key) ([]byte, error) {
	path, err := c.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (c *FileCache) Store(ctx context.Context, key Key, data []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create shard dir: %w", err)
	}

	// Write atomically via temp file.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (c *FileCache) Delete(ctx context.Context, key Key) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (c *FileCache) Close() error {
	return nil
}
