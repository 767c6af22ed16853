package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/pkg/filesystem"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// storedEntry is the on-disk shape: {"data": ..., "timestamp": <unix seconds>}.
type storedEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
}

// FileCache is the context cache backed by a single JSON file that is rewritten
// in full on every Set.
type FileCache struct {
	path    string
	window  time.Duration
	now     func() time.Time
	logger  ports.Logger
	mu      sync.RWMutex
	entries map[string]storedEntry
}

// Option customises a FileCache.
type Option func(*FileCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *FileCache) { c.now = now }
}

// WithWindow overrides the freshness window.
func WithWindow(window time.Duration) Option {
	return func(c *FileCache) { c.window = window }
}

// WithLogger attaches a logger for load and persist problems.
func WithLogger(logger ports.Logger) Option {
	return func(c *FileCache) { c.logger = logger }
}

// NewFileCache loads <dir>/context_cache.json. A missing or malformed file yields an empty cache.
func NewFileCache(dir string, opts ...Option) *FileCache {
	c := &FileCache{
		path:    filepath.Join(dir, domain.CacheFileName),
		window:  domain.CacheFreshnessWindow,
		now:     time.Now,
		entries: make(map[string]storedEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.load()
	return c
}

func (c *FileCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.warn("context cache unreadable, starting empty", err)
		}
		return
	}
	var entries map[string]storedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.warn("context cache malformed, starting empty", err)
		return
	}
	// the file is indented, so stored values come back with whitespace
	for key, entry := range entries {
		var compact bytes.Buffer
		if err := json.Compact(&compact, entry.Data); err != nil {
			c.warn("context cache entry malformed, skipping "+key, err)
			continue
		}
		entry.Data = compact.Bytes()
		c.entries[key] = entry
	}
}

// Get returns the stored value only while it is younger than the freshness window.
// Stale entries are ignored, not removed.
func (c *FileCache) Get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.fresh(entry) {
		return nil, false
	}
	return entry.Data, true
}

// Set stores value and rewrites the backing file before returning. On a persist
// failure the value stays available in memory and the error wraps domain.ErrCachePersist.
func (c *FileCache) Set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = storedEntry{Data: data, Timestamp: unixSeconds(c.now())}
	return c.persistLocked()
}

// Delete removes a single key.
func (c *FileCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return nil
	}
	delete(c.entries, key)
	return c.persistLocked()
}

// Clear removes all cached entries.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]storedEntry)
	return c.persistLocked()
}

// Entries lists stored keys sorted by key, stale ones included.
func (c *FileCache) Entries() []domain.CacheEntryInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	infos := make([]domain.CacheEntryInfo, 0, len(c.entries))
	for key, entry := range c.entries {
		infos = append(infos, domain.CacheEntryInfo{
			Key:       key,
			Timestamp: int64(entry.Timestamp),
			Fresh:     c.fresh(entry),
			Size:      len(entry.Data),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Path exposes the backing file path.
func (c *FileCache) Path() string {
	return c.path
}

func (c *FileCache) fresh(entry storedEntry) bool {
	age := c.now().Sub(fromUnixSeconds(entry.Timestamp))
	return age < c.window
}

func (c *FileCache) persistLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode context cache: %v: %w", err, domain.ErrCachePersist)
	}
	if err := filesystem.EnsureDir(filepath.Dir(c.path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create cache dir: %v: %w", err, domain.ErrCachePersist)
	}
	if err := filesystem.WriteFileAtomic(c.path, data, domain.SecureFilePermissions); err != nil {
		c.warn("context cache persist failed, keeping in memory", err)
		return fmt.Errorf("write %s: %v: %w", c.path, err, domain.ErrCachePersist)
	}
	return nil
}

func (c *FileCache) warn(msg string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, map[string]interface{}{"path": c.path, "error": err.Error()})
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

var _ ports.ContextCache = (*FileCache)(nil)
