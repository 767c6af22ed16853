package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/pteroai-go/internal/domain"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCache(t *testing.T, dir string) (*FileCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewFileCache(dir, WithClock(clock.Now)), clock
}

func TestFileCache_SetThenGet(t *testing.T) {
	c, _ := newTestCache(t, t.TempDir())

	if err := c.Set("request_abc", map[string]int{"n": 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, ok := c.Get("request_abc")
	if !ok {
		t.Fatal("expected hit")
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil || got["n"] != 1 {
		t.Errorf("got %s (%v)", raw, err)
	}
}

func TestFileCache_FreshnessWindow(t *testing.T) {
	dir := t.TempDir()
	c, clock := newTestCache(t, dir)

	if err := c.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	clock.t = clock.t.Add(24*time.Hour - time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry should still be fresh just inside the window")
	}

	clock.t = clock.t.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should be stale at exactly 24h")
	}

	entries := c.Entries()
	if len(entries) != 1 || entries[0].Fresh {
		t.Errorf("stale entry should remain stored: %+v", entries)
	}

	if err := c.Set("k", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, ok := c.Get("k")
	if !ok || string(raw) != `"v2"` {
		t.Errorf("overwrite should supersede stale entry, got %s %v", raw, ok)
	}
}

func TestFileCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	c, _ := newTestCache(t, dir)
	if err := c.Set("k", []string{"a", "b"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reloaded, _ := newTestCache(t, dir)
	raw, ok := reloaded.Get("k")
	if !ok || string(raw) != `["a","b"]` {
		t.Errorf("got %s %v", raw, ok)
	}
	before, after := c.Entries(), reloaded.Entries()
	if len(before) != 1 || len(after) != 1 || before[0].Size != after[0].Size {
		t.Errorf("entry size changed across reload: %v vs %v", before, after)
	}

	data, err := os.ReadFile(filepath.Join(dir, "context_cache.json"))
	if err != nil {
		t.Fatalf("read backing file: %v", err)
	}
	var onDisk map[string]struct {
		Data      json.RawMessage `json:"data"`
		Timestamp float64         `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("backing file is not a key map: %v", err)
	}
	if onDisk["k"].Timestamp == 0 {
		t.Error("timestamp missing on disk")
	}
}

func TestFileCache_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "context_cache.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestCache(t, dir)
	if len(c.Entries()) != 0 {
		t.Fatal("corrupt file should yield an empty cache")
	}
	if err := c.Set("k", 1); err != nil {
		t.Fatalf("Set after corrupt load: %v", err)
	}
	if _, ok := c.Get("k"); !ok {
		t.Error("cache should keep operating")
	}
}

func TestFileCache_PersistFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	// The cache directory path is a regular file, so every persist fails.
	c, _ := newTestCache(t, blocker)
	err := c.Set("k", "v")
	if !errors.Is(err, domain.ErrCachePersist) {
		t.Fatalf("expected ErrCachePersist, got %v", err)
	}
	if _, ok := c.Get("k"); !ok {
		t.Error("value should remain in memory after a failed persist")
	}
}

func TestFileCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(t, t.TempDir())
	_ = c.Set("a", 1)
	_ = c.Set("b", 2)

	if err := c.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(c.Entries()) != 0 {
		t.Error("clear left entries behind")
	}
}
