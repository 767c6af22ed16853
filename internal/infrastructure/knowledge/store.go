package knowledge

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Store keeps one FileKnowledge per absolute path for the process lifetime.
// Concurrent misses for the same path share a single analysis.
type Store struct {
	extractor ports.KnowledgeExtractor
	flight    singleflight.Group

	mu      sync.RWMutex
	records map[string]domain.FileKnowledge
}

// NewStore wraps an extractor.
func NewStore(extractor ports.KnowledgeExtractor) *Store {
	return &Store{
		extractor: extractor,
		records:   make(map[string]domain.FileKnowledge),
	}
}

// GetOrAnalyze returns the cached record or runs exactly one analysis for the path.
// Error records are returned but not cached, so a file that appears later is picked up.
// The analysis outlives the caller's cancellation; a request abandoned mid-flight
// leaves a usable record for the next caller.
func (s *Store) GetOrAnalyze(ctx context.Context, path string) domain.FileKnowledge {
	key := absolute(path)
	if record, ok := s.Lookup(key); ok {
		return record
	}

	shared := context.WithoutCancel(ctx)
	v, _, _ := s.flight.Do(key, func() (interface{}, error) {
		if record, ok := s.Lookup(key); ok {
			return record, nil
		}
		record := s.extractor.Analyze(shared, key)
		if !record.Failed() {
			s.mu.Lock()
			s.records[key] = record
			s.mu.Unlock()
		}
		return record, nil
	})
	return v.(domain.FileKnowledge)
}

// Lookup returns a cached record without analyzing.
func (s *Store) Lookup(path string) (domain.FileKnowledge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[absolute(path)]
	return record, ok
}

// Snapshot returns every cached record ordered by path.
func (s *Store) Snapshot() []domain.FileKnowledge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FileKnowledge, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Clear drops every cached record; the next reference re-analyzes.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.FileKnowledge)
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

var _ ports.KnowledgeStore = (*Store)(nil)
