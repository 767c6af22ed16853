package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/infrastructure/filestore"
)

const analysisJSON = `Here you go: {"purpose":"entry point","mainComponents":[],"keyFunctions":["main"],` +
	`"stateManagement":"none","dependencies":["os"],"complexityLevel":"low","safeEditZones":["main"],` +
	`"dangerZones":[],"recommendations":[],"understandingScore":0.9}`

type stubOracle struct {
	calls    atomic.Int32
	response string
	err      error
	release  chan struct{}
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Generate(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.response, s.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newExtractor(oracle *stubOracle) *Extractor {
	deps := ExtractorDeps{Files: filestore.NewLocal(), Now: func() time.Time { return time.Unix(1700000000, 0) }}
	if oracle != nil {
		deps.Oracle = oracle
	}
	return NewExtractor(deps)
}

func TestExtractorAnalyze(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.py", "import os\n\ndef main():\n    pass\n")
	oracle := &stubOracle{response: analysisJSON}

	record := newExtractor(oracle).Analyze(context.Background(), path)

	require.False(t, record.Failed())
	assert.Equal(t, "Python", record.Language)
	assert.Equal(t, 5, record.TotalLines)
	assert.Equal(t, "entry point", record.DeepAnalysis.Purpose)
	assert.InDelta(t, 0.9, record.DeepAnalysis.UnderstandingScore, 1e-9)
	assert.False(t, record.DeepAnalysis.Degraded)
	assert.Len(t, record.Structure.Functions, 1)
}

func TestExtractorDegradesOnOracleFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.py", "x = 1\n")

	tests := []struct {
		name   string
		oracle *stubOracle
	}{
		{"call error", &stubOracle{err: errors.New("quota exceeded")}},
		{"not json", &stubOracle{response: "I cannot help with that"}},
		{"score out of range", &stubOracle{response: `{"purpose":"x","understandingScore":4}`}},
		{"no oracle", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := newExtractor(tt.oracle).Analyze(context.Background(), path)
			require.False(t, record.Failed())
			assert.Equal(t, domain.DegradedAnalysis(), record.DeepAnalysis)
		})
	}
}

func TestExtractorMissingFile(t *testing.T) {
	oracle := &stubOracle{response: analysisJSON}
	record := newExtractor(oracle).Analyze(context.Background(), filepath.Join(t.TempDir(), "nope.py"))

	require.True(t, record.Failed())
	assert.Equal(t, domain.KnowledgeNotFound, record.Error.Kind)
	assert.ErrorIs(t, record.Error, domain.ErrFileNotFound)
	assert.Zero(t, oracle.calls.Load(), "no oracle call for a missing file")
}

func TestStoreAtMostOneAnalysisPerPath(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, t.TempDir(), "app.py", "x = 1\n")
	oracle := &stubOracle{response: analysisJSON, release: make(chan struct{})}
	store := NewStore(newExtractor(oracle))

	const callers = 16
	var wg sync.WaitGroup
	results := make([]domain.FileKnowledge, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.GetOrAnalyze(context.Background(), path)
		}(i)
	}

	// let every caller reach the store before the single analysis finishes
	time.Sleep(50 * time.Millisecond)
	close(oracle.release)
	wg.Wait()

	assert.Equal(t, int32(1), oracle.calls.Load())
	for _, r := range results {
		assert.Equal(t, "entry point", r.DeepAnalysis.Purpose)
	}

	// later callers reuse the record verbatim
	again := store.GetOrAnalyze(context.Background(), path)
	assert.Equal(t, results[0], again)
	assert.Equal(t, int32(1), oracle.calls.Load())
}

func TestStoreDoesNotCacheErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late.py")
	oracle := &stubOracle{response: analysisJSON}
	store := NewStore(newExtractor(oracle))

	first := store.GetOrAnalyze(context.Background(), path)
	require.True(t, first.Failed())
	_, cached := store.Lookup(path)
	assert.False(t, cached)

	writeFile(t, dir, "late.py", "x = 1\n")
	second := store.GetOrAnalyze(context.Background(), path)
	assert.False(t, second.Failed())
}

func TestStoreCachesDegradedAndClears(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.py", "x = 1\n")
	oracle := &stubOracle{err: errors.New("down")}
	store := NewStore(newExtractor(oracle))

	store.GetOrAnalyze(context.Background(), path)
	store.GetOrAnalyze(context.Background(), path)
	assert.Equal(t, int32(1), oracle.calls.Load(), "degraded records are still cached")
	assert.Len(t, store.Snapshot(), 1)

	store.Clear()
	store.GetOrAnalyze(context.Background(), path)
	assert.Equal(t, int32(2), oracle.calls.Load())
}

func TestStoreAnalysisSurvivesCallerCancellation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.py", "x = 1\n")
	oracle := &stubOracle{response: analysisJSON, release: make(chan struct{})}
	store := NewStore(newExtractor(oracle))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan domain.FileKnowledge)
	go func() { done <- store.GetOrAnalyze(ctx, path) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(oracle.release)
	record := <-done

	assert.False(t, record.DeepAnalysis.Degraded)
	cached, ok := store.Lookup(path)
	require.True(t, ok)
	assert.Equal(t, "entry point", cached.DeepAnalysis.Purpose)
}
