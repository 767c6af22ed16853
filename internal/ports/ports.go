// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The decision pipeline in the application layer depends only on these
// contracts. Adapters in the infrastructure layer implement them: oracle
// backends, the on-disk context cache, the knowledge store, history
// persistence and the terminal confirmer.
package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// Oracle is the external reasoning capability: prompt in, free text out.
// Implementations hold no conversation state between calls.
type Oracle interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// OracleRole selects the tuning used for a call site.
type OracleRole string

const (
	// OracleMain drives intent, file analysis, planning and alternatives.
	OracleMain OracleRole = "main"
	// OracleValidator drives deep validation at a lower temperature.
	OracleValidator OracleRole = "validator"
)

// OracleFactory builds a guarded oracle for a role.
type OracleFactory interface {
	ForRole(domain.Config, OracleRole) (Oracle, error)
}

// ContextCache is the durable, time-bounded key/value store in front of the oracle.
type ContextCache interface {
	// Get returns the stored JSON only while it is fresh.
	Get(key string) (json.RawMessage, bool)
	// Set persists before returning. A persist failure still updates memory.
	Set(key string, value interface{}) error
	Delete(key string) error
	Clear() error
	Entries() []domain.CacheEntryInfo
}

// StaticAnalyzer runs the deterministic checks over a proposed change.
type StaticAnalyzer interface {
	Analyze(filePath, oldCode, newCode string) domain.StaticReport
}

// KnowledgeExtractor produces a FileKnowledge record. Failures are carried in the record.
type KnowledgeExtractor interface {
	Analyze(ctx context.Context, path string) domain.FileKnowledge
}

// KnowledgeStore caches FileKnowledge per absolute path for the process lifetime,
// with at most one analysis in flight per path.
type KnowledgeStore interface {
	GetOrAnalyze(ctx context.Context, path string) domain.FileKnowledge
	Lookup(path string) (domain.FileKnowledge, bool)
	Snapshot() []domain.FileKnowledge
	Clear()
}

// HistoryRepository persists decision history beyond the process lifetime.
type HistoryRepository interface {
	Append(ctx context.Context, entry domain.DecisionHistoryEntry) error
	// List returns up to limit most recent entries, oldest first.
	List(ctx context.Context, limit int) ([]domain.DecisionHistoryEntry, error)
	Clear(ctx context.Context) error
}

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations read ~/.pteroai/config.json and write defaults when it is absent.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
	Save(context.Context, domain.Config) error
	Path() string
}

// SystemCollector snapshots the deployment the pipeline reasons about.
type SystemCollector interface {
	Collect(context.Context, domain.Config) (domain.SystemContext, error)
}

// Confirmer is asked by the gate when a decision needs a human answer.
// Implementations must not assume a terminal exists.
type Confirmer interface {
	Confirm(ctx context.Context, req domain.ConfirmationRequest) (domain.ConfirmChoice, error)
}

// FileStore is the read-only view of the filesystem.
// ReadFile errors wrap domain.ErrFileNotFound or domain.ErrReadFailed.
type FileStore interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
}

// Metrics records pipeline observations.
type Metrics interface {
	ObserveOracleCall(role, outcome string, elapsed time.Duration)
	IncDegradedStage(stage string)
	IncDecision(level string, cached bool)
	IncKnowledgeAnalysis(outcome string)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
