package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// SQLiteStore persists decision history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the history database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Open returns the SQLite store, falling back to a JSONL file next to it when
// the database cannot be opened.
func Open(path string, logger ports.Logger) ports.HistoryRepository {
	store, err := NewSQLiteStore(path)
	if err == nil {
		return store
	}
	fallback := NewFileStore(jsonlPath(path))
	if logger != nil {
		logger.Warn("sqlite history unavailable, using jsonl", map[string]interface{}{
			"path":  fallback.Path(),
			"error": err.Error(),
		})
	}
	return fallback
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS decisions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		request TEXT NOT NULL,
		action TEXT,
		security_level TEXT,
		decision TEXT NOT NULL,
		analyzed_files TEXT NOT NULL
	);`)
	return err
}

// Append inserts a new entry.
func (s *SQLiteStore) Append(ctx context.Context, entry domain.DecisionHistoryEntry) error {
	entry = prepare(entry)
	decision, err := json.Marshal(entry.Decision)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	files, err := json.Marshal(entry.AnalyzedFiles)
	if err != nil {
		return fmt.Errorf("encode analyzed files: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO decisions
		(id, timestamp, request, action, security_level, decision, analyzed_files)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.RFC3339Nano),
		entry.Request,
		entry.Decision.Action,
		entry.Decision.Validation.SecurityLevel.String(),
		string(decision),
		string(files),
	)
	return err
}

// List returns up to limit most recent entries, oldest first. limit <= 0 means all.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.DecisionHistoryEntry, error) {
	var args []interface{}
	if limit > 0 {
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, request, decision, analyzed_files FROM (
		SELECT seq, id, timestamp, request, decision, analyzed_files FROM decisions ORDER BY seq DESC`+limitClause(limit)+`
	) ORDER BY seq ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.DecisionHistoryEntry
	for rows.Next() {
		var (
			entry               domain.DecisionHistoryEntry
			ts, decision, files string
		)
		if err := rows.Scan(&entry.ID, &ts, &entry.Request, &decision, &files); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Timestamp = t
		}
		if err := json.Unmarshal([]byte(decision), &entry.Decision); err != nil {
			return nil, fmt.Errorf("decode decision %s: %w", entry.ID, err)
		}
		if err := json.Unmarshal([]byte(files), &entry.AnalyzedFiles); err != nil {
			return nil, fmt.Errorf("decode analyzed files %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM decisions")
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func limitClause(limit int) string {
	if limit > 0 {
		return " LIMIT ?"
	}
	return ""
}

func prepare(entry domain.DecisionHistoryEntry) domain.DecisionHistoryEntry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.AnalyzedFiles == nil {
		entry.AnalyzedFiles = []string{}
	}
	entry.Decision = entry.Decision.Normalize()
	return entry
}

func jsonlPath(dbPath string) string {
	ext := filepath.Ext(dbPath)
	return dbPath[:len(dbPath)-len(ext)] + ".jsonl"
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
