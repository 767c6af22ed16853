package knowledge

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/pkg/oraclejson"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Extractor builds FileKnowledge records: structure by line scanning plus one
// oracle deep-read per file.
type Extractor struct {
	files     ports.FileStore
	oracle    ports.Oracle
	logger    ports.Logger
	metrics   ports.Metrics
	lineLimit int
	now       func() time.Time
}

// ExtractorDeps groups the extractor's collaborators.
type ExtractorDeps struct {
	Files     ports.FileStore
	Oracle    ports.Oracle
	Logger    ports.Logger
	Metrics   ports.Metrics
	LineLimit int
	Now       func() time.Time
}

// NewExtractor wires an extractor. Oracle may be nil, in which case every
// analysis is degraded.
func NewExtractor(deps ExtractorDeps) *Extractor {
	e := &Extractor{
		files:     deps.Files,
		oracle:    deps.Oracle,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		lineLimit: deps.LineLimit,
		now:       deps.Now,
	}
	if e.lineLimit <= 0 {
		e.lineLimit = domain.DefaultPromptLineLimit
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Analyze implements ports.KnowledgeExtractor. It never returns an error: read
// failures are carried in the record and oracle failures degrade the analysis.
func (e *Extractor) Analyze(ctx context.Context, path string) domain.FileKnowledge {
	record := domain.FileKnowledge{
		Path:      path,
		Language:  DetectLanguage(path),
		Timestamp: e.now(),
	}

	data, err := e.files.ReadFile(path)
	if err != nil {
		kind := domain.KnowledgeReadError
		if errors.Is(err, domain.ErrFileNotFound) {
			kind = domain.KnowledgeNotFound
		}
		record.Error = &domain.KnowledgeError{Kind: kind, Message: err.Error()}
		e.observe(string(kind))
		return record
	}

	content := string(data)
	lines := strings.Split(content, "\n")
	record.TotalLines = len(lines)
	record.Structure = ScanStructure(content, record.Language)
	record.DeepAnalysis = e.deepRead(ctx, path, record.Language, lines, record.Structure)
	if record.DeepAnalysis.Degraded {
		e.observe("degraded")
	} else {
		e.observe("ok")
	}
	return record
}

func (e *Extractor) deepRead(ctx context.Context, path, language string, lines []string, s domain.FileStructure) domain.DeepAnalysis {
	if e.oracle == nil {
		e.warn(path, domain.ErrOracleUnavailable)
		return domain.DegradedAnalysis()
	}
	prompt, err := renderDeepReadPrompt(path, language, lines, e.lineLimit, s)
	if err != nil {
		e.warn(path, err)
		return domain.DegradedAnalysis()
	}
	raw, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		e.warn(path, err)
		return domain.DegradedAnalysis()
	}
	analysis, err := oraclejson.Decode[domain.DeepAnalysis](raw)
	if err != nil {
		e.warn(path, err)
		return domain.DegradedAnalysis()
	}
	analysis.Degraded = false
	return analysis
}

func (e *Extractor) warn(path string, err error) {
	if e.metrics != nil {
		e.metrics.IncDegradedStage("file_knowledge")
	}
	if e.logger == nil {
		return
	}
	e.logger.Warn("file analysis degraded", map[string]interface{}{
		"stage": "file_knowledge",
		"path":  path,
		"error": err.Error(),
	})
}

func (e *Extractor) observe(outcome string) {
	if e.metrics != nil {
		e.metrics.IncKnowledgeAnalysis(outcome)
	}
}

var _ ports.KnowledgeExtractor = (*Extractor)(nil)
