// Package decision turns a free-text request into a validated AIDecision.
//
// The pipeline is sequential per request: intent, target files, file
// knowledge, context analysis, plan, plan validation, alternatives. Every
// oracle-backed stage falls back to a fixed default when the oracle fails, so
// an outage lowers decision quality but never aborts a request. Finished
// decisions are cached by exact request text and appended to history.
package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/pteroai-go/internal/application/validation"
	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/pkg/logger"
	"github.com/doeshing/pteroai-go/internal/pkg/oraclejson"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Stage names used in DegradedStages, logs and metrics.
const (
	StageIntent         = "intent"
	StageFileKnowledge  = "file_knowledge"
	StagePlan           = "plan"
	StagePlanValidation = "plan_validation"
	StageAlternatives   = "alternatives"
)

// PlanValidator scores an execution plan.
type PlanValidator interface {
	ValidatePlan(ctx context.Context, steps []string, system domain.SystemContext) validation.Report
}

// Deps wires an Engine. Cache, Knowledge, Validator and Files are required.
type Deps struct {
	Config    domain.Config
	Oracle    ports.Oracle
	Cache     ports.ContextCache
	Knowledge ports.KnowledgeStore
	Validator PlanValidator
	Files     ports.FileStore
	History   ports.HistoryRepository
	Logger    ports.Logger
	Metrics   ports.Metrics
	Now       func() time.Time
}

// Engine owns the per-process decision state: knowledge store and history.
type Engine struct {
	cfg       domain.Config
	oracle    ports.Oracle
	cache     ports.ContextCache
	knowledge ports.KnowledgeStore
	validator PlanValidator
	files     ports.FileStore
	repo      ports.HistoryRepository
	logger    ports.Logger
	metrics   ports.Metrics
	now       func() time.Time

	mu      sync.Mutex
	history []domain.DecisionHistoryEntry
}

// NewEngine builds an Engine.
func NewEngine(deps Deps) *Engine {
	e := &Engine{
		cfg:       deps.Config.Clone(),
		oracle:    deps.Oracle,
		cache:     deps.Cache,
		knowledge: deps.Knowledge,
		validator: deps.Validator,
		files:     deps.Files,
		repo:      deps.History,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		now:       deps.Now,
	}
	if e.logger == nil {
		e.logger = logger.Nop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Decide runs the pipeline for request against the system snapshot.
//
// A fresh cached decision for the identical text is returned without any oracle
// call. If ctx is done at a stage boundary the request is abandoned: the error
// wraps domain.ErrRequestAbandoned and nothing is cached or recorded. A cache
// write failure still returns the decision, with an error wrapping
// domain.ErrCachePersist.
func (e *Engine) Decide(ctx context.Context, request string, system domain.SystemContext) (domain.AIDecision, error) {
	key := RequestKey(request)
	if decision, ok := e.cached(key); ok {
		e.countDecision(decision, true)
		e.logger.Debug("decision served from cache", map[string]interface{}{"key": key})
		return decision, nil
	}

	run := &pipeline{engine: e, request: request, system: system}
	steps := []func(context.Context){
		run.classifyIntent,
		run.resolveTargets,
		run.gatherKnowledge,
		run.analyzeContext,
		run.draftPlan,
		run.validatePlan,
		run.suggestAlternatives,
	}
	for _, step := range steps {
		if err := abandoned(ctx); err != nil {
			return domain.AIDecision{}, err
		}
		step(ctx)
	}
	if err := abandoned(ctx); err != nil {
		return domain.AIDecision{}, err
	}

	decision := run.assemble()
	persistErr := e.cache.Set(key, decision)
	e.record(ctx, domain.DecisionHistoryEntry{
		ID:            uuid.NewString(),
		Timestamp:     e.now(),
		Request:       request,
		Decision:      decision,
		AnalyzedFiles: run.targets,
	})
	e.countDecision(decision, false)

	if persistErr != nil {
		e.logger.Warn("decision not persisted to cache", map[string]interface{}{
			"key":   key,
			"error": persistErr.Error(),
		})
		return decision, fmt.Errorf("cache decision: %w", persistErr)
	}
	return decision, nil
}

// GetHistory returns up to limit most recent entries, most recent last. limit <= 0 returns all.
func (e *Engine) GetHistory(limit int) []domain.DecisionHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := 0
	if limit > 0 && len(e.history) > limit {
		start = len(e.history) - limit
	}
	out := make([]domain.DecisionHistoryEntry, len(e.history)-start)
	copy(out, e.history[start:])
	return out
}

// Config returns a snapshot of the engine's configuration.
func (e *Engine) Config() domain.Config {
	return e.cfg.Clone()
}

// Knowledge returns every file analyzed so far.
func (e *Engine) Knowledge() []domain.FileKnowledge {
	return e.knowledge.Snapshot()
}

// ClearKnowledge forgets all file knowledge; the next reference re-analyzes.
func (e *Engine) ClearKnowledge() {
	e.knowledge.Clear()
}

func (e *Engine) cached(key string) (domain.AIDecision, bool) {
	raw, ok := e.cache.Get(key)
	if !ok {
		return domain.AIDecision{}, false
	}
	var decision domain.AIDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		e.logger.Warn("cached decision unreadable", map[string]interface{}{"key": key, "error": err.Error()})
		return domain.AIDecision{}, false
	}
	return decision.Normalize(), true
}

func (e *Engine) record(ctx context.Context, entry domain.DecisionHistoryEntry) {
	e.mu.Lock()
	e.history = append(e.history, entry)
	e.mu.Unlock()

	if e.repo == nil {
		return
	}
	if err := e.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		e.logger.Warn("history entry not persisted", map[string]interface{}{"id": entry.ID, "error": err.Error()})
	}
}

func (e *Engine) countDecision(decision domain.AIDecision, cached bool) {
	if e.metrics != nil {
		e.metrics.IncDecision(decision.Validation.SecurityLevel.String(), cached)
	}
}

func (e *Engine) degrade(stage string, err error, fields map[string]interface{}) {
	if e.metrics != nil {
		e.metrics.IncDegradedStage(stage)
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["stage"] = stage
	if err != nil {
		fields["error"] = err.Error()
	}
	e.logger.Warn("stage degraded", fields)
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	if e.oracle == nil {
		return "", domain.ErrOracleUnavailable
	}
	return e.oracle.Generate(ctx, prompt)
}

func abandoned(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRequestAbandoned, err)
	}
	return nil
}

// pipeline carries one request's intermediate results between stages.
type pipeline struct {
	engine  *Engine
	request string
	system  domain.SystemContext

	intent       domain.Intent
	targets      []string
	knowledge    []domain.FileKnowledge
	analysis     domain.ContextAnalysis
	plan         []string
	validation   domain.ValidationResult
	alternatives []string
	degraded     []string
}

func (p *pipeline) markDegraded(stage string) {
	for _, existing := range p.degraded {
		if existing == stage {
			return
		}
	}
	p.degraded = append(p.degraded, stage)
}

func (p *pipeline) classifyIntent(ctx context.Context) {
	p.intent = domain.DefaultIntent()
	prompt, err := renderIntentPrompt(p.request)
	if err == nil {
		var raw string
		if raw, err = p.engine.generate(ctx, prompt); err == nil {
			var intent domain.Intent
			if intent, err = oraclejson.Decode[domain.Intent](raw); err == nil {
				if intent.RequiresFiles == nil {
					intent.RequiresFiles = []string{}
				}
				p.intent = intent
				return
			}
		}
	}
	p.markDegraded(StageIntent)
	p.engine.degrade(StageIntent, err, nil)
}

func (p *pipeline) resolveTargets(context.Context) {
	cfg := p.engine.cfg
	p.targets = ResolveTargets(cfg.PteroPath, cfg.GetCandidateRoots(), ExtractMentions(p.request), p.engine.files.Exists)
	if len(p.targets) == 0 && p.intent.Target != "" {
		p.engine.logger.Info("no target file resolved", map[string]interface{}{"intent_target": p.intent.Target})
	}
}

func (p *pipeline) gatherKnowledge(ctx context.Context) {
	p.knowledge = make([]domain.FileKnowledge, 0, len(p.targets))
	for _, path := range p.targets {
		record := p.engine.knowledge.GetOrAnalyze(ctx, path)
		if record.Failed() {
			p.engine.logger.Warn("file knowledge unavailable", map[string]interface{}{
				"path":  path,
				"error": record.Error.Error(),
			})
			continue
		}
		if record.DeepAnalysis.Degraded {
			p.markDegraded(StageFileKnowledge)
		}
		p.knowledge = append(p.knowledge, record)
	}
}

func (p *pipeline) analyzeContext(context.Context) {
	p.analysis = AnalyzeContext(p.request, p.system)
}

func (p *pipeline) draftPlan(ctx context.Context) {
	p.plan = domain.FallbackPlan()
	prompt, err := renderPlanPrompt(p.request, p.intent, p.knowledge, p.analysis)
	if err == nil {
		var raw string
		if raw, err = p.engine.generate(ctx, prompt); err == nil {
			var draft domain.PlanDraft
			if draft, err = oraclejson.Decode[domain.PlanDraft](raw); err == nil {
				steps := make([]string, 0, len(draft.Steps))
				for _, step := range draft.Steps {
					steps = append(steps, step.Action)
				}
				p.plan = steps
				return
			}
		}
	}
	p.markDegraded(StagePlan)
	p.engine.degrade(StagePlan, err, nil)
}

func (p *pipeline) validatePlan(ctx context.Context) {
	report := p.engine.validator.ValidatePlan(ctx, p.plan, p.system)
	p.validation = report.Result
	if !report.Reviewed {
		p.markDegraded(StagePlanValidation)
	}
}

func (p *pipeline) suggestAlternatives(ctx context.Context) {
	p.alternatives = []string{}
	prompt, err := renderAlternativesPrompt(p.request, p.plan)
	if err == nil {
		var raw string
		if raw, err = p.engine.generate(ctx, prompt); err == nil {
			p.alternatives = ParseAlternatives(raw)
			return
		}
	}
	p.markDegraded(StageAlternatives)
	p.engine.degrade(StageAlternatives, err, nil)
}

func (p *pipeline) assemble() domain.AIDecision {
	return domain.AIDecision{
		Action:         string(p.intent.Type),
		Reasoning:      p.intent.Reasoning,
		Confidence:     p.intent.Confidence,
		Alternatives:   p.alternatives,
		Validation:     p.validation,
		ExecutionPlan:  p.plan,
		TargetFiles:    p.targets,
		DegradedStages: p.degraded,
	}.Normalize()
}
