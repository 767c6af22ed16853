// Package validation scores proposed code changes and execution plans.
//
// The change path and the plan path use deliberately different tables:
// change results are scored from risk content, impact and the oracle's
// recommendation, plan results purely from how many risks were found.
package validation

import (
	"context"
	"errors"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/pkg/logger"
	"github.com/doeshing/pteroai-go/internal/pkg/oraclejson"
	"github.com/doeshing/pteroai-go/internal/ports"
)

const (
	stageChangeReview = "change_validation"
	stagePlanReview   = "plan_validation"
)

// Risk messages for the two structural plan checks.
const (
	RiskNoBackup     = "Plan has no backup step"
	RiskNoValidation = "Plan has no validation/test step"
	RiskSyntaxError  = "syntax error"
)

// Report is a validation result together with how it was reached.
type Report struct {
	Result         domain.ValidationResult `json:"result"`
	Score          int                     `json:"score"`
	Recommendation Recommendation          `json:"recommendation,omitempty"`
	Reviewed       bool                    `json:"reviewed"`
}

type changeReview struct {
	Risks          []string       `json:"risks"`
	Suggestions    []string       `json:"suggestions"`
	Recommendation Recommendation `json:"recommendation" validate:"required,oneof=approve review reject"`
	Confidence     float64        `json:"confidence" validate:"gte=0,lte=1"`
}

type planReview struct {
	Safe           bool           `json:"safe"`
	Risks          []string       `json:"risks"`
	MissingSteps   []string       `json:"missingSteps"`
	Recommendation Recommendation `json:"recommendation" validate:"required,oneof=approve modify reject"`
}

// Deps wires the engine.
type Deps struct {
	Analyzer      ports.StaticAnalyzer
	Oracle        ports.Oracle
	Logger        ports.Logger
	Metrics       ports.Metrics
	DiffLineLimit int
}

// Engine runs the static checks and the oracle review and scores the result.
type Engine struct {
	analyzer  ports.StaticAnalyzer
	oracle    ports.Oracle
	logger    ports.Logger
	metrics   ports.Metrics
	diffLimit int
}

// NewEngine builds an Engine. Analyzer is required; a nil oracle degrades every review.
func NewEngine(deps Deps) *Engine {
	e := &Engine{
		analyzer:  deps.Analyzer,
		oracle:    deps.Oracle,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		diffLimit: deps.DiffLineLimit,
	}
	if e.logger == nil {
		e.logger = logger.Nop()
	}
	if e.diffLimit <= 0 {
		e.diffLimit = domain.DefaultDiffLineLimit
	}
	return e
}

// ValidateCodeChange validates replacing oldCode with newCode in filePath.
// A syntax failure returns immediately with High, invalid and no dependencies.
func (e *Engine) ValidateCodeChange(ctx context.Context, filePath, oldCode, newCode string) Report {
	static := e.analyzer.Analyze(filePath, oldCode, newCode)
	if !static.SyntaxValid {
		suggestions := []string{}
		if static.SyntaxDetail != "" {
			suggestions = append(suggestions, static.SyntaxDetail)
		}
		return Report{Result: domain.ValidationResult{
			Valid:           false,
			SecurityLevel:   domain.SecurityHigh,
			Risks:           []string{RiskSyntaxError},
			Suggestions:     suggestions,
			EstimatedImpact: static.Impact,
			Dependencies:    []string{},
		}.Normalize()}
	}

	risks := append([]string{}, static.Risks...)
	suggestions := []string{}
	var rec Recommendation

	review, err := e.reviewChange(ctx, filePath, oldCode, newCode)
	reviewed := err == nil
	if reviewed {
		risks = append(risks, review.Risks...)
		suggestions = append(suggestions, review.Suggestions...)
		rec = review.Recommendation
	} else {
		e.degrade(stageChangeReview, err, map[string]interface{}{"file": filePath})
	}

	score := ChangeScore(risks, static.Impact, rec)
	level := ChangeSecurityLevel(risks, static.Impact, rec)
	rollback := RollbackPlan(filePath)

	return Report{
		Result: domain.ValidationResult{
			Valid:           len(risks) == 0 || level != domain.SecurityCritical,
			SecurityLevel:   level,
			Risks:           risks,
			Suggestions:     suggestions,
			EstimatedImpact: static.Impact,
			Dependencies:    static.Dependencies,
			TestsRequired:   static.Impact == domain.ImpactMedium || static.Impact == domain.ImpactHigh,
			RollbackPlan:    &rollback,
		}.Normalize(),
		Score:          score,
		Recommendation: rec,
		Reviewed:       reviewed,
	}
}

// ValidatePlan validates an ordered list of step descriptions against the system snapshot.
func (e *Engine) ValidatePlan(ctx context.Context, steps []string, system domain.SystemContext) Report {
	risks := []string{}
	if !planHasBackup(steps) {
		risks = append(risks, RiskNoBackup)
	}
	if !planHasValidation(steps) {
		risks = append(risks, RiskNoValidation)
	}
	suggestions := []string{}
	var rec Recommendation

	review, err := e.reviewPlan(ctx, steps, system)
	reviewed := err == nil
	if reviewed {
		risks = append(risks, review.Risks...)
		suggestions = append(suggestions, review.MissingSteps...)
		rec = review.Recommendation
	} else {
		e.degrade(stagePlanReview, err, map[string]interface{}{"steps": len(steps)})
	}

	impact := domain.ImpactLow
	if len(steps) > 3 {
		impact = domain.ImpactMedium
	}
	return Report{
		Result: domain.ValidationResult{
			Valid:           PlanValid(len(risks)),
			SecurityLevel:   PlanSecurityLevel(len(risks)),
			Risks:           risks,
			Suggestions:     suggestions,
			EstimatedImpact: impact,
			Dependencies:    []string{},
			TestsRequired:   true,
		}.Normalize(),
		Score:          len(risks),
		Recommendation: rec,
		Reviewed:       reviewed,
	}
}

func (e *Engine) reviewChange(ctx context.Context, path, oldCode, newCode string) (changeReview, error) {
	if e.oracle == nil {
		return changeReview{}, domain.ErrOracleUnavailable
	}
	prompt, err := renderChangePrompt(path, oldCode, newCode, e.diffLimit)
	if err != nil {
		return changeReview{}, err
	}
	raw, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		return changeReview{}, err
	}
	return oraclejson.Decode[changeReview](raw)
}

func (e *Engine) reviewPlan(ctx context.Context, steps []string, system domain.SystemContext) (planReview, error) {
	if e.oracle == nil {
		return planReview{}, domain.ErrOracleUnavailable
	}
	prompt, err := renderPlanPrompt(steps, system)
	if err != nil {
		return planReview{}, err
	}
	raw, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		return planReview{}, err
	}
	return oraclejson.Decode[planReview](raw)
}

func (e *Engine) degrade(stage string, err error, fields map[string]interface{}) {
	if e.metrics != nil {
		e.metrics.IncDegradedStage(stage)
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["stage"] = stage
	fields["error"] = err.Error()
	if errors.Is(err, context.Canceled) {
		e.logger.Debug("oracle review skipped", fields)
		return
	}
	e.logger.Warn("oracle review degraded", fields)
}
