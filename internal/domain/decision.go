package domain

import "time"

// AIDecision is the unit returned to callers, cached by request text and recorded in history.
type AIDecision struct {
	Action         string           `json:"action"`
	Reasoning      string           `json:"reasoning"`
	Confidence     float64          `json:"confidence"`
	Alternatives   []string         `json:"alternatives"`
	Validation     ValidationResult `json:"validation"`
	ExecutionPlan  []string         `json:"executionPlan"`
	TargetFiles    []string         `json:"targetFiles"`
	DegradedStages []string         `json:"degradedStages"`
}

// Normalize makes every slice non-nil so cached and fresh decisions are identical.
func (d AIDecision) Normalize() AIDecision {
	d.Alternatives = nonNil(d.Alternatives)
	d.ExecutionPlan = nonNil(d.ExecutionPlan)
	d.TargetFiles = nonNil(d.TargetFiles)
	d.DegradedStages = nonNil(d.DegradedStages)
	d.Validation = d.Validation.Normalize()
	return d
}

// Degraded reports whether any stage fell back to its default.
func (d AIDecision) Degraded() bool {
	return len(d.DegradedStages) > 0
}

// DecisionHistoryEntry is one append-only record of a finalized decision.
type DecisionHistoryEntry struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Request       string     `json:"request"`
	Decision      AIDecision `json:"decision"`
	AnalyzedFiles []string   `json:"analyzedFiles"`
}

// IntentType is the closed intent vocabulary.
type IntentType string

const (
	IntentEdit     IntentType = "edit"
	IntentCreate   IntentType = "create"
	IntentDelete   IntentType = "delete"
	IntentAnalyze  IntentType = "analyze"
	IntentFix      IntentType = "fix"
	IntentOptimize IntentType = "optimize"
	IntentOther    IntentType = "other"
)

// Intent is the oracle's classification of a request.
type Intent struct {
	Type          IntentType `json:"type" validate:"required,oneof=edit create delete analyze fix optimize other"`
	Target        string     `json:"target"`
	Reasoning     string     `json:"reasoning"`
	Confidence    float64    `json:"confidence" validate:"gte=0,lte=1"`
	RequiresFiles []string   `json:"requiresFiles"`
	ActionVerb    string     `json:"actionVerb"`
}

// DefaultIntent is used whenever intent classification fails.
func DefaultIntent() Intent {
	return Intent{
		Type:          IntentOther,
		Target:        "unknown",
		Reasoning:     "undetermined",
		Confidence:    0.3,
		RequiresFiles: []string{},
		ActionVerb:    "process",
	}
}

// PlanStep is one step of the oracle-drafted execution plan.
type PlanStep struct {
	Order      int      `json:"order"`
	Action     string   `json:"action" validate:"required"`
	Type       string   `json:"type"`
	Files      []string `json:"files"`
	Reasoning  string   `json:"reasoning"`
	SafeZone   string   `json:"safeZone"`
	Reversible bool     `json:"reversible"`
	RiskLevel  string   `json:"riskLevel"`
}

// PlanDraft is the full plan schema; the engine keeps only the ordered step actions.
type PlanDraft struct {
	Steps            []PlanStep `json:"steps" validate:"required,min=1,dive"`
	EstimatedTime    string     `json:"estimatedTime"`
	Dependencies     []string   `json:"dependencies"`
	RollbackStrategy string     `json:"rollbackStrategy"`
	ImpactAssessment string     `json:"impactAssessment"`
	Confidence       float64    `json:"confidence" validate:"gte=0,lte=1"`
}

// FallbackPlan is the fixed plan used when plan generation fails.
func FallbackPlan() []string {
	return []string{"Create backup", "Analyze request", "Execute change", "Validate result"}
}
