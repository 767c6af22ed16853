package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/infrastructure/security"
)

type stubOracle struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubOracle) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type countingMetrics struct {
	mu       sync.Mutex
	degraded map[string]int
}

func (m *countingMetrics) ObserveOracleCall(string, string, time.Duration) {}
func (m *countingMetrics) IncDecision(string, bool)                        {}
func (m *countingMetrics) IncKnowledgeAnalysis(string)                     {}

func (m *countingMetrics) IncDegradedStage(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.degraded == nil {
		m.degraded = map[string]int{}
	}
	m.degraded[stage]++
}

func newEngine(oracle *stubOracle) *Engine {
	return NewEngine(Deps{
		Analyzer: security.NewAnalyzer(nil),
		Oracle:   oracle,
	})
}

const approveChange = `Looks fine: {"risks": [], "suggestions": [], "recommendation": "approve", "confidence": 0.9}`

func TestValidateCodeChangeEvalIsHigh(t *testing.T) {
	oracle := &stubOracle{reply: approveChange}
	report := newEngine(oracle).ValidateCodeChange(context.Background(), "app.py", "x = 1\n", "x = eval(input())\n")

	assert.Equal(t, 10, report.Score)
	assert.Equal(t, domain.SecurityHigh, report.Result.SecurityLevel)
	assert.True(t, report.Result.Valid)
	assert.Contains(t, report.Result.Risks, "eval() usage detected - DANGEROUS")
	assert.Equal(t, domain.ImpactLow, report.Result.EstimatedImpact)
	assert.False(t, report.Result.TestsRequired)
	require.NotNil(t, report.Result.RollbackPlan)
	assert.Contains(t, *report.Result.RollbackPlan, "app.py")
	assert.Equal(t, RecommendApprove, report.Recommendation)
}

func TestValidateCodeChangeSyntaxShortCircuit(t *testing.T) {
	oracle := &stubOracle{reply: approveChange}
	report := newEngine(oracle).ValidateCodeChange(context.Background(), "app.py", "", "import os\ndef broken(:\n")

	assert.False(t, report.Result.Valid)
	assert.Equal(t, domain.SecurityHigh, report.Result.SecurityLevel)
	assert.Equal(t, []string{RiskSyntaxError}, report.Result.Risks)
	assert.Empty(t, report.Result.Dependencies)
	assert.Zero(t, oracle.calls(), "syntax failure must skip the oracle")
}

func TestValidateCodeChangeOracleRisksAndReject(t *testing.T) {
	oracle := &stubOracle{reply: `{"risks": ["removes input validation"], "suggestions": ["keep the check"], "recommendation": "reject", "confidence": 0.8}`}
	report := newEngine(oracle).ValidateCodeChange(context.Background(), "app.py", "x = 1\n", "x = 2\n")

	// one plain risk (2) + reject (8)
	assert.Equal(t, 10, report.Score)
	assert.Equal(t, domain.SecurityHigh, report.Result.SecurityLevel)
	assert.Equal(t, []string{"removes input validation"}, report.Result.Risks)
	assert.Equal(t, []string{"keep the check"}, report.Result.Suggestions)
}

func TestValidateCodeChangeDegradesSilently(t *testing.T) {
	for name, oracle := range map[string]*stubOracle{
		"error":     {err: domain.ErrOracleUnavailable},
		"not json":  {reply: "I cannot help with that"},
		"bad value": {reply: `{"recommendation": "maybe"}`},
	} {
		t.Run(name, func(t *testing.T) {
			report := newEngine(oracle).ValidateCodeChange(context.Background(), "app.py", "x = 1\n", "x = 2\n")
			assert.False(t, report.Reviewed)
			assert.Empty(t, report.Recommendation)
			assert.Equal(t, 0, report.Score)
			assert.Equal(t, domain.SecuritySafe, report.Result.SecurityLevel)
			assert.True(t, report.Result.Valid)
		})
	}
}

func TestValidateCodeChangeCriticalIsInvalid(t *testing.T) {
	oracle := &stubOracle{reply: approveChange}
	code := "password = \"hunter2\"\nresult = eval(code)\n"
	report := newEngine(oracle).ValidateCodeChange(context.Background(), "app.py", "", code)

	assert.Equal(t, domain.SecurityCritical, report.Result.SecurityLevel)
	assert.False(t, report.Result.Valid)
}

func TestChangePromptUsesDiffLineLimit(t *testing.T) {
	var lines []string
	for i := 1; i <= 60; i++ {
		lines = append(lines, fmt.Sprintf("line_%d = %d", i, i))
	}
	code := strings.Join(lines, "\n")
	oracle := &stubOracle{reply: approveChange}
	newEngine(oracle).ValidateCodeChange(context.Background(), "app.py", "", code)

	require.Equal(t, 1, oracle.calls())
	assert.Contains(t, oracle.prompts[0], "line_50 = 50")
	assert.NotContains(t, oracle.prompts[0], "line_51 = 51")
}

func TestChangeSecurityLevelThresholds(t *testing.T) {
	tests := []struct {
		name   string
		risks  []string
		impact domain.Impact
		rec    Recommendation
		want   domain.SecurityLevel
	}{
		{"nothing", nil, domain.ImpactLow, "", domain.SecuritySafe},
		{"approve only", nil, domain.ImpactLow, RecommendApprove, domain.SecuritySafe},
		{"one plain risk", []string{"Dynamic import detected"}, domain.ImpactLow, "", domain.SecurityLowRisk},
		{"medium impact", nil, domain.ImpactMedium, "", domain.SecurityLowRisk},
		{"review plus plain", []string{"odd"}, domain.ImpactLow, RecommendReview, domain.SecurityMedium},
		{"high impact", nil, domain.ImpactHigh, "", domain.SecurityMedium},
		{"critical keyword", []string{"eval() usage detected - DANGEROUS"}, domain.ImpactLow, "", domain.SecurityHigh},
		{"reject plus medium", nil, domain.ImpactMedium, RecommendReject, domain.SecurityHigh},
		{"api key casing", []string{"Plaintext API key detected"}, domain.ImpactLow, RecommendReview, domain.SecurityHigh},
		{"critical and review plus high", []string{"password leak"}, domain.ImpactHigh, RecommendReview, domain.SecurityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangeSecurityLevel(tt.risks, tt.impact, tt.rec))
		})
	}
}

func TestChangeSecurityLevelMonotonicInCriticalRisks(t *testing.T) {
	riskSets := [][]string{
		nil,
		{"minor"},
		{"minor", "another"},
		{"eval() usage detected - DANGEROUS"},
		{"Plaintext password detected", "minor"},
	}
	impacts := []domain.Impact{domain.ImpactLow, domain.ImpactMedium, domain.ImpactHigh}
	recs := []Recommendation{"", RecommendApprove, RecommendReview, RecommendReject}

	for _, risks := range riskSets {
		for _, impact := range impacts {
			for _, rec := range recs {
				before := ChangeSecurityLevel(risks, impact, rec)
				withCritical := append(append([]string{}, risks...), "CRITICAL: secret exposed")
				after := ChangeSecurityLevel(withCritical, impact, rec)
				if after < before {
					t.Fatalf("level decreased from %s to %s for %v/%s/%s", before, after, risks, impact, rec)
				}
			}
		}
	}
}

func TestPlanSecurityLevelByCount(t *testing.T) {
	want := map[int]domain.SecurityLevel{
		0: domain.SecuritySafe,
		1: domain.SecurityLowRisk,
		2: domain.SecurityLowRisk,
		3: domain.SecurityMedium,
		4: domain.SecurityMedium,
		5: domain.SecurityHigh,
		9: domain.SecurityHigh,
	}
	for count, level := range want {
		assert.Equal(t, level, PlanSecurityLevel(count), "count %d", count)
		assert.Equal(t, count < 5, PlanValid(count), "count %d", count)
	}
}

func TestValidatePlanApproved(t *testing.T) {
	oracle := &stubOracle{reply: `{"safe": true, "risks": [], "missingSteps": [], "recommendation": "approve"}`}
	report := newEngine(oracle).ValidatePlan(context.Background(),
		[]string{"Create backup of app.py", "Edit app.py", "Run tests"}, domain.SystemContext{})

	assert.Equal(t, domain.SecuritySafe, report.Result.SecurityLevel)
	assert.True(t, report.Result.Valid)
	assert.Equal(t, domain.ImpactLow, report.Result.EstimatedImpact)
	assert.True(t, report.Result.TestsRequired)
	assert.Nil(t, report.Result.RollbackPlan)
}

func TestValidatePlanStructuralAndOracleRisks(t *testing.T) {
	oracle := &stubOracle{reply: `{"safe": false, "risks": ["a", "b", "c"], "missingSteps": ["stop the queue worker"], "recommendation": "reject"}`}
	report := newEngine(oracle).ValidatePlan(context.Background(),
		[]string{"Edit file", "Restart", "Clear cache", "Rebuild assets"}, domain.SystemContext{})

	assert.Len(t, report.Result.Risks, 5)
	assert.Equal(t, RiskNoBackup, report.Result.Risks[0])
	assert.Equal(t, RiskNoValidation, report.Result.Risks[1])
	assert.Equal(t, domain.SecurityHigh, report.Result.SecurityLevel)
	assert.False(t, report.Result.Valid)
	assert.Equal(t, domain.ImpactMedium, report.Result.EstimatedImpact)
	assert.Equal(t, []string{"stop the queue worker"}, report.Result.Suggestions)
}

func TestValidatePlanOracleFailure(t *testing.T) {
	oracle := &stubOracle{err: errors.New("boom")}
	report := newEngine(oracle).ValidatePlan(context.Background(), domain.FallbackPlan(), domain.SystemContext{})

	assert.False(t, report.Reviewed)
	assert.Empty(t, report.Result.Risks, "fallback plan has backup and validation steps")
	assert.Equal(t, domain.SecuritySafe, report.Result.SecurityLevel)
	assert.Equal(t, domain.ImpactMedium, report.Result.EstimatedImpact)
}

func TestDegradedReviewsAreCounted(t *testing.T) {
	metrics := &countingMetrics{}
	engine := NewEngine(Deps{
		Analyzer: security.NewAnalyzer(nil),
		Oracle:   &stubOracle{err: domain.ErrOracleUnavailable},
		Metrics:  metrics,
	})
	engine.ValidateCodeChange(context.Background(), "app.py", "x = 1\n", "x = 2\n")
	engine.ValidatePlan(context.Background(), []string{"step"}, domain.SystemContext{})
	engine.ValidatePlan(context.Background(), []string{"step"}, domain.SystemContext{})

	assert.Equal(t, 1, metrics.degraded[stageChangeReview])
	assert.Equal(t, 2, metrics.degraded[stagePlanReview])
}
