package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/pteroai-go/internal/domain"
)

type scriptedConfirmer struct {
	choice domain.ConfirmChoice
	err    error
	seen   []domain.ConfirmationRequest
}

func (s *scriptedConfirmer) Confirm(_ context.Context, req domain.ConfirmationRequest) (domain.ConfirmChoice, error) {
	s.seen = append(s.seen, req)
	return s.choice, s.err
}

func decisionAt(level domain.SecurityLevel, valid bool, confidence float64) domain.AIDecision {
	return domain.AIDecision{
		Action:        "fix",
		Confidence:    confidence,
		ExecutionPlan: []string{"Create backup", "Edit app.py", "Run tests"},
		Validation:    domain.ValidationResult{Valid: valid, SecurityLevel: level},
	}.Normalize()
}

func TestRequiresConfirmationDefaults(t *testing.T) {
	policy := domain.DefaultConfirmationPolicy()
	want := map[domain.SecurityLevel]bool{
		domain.SecuritySafe:     false,
		domain.SecurityLowRisk:  false,
		domain.SecurityMedium:   true,
		domain.SecurityHigh:     true,
		domain.SecurityCritical: true,
	}
	for level, required := range want {
		if got := RequiresConfirmation(level, policy); got != required {
			t.Fatalf("%s: got %v want %v", level, got, required)
		}
	}
}

func TestRequiresConfirmationMissingKey(t *testing.T) {
	policy := domain.ConfirmationPolicy{domain.SecuritySafe: false}
	if !RequiresConfirmation(domain.SecurityLowRisk, policy) {
		t.Fatal("missing level should require confirmation")
	}
}

func TestEvaluateSafetyMode(t *testing.T) {
	cfg := domain.Config{SafetyMode: true, AIConfidenceThreshold: 0.7}
	g := New(cfg, nil)

	tests := []struct {
		name     string
		decision domain.AIDecision
		want     bool
		reasons  int
	}{
		{"safe and confident", decisionAt(domain.SecuritySafe, true, 0.9), false, 0},
		{"low confidence", decisionAt(domain.SecuritySafe, true, 0.3), true, 1},
		{"invalid", decisionAt(domain.SecurityLowRisk, false, 0.9), true, 1},
		{"medium", decisionAt(domain.SecurityMedium, true, 0.9), true, 1},
		{"critical invalid unsure", decisionAt(domain.SecurityCritical, false, 0.1), true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := g.Evaluate(tt.decision)
			if verdict.RequiresConfirmation != tt.want || len(verdict.Reasons) != tt.reasons {
				t.Fatalf("got %+v", verdict)
			}
		})
	}
}

func TestEvaluateWithoutSafetyModeUsesPolicyOnly(t *testing.T) {
	g := New(domain.Config{SafetyMode: false}, nil)
	if g.Evaluate(decisionAt(domain.SecurityLowRisk, false, 0.1)).RequiresConfirmation {
		t.Fatal("policy alone should allow low risk")
	}
}

func TestResolveProceedsWithoutAsking(t *testing.T) {
	confirmer := &scriptedConfirmer{choice: domain.ChoiceAbort}
	g := New(domain.Config{SafetyMode: true}, nil)

	outcome, err := g.Resolve(context.Background(), "fix bug", decisionAt(domain.SecuritySafe, true, 0.9), confirmer)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Approved() || len(confirmer.seen) != 0 {
		t.Fatalf("expected silent approval, got %+v (asked %d)", outcome, len(confirmer.seen))
	}
}

func TestResolveDryRun(t *testing.T) {
	confirmer := &scriptedConfirmer{choice: domain.ChoiceDryRun}
	g := New(domain.Config{SafetyMode: true}, nil)
	decision := decisionAt(domain.SecurityHigh, true, 0.9)

	outcome, err := g.Resolve(context.Background(), "delete logs", decision, confirmer)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Approved() {
		t.Fatal("dry run must not approve execution")
	}
	want := []domain.SimulatedStep{
		{Index: 1, Total: 3, Step: "Create backup", Operation: domain.OperationCreate, Status: "simulated"},
		{Index: 2, Total: 3, Step: "Edit app.py", Operation: domain.OperationEdit, Status: "simulated"},
		{Index: 3, Total: 3, Step: "Run tests", Operation: domain.OperationCommand, Status: "simulated"},
	}
	if diff := cmp.Diff(want, outcome.Simulated); diff != "" {
		t.Fatalf("simulated mismatch (-want +got):\n%s", diff)
	}
	if len(confirmer.seen) != 1 || confirmer.seen[0].Request != "delete logs" {
		t.Fatalf("confirmer not asked correctly: %+v", confirmer.seen)
	}
}

func TestResolveAbortAndErrors(t *testing.T) {
	g := New(domain.Config{SafetyMode: true}, nil)
	decision := decisionAt(domain.SecurityCritical, false, 0.9)

	outcome, err := g.Resolve(context.Background(), "r", decision, &scriptedConfirmer{choice: domain.ChoiceAbort})
	if err != nil || outcome.Choice != domain.ChoiceAbort {
		t.Fatalf("expected abort, got %+v %v", outcome, err)
	}

	outcome, err = g.Resolve(context.Background(), "r", decision, nil)
	if !errors.Is(err, domain.ErrPlanBlocked) || outcome.Choice != domain.ChoiceAbort {
		t.Fatalf("expected ErrPlanBlocked, got %+v %v", outcome, err)
	}

	boom := errors.New("stdin closed")
	outcome, err = g.Resolve(context.Background(), "r", decision, &scriptedConfirmer{err: boom})
	if !errors.Is(err, boom) || outcome.Choice != domain.ChoiceAbort {
		t.Fatalf("expected confirmer error, got %+v %v", outcome, err)
	}
}

func TestDryRunEmptyPlan(t *testing.T) {
	if steps := DryRun(nil); len(steps) != 0 {
		t.Fatalf("expected no steps, got %v", steps)
	}
}
