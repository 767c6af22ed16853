// Package gate decides whether a decision may proceed without a human and
// resolves the answer through a caller-supplied Confirmer.
package gate

import (
	"context"
	"fmt"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/pkg/logger"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// RequiresConfirmation looks level up in policy. Levels missing from the policy require confirmation.
func RequiresConfirmation(level domain.SecurityLevel, policy domain.ConfirmationPolicy) bool {
	required, ok := policy[level]
	if !ok {
		return true
	}
	return required
}

// Gate applies the confirmation policy and the safety-mode rules of one configuration.
type Gate struct {
	policy     domain.ConfirmationPolicy
	safetyMode bool
	threshold  float64
	logger     ports.Logger
}

// New builds a Gate from cfg. logger may be nil.
func New(cfg domain.Config, log ports.Logger) *Gate {
	if log == nil {
		log = logger.Nop()
	}
	return &Gate{
		policy:     cfg.ConfirmationPolicy().Clone(),
		safetyMode: cfg.IsSafetyMode(),
		threshold:  cfg.GetConfidenceThreshold(),
		logger:     log,
	}
}

// Evaluate reports whether decision needs confirmation and why.
func (g *Gate) Evaluate(decision domain.AIDecision) domain.GateVerdict {
	level := decision.Validation.SecurityLevel
	reasons := []string{}
	if RequiresConfirmation(level, g.policy) {
		reasons = append(reasons, fmt.Sprintf("security level %s requires confirmation", level))
	}
	if g.safetyMode {
		if !decision.Validation.Valid {
			reasons = append(reasons, "validation failed")
		}
		if decision.Confidence < g.threshold {
			reasons = append(reasons, fmt.Sprintf("confidence %.2f below threshold %.2f", decision.Confidence, g.threshold))
		}
	}
	return domain.GateVerdict{RequiresConfirmation: len(reasons) > 0, Reasons: reasons}
}

// Resolve evaluates decision and, when required, asks confirmer. Without a
// confirmer a gated decision is aborted with domain.ErrPlanBlocked.
// A dry-run answer attaches the simulated plan; nothing is executed here.
func (g *Gate) Resolve(ctx context.Context, request string, decision domain.AIDecision, confirmer ports.Confirmer) (domain.GateOutcome, error) {
	verdict := g.Evaluate(decision)
	outcome := domain.GateOutcome{Verdict: verdict, Choice: domain.ChoiceProceed}
	if !verdict.RequiresConfirmation {
		return outcome, nil
	}
	if confirmer == nil {
		outcome.Choice = domain.ChoiceAbort
		return outcome, fmt.Errorf("%v: %w", verdict.Reasons, domain.ErrPlanBlocked)
	}

	choice, err := confirmer.Confirm(ctx, domain.ConfirmationRequest{
		Request:  request,
		Decision: decision,
		Reasons:  verdict.Reasons,
	})
	if err != nil {
		outcome.Choice = domain.ChoiceAbort
		return outcome, fmt.Errorf("confirmation: %w", err)
	}

	switch choice {
	case domain.ChoiceProceed:
		outcome.Choice = domain.ChoiceProceed
	case domain.ChoiceDryRun:
		outcome.Choice = domain.ChoiceDryRun
		outcome.Simulated = DryRun(decision.ExecutionPlan)
	default:
		outcome.Choice = domain.ChoiceAbort
	}
	g.logger.Info("gate resolved", map[string]interface{}{
		"choice":  string(outcome.Choice),
		"level":   decision.Validation.SecurityLevel.String(),
		"reasons": len(verdict.Reasons),
	})
	return outcome, nil
}

// DryRun reports every step as simulated, in order.
func DryRun(plan []string) []domain.SimulatedStep {
	steps := make([]domain.SimulatedStep, 0, len(plan))
	for i, step := range plan {
		steps = append(steps, domain.SimulatedStep{
			Index:     i + 1,
			Total:     len(plan),
			Step:      step,
			Operation: domain.ClassifyOperation(step),
			Status:    domain.SimulatedStatus,
		})
	}
	return steps
}
