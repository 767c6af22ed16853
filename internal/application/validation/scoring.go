package validation

import (
	"strings"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// Recommendation is the oracle's verdict on a change or plan. Empty means absent.
type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
	RecommendModify  Recommendation = "modify"
)

// CriticalKeywords mark a risk message as critical in change scoring. Matching is case-insensitive.
var CriticalKeywords = []string{"DANGEROUS", "CRITICAL", "password", "api key"}

// IsCriticalRisk reports whether risk contains one of CriticalKeywords.
func IsCriticalRisk(risk string) bool {
	lower := strings.ToLower(risk)
	for _, keyword := range CriticalKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

var impactScores = map[domain.Impact]int{
	domain.ImpactLow:    0,
	domain.ImpactMedium: 3,
	domain.ImpactHigh:   6,
}

// ChangeScore is the additive score of the code-change table.
func ChangeScore(risks []string, impact domain.Impact, rec Recommendation) int {
	score := 0
	for _, risk := range risks {
		if IsCriticalRisk(risk) {
			score += 10
		} else {
			score += 2
		}
	}
	score += impactScores[impact]
	switch rec {
	case RecommendReject:
		score += 8
	case RecommendReview:
		score += 3
	}
	return score
}

// ChangeSecurityLevel maps the code-change score to a level.
// Thresholds: 15 Critical, 10 High, 5 Medium, 2 LowRisk.
func ChangeSecurityLevel(risks []string, impact domain.Impact, rec Recommendation) domain.SecurityLevel {
	score := ChangeScore(risks, impact, rec)
	switch {
	case score >= 15:
		return domain.SecurityCritical
	case score >= 10:
		return domain.SecurityHigh
	case score >= 5:
		return domain.SecurityMedium
	case score >= 2:
		return domain.SecurityLowRisk
	default:
		return domain.SecuritySafe
	}
}

// PlanSecurityLevel maps a plan's risk count to a level. It never yields Critical.
func PlanSecurityLevel(riskCount int) domain.SecurityLevel {
	switch {
	case riskCount <= 0:
		return domain.SecuritySafe
	case riskCount <= 2:
		return domain.SecurityLowRisk
	case riskCount <= 4:
		return domain.SecurityMedium
	default:
		return domain.SecurityHigh
	}
}

// PlanValid is false once a plan collects five or more risks.
func PlanValid(riskCount int) bool {
	return riskCount < 5
}

// RollbackPlan is the fixed restoration instruction attached to change results.
func RollbackPlan(filePath string) string {
	return "Restore " + filePath + " from the most recent backup using the 'restore' command"
}

func planHasBackup(steps []string) bool {
	return anyStepContains(steps, "backup")
}

func planHasValidation(steps []string) bool {
	return anyStepContains(steps, "valid", "test")
}

func anyStepContains(steps []string, keywords ...string) bool {
	for _, step := range steps {
		lower := strings.ToLower(step)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
