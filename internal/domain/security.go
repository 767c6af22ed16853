package domain

import (
	"fmt"
	"strings"
)

// SecurityLevel is the ordinal risk classification attached to every validation.
// The numeric order is load-bearing: thresholds and confirmation policy compare levels.
type SecurityLevel int

const (
	SecuritySafe SecurityLevel = iota
	SecurityLowRisk
	SecurityMedium
	SecurityHigh
	SecurityCritical
)

var securityLevelNames = [...]string{
	SecuritySafe:     "safe",
	SecurityLowRisk:  "low_risk",
	SecurityMedium:   "medium",
	SecurityHigh:     "high",
	SecurityCritical: "critical",
}

// SecurityLevels lists every level from least to most severe.
func SecurityLevels() []SecurityLevel {
	return []SecurityLevel{SecuritySafe, SecurityLowRisk, SecurityMedium, SecurityHigh, SecurityCritical}
}

func (l SecurityLevel) String() string {
	if l < SecuritySafe || l > SecurityCritical {
		return fmt.Sprintf("SecurityLevel(%d)", int(l))
	}
	return securityLevelNames[l]
}

// AtLeast reports whether l is as severe as other or more.
func (l SecurityLevel) AtLeast(other SecurityLevel) bool {
	return l >= other
}

// ParseSecurityLevel accepts the canonical names plus a few spellings seen in hand-edited configs.
func ParseSecurityLevel(value string) (SecurityLevel, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "safe":
		return SecuritySafe, nil
	case "low_risk", "lowrisk", "low":
		return SecurityLowRisk, nil
	case "medium":
		return SecurityMedium, nil
	case "high":
		return SecurityHigh, nil
	case "critical":
		return SecurityCritical, nil
	default:
		return SecuritySafe, fmt.Errorf("unknown security level %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize by name,
// including when used as map keys.
func (l SecurityLevel) MarshalText() ([]byte, error) {
	if l < SecuritySafe || l > SecurityCritical {
		return nil, fmt.Errorf("invalid security level %d", int(l))
	}
	return []byte(securityLevelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *SecurityLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseSecurityLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// OperationType classifies what an execution step does. The core only carries it
// through to downstream policy.
type OperationType string

const (
	OperationRead    OperationType = "read"
	OperationAnalyze OperationType = "analyze"
	OperationEdit    OperationType = "edit"
	OperationCreate  OperationType = "create"
	OperationDelete  OperationType = "delete"
	OperationCommand OperationType = "command"
	OperationSystem  OperationType = "system"
)

var operationKeywords = []struct {
	op       OperationType
	keywords []string
}{
	{OperationDelete, []string{"delete", "remove", "drop"}},
	{OperationCreate, []string{"backup", "create", "add new", "generate"}},
	{OperationSystem, []string{"restart", "service", "reload", "deploy"}},
	{OperationCommand, []string{"run ", "execute", "command", "artisan", "npm ", "composer"}},
	{OperationEdit, []string{"edit", "modify", "change", "update", "replace", "fix", "apply"}},
	{OperationAnalyze, []string{"analy", "valid", "test", "verify", "check", "review"}},
	{OperationRead, []string{"read", "inspect", "open", "list"}},
}

// ClassifyOperation infers the operation type of a free-text plan step by keyword.
// Steps that match nothing are treated as analysis.
func ClassifyOperation(step string) OperationType {
	lower := strings.ToLower(step)
	for _, entry := range operationKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.op
			}
		}
	}
	return OperationAnalyze
}

// Impact is the coarse size classification of a change or plan.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)
