package domain

// ValidationResult is the immutable outcome of validating a plan or a code change.
// Valid is false only when risk volume crosses a hard ceiling; an elevated level
// on a valid result is still gated by confirmation policy.
type ValidationResult struct {
	Valid           bool          `json:"valid"`
	SecurityLevel   SecurityLevel `json:"securityLevel"`
	Risks           []string      `json:"risks"`
	Suggestions     []string      `json:"suggestions"`
	EstimatedImpact Impact        `json:"estimatedImpact"`
	Dependencies    []string      `json:"dependencies"`
	TestsRequired   bool          `json:"testsRequired"`
	RollbackPlan    *string       `json:"rollbackPlan,omitempty"`
}

// Normalize replaces nil slices with empty ones so a result compares equal
// to its own JSON round trip.
func (r ValidationResult) Normalize() ValidationResult {
	r.Risks = nonNil(r.Risks)
	r.Suggestions = nonNil(r.Suggestions)
	r.Dependencies = nonNil(r.Dependencies)
	if r.EstimatedImpact == "" {
		r.EstimatedImpact = ImpactLow
	}
	return r
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
