package domain

// ConfirmChoice is the caller's answer when a decision requires confirmation.
type ConfirmChoice string

const (
	ChoiceProceed ConfirmChoice = "proceed"
	ChoiceAbort   ConfirmChoice = "abort"
	ChoiceDryRun  ConfirmChoice = "dry_run"
)

// ConfirmationRequest is what the gate hands to a Confirmer.
type ConfirmationRequest struct {
	Request  string     `json:"request"`
	Decision AIDecision `json:"decision"`
	Reasons  []string   `json:"reasons"`
}

// GateVerdict is the gate's evaluation of a decision before anything runs.
type GateVerdict struct {
	RequiresConfirmation bool     `json:"requiresConfirmation"`
	Reasons              []string `json:"reasons"`
}

// SimulatedStep is one dry-run report line. Nothing is executed.
type SimulatedStep struct {
	Index     int           `json:"index"`
	Total     int           `json:"total"`
	Step      string        `json:"step"`
	Operation OperationType `json:"operation"`
	Status    string        `json:"status"`
}

// SimulatedStatus is the only status a dry-run step can have.
const SimulatedStatus = "simulated"

// GateOutcome is the resolved result of passing a decision through the gate.
type GateOutcome struct {
	Verdict   GateVerdict     `json:"verdict"`
	Choice    ConfirmChoice   `json:"choice"`
	Simulated []SimulatedStep `json:"simulated,omitempty"`
}

// Approved reports whether the downstream executor may act on the plan.
func (o GateOutcome) Approved() bool {
	return o.Choice == ChoiceProceed
}

// StaticReport is the deterministic analysis of a proposed change.
type StaticReport struct {
	SyntaxValid  bool     `json:"syntaxValid"`
	SyntaxDetail string   `json:"syntaxDetail,omitempty"`
	Risks        []string `json:"risks"`
	Dependencies []string `json:"dependencies"`
	Impact       Impact   `json:"impact"`
}

// CacheEntryInfo describes a stored context cache entry without its payload.
type CacheEntryInfo struct {
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
	Fresh     bool   `json:"fresh"`
	Size      int    `json:"size"`
}
