package security

import (
	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Analyzer runs the four deterministic checks in order, stopping after a syntax failure.
type Analyzer struct {
	guardrail *Guardrail
}

// NewAnalyzer wires the analyzer to a guardrail. A nil guardrail uses the built-in table.
func NewAnalyzer(guardrail *Guardrail) *Analyzer {
	if guardrail == nil {
		guardrail = DefaultGuardrail()
	}
	return &Analyzer{guardrail: guardrail}
}

// Analyze implements ports.StaticAnalyzer.
func (a *Analyzer) Analyze(filePath, oldCode, newCode string) domain.StaticReport {
	if err := CheckSyntax(filePath, newCode); err != nil {
		return domain.StaticReport{
			SyntaxValid:  false,
			SyntaxDetail: err.Error(),
			Risks:        []string{},
			Dependencies: []string{},
			Impact:       domain.ImpactLow,
		}
	}

	risks := a.guardrail.Scan(newCode)
	if risks == nil {
		risks = []string{}
	}
	return domain.StaticReport{
		SyntaxValid:  true,
		Risks:        risks,
		Dependencies: ExtractDependencies(newCode),
		Impact:       ClassifyImpact(oldCode, newCode),
	}
}

var _ ports.StaticAnalyzer = (*Analyzer)(nil)
