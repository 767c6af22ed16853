package security

import (
	"strings"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// Impact thresholds on added+changed line counts.
const (
	mediumImpactFrom = 5
	highImpactFrom   = 20
)

// ChangeMagnitude returns |added lines| plus the number of differing lines over
// the overlapping prefix. Lines past the shorter side are not compared.
func ChangeMagnitude(oldCode, newCode string) int {
	oldLines := strings.Split(oldCode, "\n")
	newLines := strings.Split(newCode, "\n")

	added := len(newLines) - len(oldLines)
	if added < 0 {
		added = -added
	}

	overlap := len(oldLines)
	if len(newLines) < overlap {
		overlap = len(newLines)
	}
	changed := 0
	for i := 0; i < overlap; i++ {
		if oldLines[i] != newLines[i] {
			changed++
		}
	}
	return added + changed
}

// ClassifyMagnitude maps a change magnitude onto an impact class.
func ClassifyMagnitude(magnitude int) domain.Impact {
	switch {
	case magnitude < mediumImpactFrom:
		return domain.ImpactLow
	case magnitude < highImpactFrom:
		return domain.ImpactMedium
	default:
		return domain.ImpactHigh
	}
}

// ClassifyImpact is ClassifyMagnitude(ChangeMagnitude(oldCode, newCode)).
func ClassifyImpact(oldCode, newCode string) domain.Impact {
	return ClassifyMagnitude(ChangeMagnitude(oldCode, newCode))
}
