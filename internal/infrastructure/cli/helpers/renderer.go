package helpers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/doeshing/pteroai-go/internal/application/validation"
	"github.com/doeshing/pteroai-go/internal/domain"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	levelStyles = map[domain.SecurityLevel]lipgloss.Style{
		domain.SecurityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		domain.SecurityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("202")),
		domain.SecurityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		domain.SecurityLowRisk:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		domain.SecuritySafe:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

// Level renders a security level as a coloured tag, e.g. [HIGH].
func Level(level domain.SecurityLevel) string {
	style, ok := levelStyles[level]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render("[" + strings.ToUpper(level.String()) + "]")
}

// RenderDecision prints a decision and the gate's verdict on it.
func RenderDecision(out io.Writer, d domain.AIDecision, verdict domain.GateVerdict) {
	fmt.Fprintln(out, headingStyle.Render("Decision"))
	fmt.Fprintf(out, "Action: %s\n", d.Action)
	fmt.Fprintf(out, "Confidence: %.0f%%\n", d.Confidence*100)
	if d.Reasoning != "" {
		fmt.Fprintf(out, "Reasoning: %s\n", d.Reasoning)
	}
	if len(d.TargetFiles) > 0 {
		fmt.Fprintln(out, "Target files:")
		for _, file := range d.TargetFiles {
			fmt.Fprintf(out, "  %s\n", file)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render("Execution plan"))
	for i, step := range d.ExecutionPlan {
		fmt.Fprintf(out, "  %d. %s\n", i+1, step)
	}

	fmt.Fprintln(out)
	RenderValidationResult(out, d.Validation)

	if len(d.Alternatives) > 0 {
		fmt.Fprintln(out, "Alternatives:")
		for _, alt := range d.Alternatives {
			fmt.Fprintf(out, "  - %s\n", alt)
		}
	}
	if d.Degraded() {
		fmt.Fprintln(out, warnStyle.Render("Degraded stages: "+strings.Join(d.DegradedStages, ", ")))
	}
	if verdict.RequiresConfirmation {
		fmt.Fprintln(out, warnStyle.Render("Confirmation required"))
		for _, reason := range verdict.Reasons {
			fmt.Fprintf(out, " - %s\n", reason)
		}
	}
}

// RenderValidationResult prints the level, validity and findings of a result.
func RenderValidationResult(out io.Writer, r domain.ValidationResult) {
	validity := "valid"
	if !r.Valid {
		validity = "INVALID"
	}
	fmt.Fprintf(out, "Security: %s %s, impact %s\n", Level(r.SecurityLevel), validity, r.EstimatedImpact)
	printList(out, "Risks", r.Risks)
	printList(out, "Suggestions", r.Suggestions)
	printList(out, "Dependencies", r.Dependencies)
	if r.RollbackPlan != nil {
		fmt.Fprintf(out, "Rollback: %s\n", *r.RollbackPlan)
	}
}

// RenderReport prints a change validation report for one file.
func RenderReport(out io.Writer, file string, report validation.Report) {
	fmt.Fprintln(out, headingStyle.Render("Validation: "+file))
	RenderValidationResult(out, report.Result)
	review := "oracle review unavailable"
	if report.Reviewed {
		review = "oracle recommends " + string(report.Recommendation)
	}
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("score %d, %s", report.Score, review)))
}

// RenderKnowledge prints a FileKnowledge record.
func RenderKnowledge(out io.Writer, k domain.FileKnowledge) {
	fmt.Fprintln(out, headingStyle.Render(k.Path))
	if k.Failed() {
		fmt.Fprintf(out, "Error (%s): %s\n", k.Error.Kind, k.Error.Message)
		return
	}
	fmt.Fprintf(out, "Language: %s, %d lines\n", k.Language, k.TotalLines)
	if k.Structure.Summary != "" {
		fmt.Fprintf(out, "Structure: %s\n", k.Structure.Summary)
	}
	a := k.DeepAnalysis
	fmt.Fprintf(out, "Purpose: %s\n", a.Purpose)
	if a.ComplexityLevel != "" {
		fmt.Fprintf(out, "Complexity: %s\n", a.ComplexityLevel)
	}
	fmt.Fprintf(out, "Understanding: %.0f%%\n", a.UnderstandingScore*100)
	printList(out, "Key functions", a.KeyFunctions)
	printList(out, "Safe edit zones", a.SafeEditZones)
	printList(out, "Danger zones", a.DangerZones)
	printList(out, "Recommendations", a.Recommendations)
	if a.Degraded {
		fmt.Fprintln(out, warnStyle.Render("Deep analysis unavailable; structure only"))
	}
}

// RenderSimulated prints dry-run lines as "[i/n] step" followed by its status.
func RenderSimulated(out io.Writer, steps []domain.SimulatedStep) {
	fmt.Fprintln(out, headingStyle.Render("Dry run"))
	for _, step := range steps {
		fmt.Fprintf(out, "[%d/%d] %s\n", step.Index, step.Total, step.Step)
		fmt.Fprintf(out, "      %s\n", mutedStyle.Render(step.Status))
	}
}

// RenderConfirmation prints what the user is being asked to approve.
func RenderConfirmation(out io.Writer, req domain.ConfirmationRequest) {
	fmt.Fprintf(out, "\n%s %s\n", Level(req.Decision.Validation.SecurityLevel), headingStyle.Render("Confirmation required"))
	fmt.Fprintf(out, "Request: %s\n", req.Request)
	for _, reason := range req.Reasons {
		fmt.Fprintf(out, " - %s\n", reason)
	}
}

// RenderHealth prints doctor checks.
func RenderHealth(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		status := strings.ToUpper(string(check.Status))
		switch check.Status {
		case domain.HealthError:
			status = levelStyles[domain.SecurityCritical].Render(status)
		case domain.HealthWarn:
			status = warnStyle.Render(status)
		}
		fmt.Fprintf(out, "[%s] %s - %s\n", status, check.Name, check.Details)
	}
}

// RenderHistoryLine prints one history entry on a single line.
func RenderHistoryLine(out io.Writer, entry domain.DecisionHistoryEntry, now time.Time) {
	when := humanize.RelTime(entry.Timestamp, now, "ago", "from now")
	fmt.Fprintf(out, "%s | %s | %s | %s\n",
		mutedStyle.Render(when),
		Level(entry.Decision.Validation.SecurityLevel),
		entry.Decision.Action,
		entry.Request)
}

// RenderCacheEntry prints one cache entry.
func RenderCacheEntry(out io.Writer, entry domain.CacheEntryInfo, now time.Time) {
	state := "fresh"
	if !entry.Fresh {
		state = "stale"
	}
	stored := time.Unix(entry.Timestamp, 0)
	fmt.Fprintf(out, "%s | %s | %s | %s\n",
		entry.Key,
		humanize.Bytes(uint64(entry.Size)),
		humanize.RelTime(stored, now, "ago", "from now"),
		state)
}

func printList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}
