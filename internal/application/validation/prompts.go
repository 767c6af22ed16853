package validation

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/doeshing/pteroai-go/internal/domain"
)

var changeReviewTemplate = template.Must(template.New("change-review").Parse(`Review this code change as a security specialist.

FILE: {{.Path}}

OLD CODE (first {{.Limit}} lines):
{{.Old}}

NEW CODE (first {{.Limit}} lines):
{{.New}}

Look for potential bugs, security problems, performance impact, breaking changes and violated best practices.

Reply with a single JSON object and nothing else:
{
  "risks": ["concrete problems introduced by the change"],
  "suggestions": ["..."],
  "recommendation": "approve|review|reject",
  "confidence": 0.0
}`))

var planReviewTemplate = template.Must(template.New("plan-review").Parse(`As a security auditor, evaluate this execution plan.

PLAN:
{{.Plan}}

SYSTEM CONTEXT:
- Panel installed: {{.Installed}}
- Install root: {{.Root}}
- Active services: {{.Services}}

Reply with a single JSON object and nothing else:
{
  "safe": true,
  "risks": ["..."],
  "missingSteps": ["important steps the plan lacks"],
  "recommendation": "approve|modify|reject"
}`))

func renderChangePrompt(path, oldCode, newCode string, limit int) (string, error) {
	data := struct {
		Path     string
		Limit    int
		Old, New string
	}{
		Path:  path,
		Limit: limit,
		Old:   headLines(oldCode, limit),
		New:   headLines(newCode, limit),
	}
	var buf bytes.Buffer
	if err := changeReviewTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderPlanPrompt(steps []string, system domain.SystemContext) (string, error) {
	plan, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return "", err
	}
	data := struct {
		Plan      string
		Installed bool
		Root      string
		Services  int
	}{
		Plan:      string(plan),
		Installed: system.Installed,
		Root:      system.InstallRoot,
		Services:  len(system.Services),
	}
	var buf bytes.Buffer
	if err := planReviewTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func headLines(code string, limit int) string {
	lines := strings.Split(code, "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n")
}
