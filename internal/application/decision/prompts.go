package decision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/doeshing/pteroai-go/internal/domain"
)

var intentTemplate = template.Must(template.New("intent").Parse(`Classify the intent of this request for a game panel installation.

REQUEST: {{printf "%q" .Request}}

Reply with a single JSON object and nothing else:
{
  "type": "edit|create|delete|analyze|fix|optimize|other",
  "target": "file or component targeted",
  "reasoning": "what the user wants",
  "confidence": 0.0,
  "requiresFiles": ["..."],
  "actionVerb": "main verb of the action"
}`))

var planTemplate = template.Must(template.New("plan").Parse(`Draft an execution plan as an experienced engineer who has read the code below.

REQUEST: {{printf "%q" .Request}}

DETECTED INTENT:
{{.Intent}}

FILE KNOWLEDGE:{{range .Files}}

FILE: {{.Path}}
  Purpose: {{.Purpose}}
  Complexity: {{.Complexity}}
  Safe zones: {{.SafeZones}}
  Danger zones: {{.DangerZones}}
  Recommendations: {{.Recommendations}}
  Understanding: {{.Understanding}}%{{else}}
(no files analyzed){{end}}

CONTEXT:
- Mentioned files: {{.Mentions}}
- Relevant files: {{.Relevant}}

The plan must respect the existing structure, avoid the danger zones, edit inside
the safe zones, follow the recommendations and keep dependencies intact. Include
backup, validation and test steps, a correct execution order and rollback points.

Reply with a single JSON object and nothing else:
{
  "steps": [
    {
      "order": 1,
      "action": "detailed description of the step",
      "type": "backup|validate|edit|test|deploy",
      "files": ["..."],
      "reasoning": "why the step is needed",
      "safeZone": "safe zone used",
      "reversible": true,
      "riskLevel": "low|medium|high"
    }
  ],
  "estimatedTime": "...",
  "dependencies": ["..."],
  "rollbackStrategy": "...",
  "impactAssessment": "...",
  "confidence": 0.0
}`))

var alternativesTemplate = template.Must(template.New("alternatives").Parse(`Suggest 2-3 alternative approaches for:

REQUEST: {{printf "%q" .Request}}

CURRENT PLAN:
{{.Plan}}

List safer, faster or more efficient alternatives, one per line, no numbering.`))

type fileBrief struct {
	Path            string
	Purpose         string
	Complexity      string
	SafeZones       string
	DangerZones     string
	Recommendations string
	Understanding   string
}

func renderIntentPrompt(request string) (string, error) {
	return execute(intentTemplate, struct{ Request string }{request})
}

func renderPlanPrompt(request string, intent domain.Intent, files []domain.FileKnowledge, analysis domain.ContextAnalysis) (string, error) {
	intentJSON, err := json.MarshalIndent(intent, "", "  ")
	if err != nil {
		return "", err
	}
	briefs := make([]fileBrief, 0, len(files))
	for _, record := range files {
		deep := record.DeepAnalysis
		briefs = append(briefs, fileBrief{
			Path:            filepath.ToSlash(record.Path),
			Purpose:         orNA(deep.Purpose),
			Complexity:      orNA(deep.ComplexityLevel),
			SafeZones:       list(deep.SafeEditZones),
			DangerZones:     list(deep.DangerZones),
			Recommendations: list(deep.Recommendations),
			Understanding:   fmt.Sprintf("%.0f", deep.UnderstandingScore*100),
		})
	}
	relevant := make([]string, 0, len(analysis.Matches))
	for _, match := range analysis.Matches {
		relevant = append(relevant, match.Path)
	}
	return execute(planTemplate, struct {
		Request  string
		Intent   string
		Files    []fileBrief
		Mentions string
		Relevant string
	}{
		Request:  request,
		Intent:   string(intentJSON),
		Files:    briefs,
		Mentions: list(analysis.Mentions),
		Relevant: list(relevant),
	})
}

func renderAlternativesPrompt(request string, plan []string) (string, error) {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", err
	}
	return execute(alternativesTemplate, struct {
		Request string
		Plan    string
	}{request, string(planJSON)})
}

func execute(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func list(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
