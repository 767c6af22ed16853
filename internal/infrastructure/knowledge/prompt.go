package knowledge

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/pteroai-go/internal/domain"
)

var deepReadTemplate = template.Must(template.New("deep-read").Parse(`You are an expert in {{.Language}} reading source code in depth.

FILE: {{.Path}}
LANGUAGE: {{.Language}}
DETECTED STRUCTURE:
- Classes: {{.Classes}}
- Components: {{.Components}}
- Functions: {{.Functions}}
- Hooks: {{.Hooks}}

CODE (first {{.LineLimit}} lines):
` + "```" + `{{.Fence}}
{{.Preview}}
` + "```" + `

Reply with a single JSON object and nothing else:
{
  "purpose": "what this file does",
  "mainComponents": ["..."],
  "keyFunctions": ["..."],
  "stateManagement": "how state is handled",
  "dependencies": ["..."],
  "complexityLevel": "low|medium|high",
  "safeEditZones": ["regions that can be edited safely"],
  "dangerZones": ["regions that must not be touched"],
  "recommendations": ["..."],
  "understandingScore": 0.0
}`))

type deepReadData struct {
	Path       string
	Language   string
	Fence      string
	LineLimit  int
	Preview    string
	Classes    string
	Components string
	Functions  string
	Hooks      string
}

func renderDeepReadPrompt(path, language string, lines []string, limit int, s domain.FileStructure) (string, error) {
	preview := lines
	if len(preview) > limit {
		preview = preview[:limit]
	}
	data := deepReadData{
		Path:       path,
		Language:   language,
		Fence:      strings.ToLower(strings.ReplaceAll(language, " ", "")),
		LineLimit:  limit,
		Preview:    strings.Join(preview, "\n"),
		Classes:    nameList(s.Classes),
		Components: nameList(s.Components),
		Functions:  nameList(s.Functions),
		Hooks:      nameList(s.Hooks),
	}
	var buf bytes.Buffer
	if err := deepReadTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func nameList(symbols []domain.Symbol) string {
	return "[" + strings.Join(symbolNames(symbols), ", ") + "]"
}
