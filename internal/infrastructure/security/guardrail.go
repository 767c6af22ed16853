package security

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/pteroai-go/assets"
	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/pkg/filesystem"
)

// Guardrail scans proposed code for dangerous constructs.
type Guardrail struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule. Patterns are matched case-insensitively.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads guardrail rules from path, or the built-in table when the file
// is absent or lists no patterns.
func NewGuardrail(path string) (*Guardrail, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	return compile(rules.Rules.DangerPatterns)
}

// DefaultGuardrail returns a guardrail over the built-in table.
func DefaultGuardrail() *Guardrail {
	g, err := compile(defaultPatterns())
	if err != nil {
		panic(fmt.Sprintf("built-in danger patterns: %v", err))
	}
	return g
}

func compile(patterns []DangerPattern) (*Guardrail, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile danger pattern %q: %w", pattern.Pattern, err)
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}
	return &Guardrail{patterns: compiled}, nil
}

// Scan returns one message per match in table order. A pattern that matches
// three times contributes three messages.
func (g *Guardrail) Scan(code string) []string {
	var risks []string
	for _, pattern := range g.patterns {
		matches := pattern.re.FindAllStringIndex(code, -1)
		for range matches {
			risks = append(risks, pattern.rule.Message)
		}
	}
	return risks
}

// Patterns returns the active rules.
func (g *Guardrail) Patterns() []DangerPattern {
	out := make([]DangerPattern, 0, len(g.patterns))
	for _, p := range g.patterns {
		out = append(out, p.rule)
	}
	return out
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	if path == "" {
		rules.Rules.DangerPatterns = defaultPatterns()
		return rules, nil
	}
	data, err := os.ReadFile(filesystem.ExpandPath(path))
	if err != nil {
		// fall back to defaults
		rules.Rules.DangerPatterns = defaultPatterns()
		return rules, nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if len(rules.Rules.DangerPatterns) == 0 {
		rules.Rules.DangerPatterns = defaultPatterns()
	}
	return rules, nil
}

func defaultPatterns() []DangerPattern {
	var rules RulesFile
	if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &rules); err != nil {
		panic(fmt.Sprintf("embedded guardrail rules: %v", err))
	}
	return rules.Rules.DangerPatterns
}

// WriteDefaultRules writes the built-in rules to path unless a file already exists there.
func WriteDefaultRules(path string) (bool, error) {
	path = filesystem.ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := filesystem.EnsureDir(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return false, fmt.Errorf("create rules dir: %w", err)
	}
	if err := filesystem.WriteFileAtomic(path, assets.DefaultGuardrailYAML, 0o644); err != nil {
		return false, fmt.Errorf("write rules file %s: %w", path, err)
	}
	return true, nil
}
