package knowledge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/pteroai-go/internal/domain"
)

var (
	jsFunctionRe   = regexp.MustCompile(`function\s+(\w+)`)
	jsArrowRe      = regexp.MustCompile(`const\s+(\w+)\s*=`)
	classRe        = regexp.MustCompile(`class\s+(\w+)`)
	componentRe    = regexp.MustCompile(`(const|function)\s+([A-Z]\w+)`)
	hookRe         = regexp.MustCompile(`\buse[A-Z]\w*`)
	pythonDefRe    = regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)`)
	pythonClassRe  = regexp.MustCompile(`^class\s+(\w+)`)
	phpFunctionRe  = regexp.MustCompile(`function\s+(\w+)\s*\(`)
	phpClassRe     = regexp.MustCompile(`^(?:abstract\s+|final\s+)?(?:class|interface|trait)\s+(\w+)`)
	goFuncRe       = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?(\w+)`)
	goTypeRe       = regexp.MustCompile(`^type\s+(\w+)\s+(?:struct|interface)`)
	goImportLineRe = regexp.MustCompile(`^import\s+`)
)

// ScanStructure extracts symbols by scanning lines. Lines are numbered from 1.
func ScanStructure(content, language string) domain.FileStructure {
	s := domain.FileStructure{
		Functions:  []domain.Symbol{},
		Classes:    []domain.Symbol{},
		Imports:    []domain.Symbol{},
		Exports:    []domain.Symbol{},
		Components: []domain.Symbol{},
		Hooks:      []domain.Symbol{},
	}
	lines := strings.Split(content, "\n")

	switch {
	case language == "Python":
		scanPython(&s, lines)
	case isScriptFamily(language):
		scanScript(&s, lines, isComponentLanguage(language))
	case language == "PHP":
		scanPHP(&s, lines)
	case language == "Go":
		scanGo(&s, lines)
	}

	s.Summary = summarize(s)
	return s
}

func scanPython(s *domain.FileStructure, lines []string) {
	for i, line := range lines {
		n := i + 1
		stripped := strings.TrimSpace(line)
		switch {
		case pythonDefRe.MatchString(stripped):
			s.Functions = append(s.Functions, domain.Symbol{Name: pythonDefRe.FindStringSubmatch(stripped)[1], Line: n})
		case pythonClassRe.MatchString(stripped):
			s.Classes = append(s.Classes, domain.Symbol{Name: pythonClassRe.FindStringSubmatch(stripped)[1], Line: n})
		case strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from "):
			s.Imports = append(s.Imports, domain.Symbol{Name: stripped, Line: n})
		}
	}
}

func scanScript(s *domain.FileStructure, lines []string, components bool) {
	seenHooks := make(map[string]bool)
	for i, line := range lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		if m := jsFunctionRe.FindStringSubmatch(stripped); m != nil {
			s.Functions = append(s.Functions, domain.Symbol{Name: m[1], Line: n})
		} else if strings.Contains(stripped, "=>") {
			if m := jsArrowRe.FindStringSubmatch(stripped); m != nil {
				s.Functions = append(s.Functions, domain.Symbol{Name: m[1], Line: n})
			}
		}
		if m := classRe.FindStringSubmatch(stripped); m != nil {
			s.Classes = append(s.Classes, domain.Symbol{Name: m[1], Line: n})
		}
		if components {
			if m := componentRe.FindStringSubmatch(stripped); m != nil {
				s.Components = append(s.Components, domain.Symbol{Name: m[2], Line: n})
			}
			for _, hook := range hookRe.FindAllString(stripped, -1) {
				if seenHooks[hook] {
					continue
				}
				seenHooks[hook] = true
				s.Hooks = append(s.Hooks, domain.Symbol{Name: hook, Line: n})
			}
		}
		if strings.HasPrefix(stripped, "import ") {
			s.Imports = append(s.Imports, domain.Symbol{Name: stripped, Line: n})
		}
		if strings.HasPrefix(stripped, "export ") {
			s.Exports = append(s.Exports, domain.Symbol{Name: stripped, Line: n})
		}
	}
}

func scanPHP(s *domain.FileStructure, lines []string) {
	for i, line := range lines {
		n := i + 1
		stripped := strings.TrimSpace(line)
		if m := phpClassRe.FindStringSubmatch(stripped); m != nil {
			s.Classes = append(s.Classes, domain.Symbol{Name: m[1], Line: n})
			continue
		}
		if m := phpFunctionRe.FindStringSubmatch(stripped); m != nil {
			s.Functions = append(s.Functions, domain.Symbol{Name: m[1], Line: n})
			continue
		}
		if strings.HasPrefix(stripped, "use ") || strings.HasPrefix(stripped, "require") || strings.HasPrefix(stripped, "include") {
			s.Imports = append(s.Imports, domain.Symbol{Name: stripped, Line: n})
		}
	}
}

func scanGo(s *domain.FileStructure, lines []string) {
	inImportBlock := false
	for i, line := range lines {
		n := i + 1
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "import (":
			inImportBlock = true
		case inImportBlock && stripped == ")":
			inImportBlock = false
		case inImportBlock && stripped != "":
			s.Imports = append(s.Imports, domain.Symbol{Name: stripped, Line: n})
		case goImportLineRe.MatchString(stripped):
			s.Imports = append(s.Imports, domain.Symbol{Name: stripped, Line: n})
		case goFuncRe.MatchString(stripped):
			name := goFuncRe.FindStringSubmatch(stripped)[1]
			s.Functions = append(s.Functions, domain.Symbol{Name: name, Line: n})
			if isExported(name) {
				s.Exports = append(s.Exports, domain.Symbol{Name: name, Line: n})
			}
		case goTypeRe.MatchString(stripped):
			name := goTypeRe.FindStringSubmatch(stripped)[1]
			s.Classes = append(s.Classes, domain.Symbol{Name: name, Line: n})
			if isExported(name) {
				s.Exports = append(s.Exports, domain.Symbol{Name: name, Line: n})
			}
		}
	}
}

func isExported(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func summarize(s domain.FileStructure) string {
	var parts []string
	if len(s.Classes) > 0 {
		parts = append(parts, fmt.Sprintf("%d classes", len(s.Classes)))
	}
	if len(s.Components) > 0 {
		parts = append(parts, fmt.Sprintf("%d components", len(s.Components)))
	}
	if len(s.Functions) > 0 {
		parts = append(parts, fmt.Sprintf("%d functions", len(s.Functions)))
	}
	if len(s.Hooks) > 0 {
		parts = append(parts, fmt.Sprintf("%d hooks", len(s.Hooks)))
	}
	if len(parts) == 0 {
		return "simple code"
	}
	return strings.Join(parts, ", ")
}

func symbolNames(symbols []domain.Symbol) []string {
	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	return names
}
