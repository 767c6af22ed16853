package security

import (
	"regexp"
	"sort"
)

var dependencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^import\s+(\S+)`),
	regexp.MustCompile(`(?m)^from\s+(\S+)\s+import`),
	regexp.MustCompile(`import\s+.*?\s+from\s+["'](.+?)["']`),
	regexp.MustCompile(`require\(\s*["'](.+?)["']\s*\)`),
	regexp.MustCompile(`(?m)^use\s+([\w\\]+)\s*;`),
}

// ExtractDependencies returns the deduplicated, sorted set of imported modules.
func ExtractDependencies(code string) []string {
	seen := make(map[string]struct{})
	for _, re := range dependencyPatterns {
		for _, match := range re.FindAllStringSubmatch(code, -1) {
			if len(match) > 1 && match[1] != "" {
				seen[match[1]] = struct{}{}
			}
		}
	}
	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}
