package decision

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/doeshing/pteroai-go/internal/domain"
)

var mentionRe = regexp.MustCompile(`(?i)[\w/.\-]+\.(tsx?|jsx?|php|py|css|json|html|md|go|sh|ya?ml|toml)\b`)

// RequestKey is the context cache key for a request's decision. Exact text only.
func RequestKey(request string) string {
	sum := sha256.Sum256([]byte(request))
	return domain.RequestCachePrefix + hex.EncodeToString(sum[:])
}

// ExtractMentions returns the path-like tokens of request in order of appearance.
func ExtractMentions(request string) []string {
	matches := mentionRe.FindAllString(request, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// ResolveTargets probes root joined with each candidate root for every mention and
// keeps the first existing path per mention. Paths that escape root and duplicates
// are dropped.
func ResolveTargets(root string, candidateRoots, mentions []string, exists func(string) bool) []string {
	targets := []string{}
	seen := make(map[string]struct{})
	for _, mention := range mentions {
		clean := strings.TrimPrefix(filepath.ToSlash(mention), "/")
		for _, candidate := range candidateRoots {
			path := filepath.Join(root, candidate, clean)
			if !withinRoot(root, path) || !exists(path) {
				continue
			}
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				targets = append(targets, path)
			}
			break
		}
	}
	return targets
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// AnalyzeContext searches the snapshot depth-first for files whose path contains
// any mentioned token, collecting matches in traversal order.
func AnalyzeContext(request string, system domain.SystemContext) domain.ContextAnalysis {
	analysis := domain.ContextAnalysis{
		Mentions: ExtractMentions(request),
		Matches:  []domain.ContextMatch{},
	}
	if len(analysis.Mentions) == 0 {
		return analysis
	}
	system.Walk(func(nodePath string, node domain.ContextNode) bool {
		if node.Type != domain.NodeFile {
			return true
		}
		for _, token := range analysis.Mentions {
			if strings.Contains(nodePath, token) {
				analysis.Matches = append(analysis.Matches, domain.ContextMatch{
					Path:  nodePath,
					Type:  node.Type,
					Token: token,
				})
				break
			}
		}
		return true
	})
	return analysis
}

// ParseAlternatives keeps trimmed, non-empty, non-comment lines, at most MaxAlternatives.
func ParseAlternatives(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
		if len(out) == domain.MaxAlternatives {
			break
		}
	}
	return out
}
