package knowledge

import (
	"path/filepath"
	"strings"
)

const languageUnknown = "Unknown"

var languageByExt = map[string]string{
	".py":   "Python",
	".js":   "JavaScript",
	".jsx":  "React JSX",
	".ts":   "TypeScript",
	".tsx":  "React TypeScript",
	".php":  "PHP",
	".css":  "CSS",
	".html": "HTML",
	".json": "JSON",
	".md":   "Markdown",
	".go":   "Go",
	".sh":   "Shell",
	".yaml": "YAML",
	".yml":  "YAML",
	".toml": "TOML",
}

// DetectLanguage maps a file extension onto a language name.
func DetectLanguage(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return languageUnknown
}

func isScriptFamily(language string) bool {
	switch language {
	case "JavaScript", "TypeScript", "React JSX", "React TypeScript":
		return true
	}
	return false
}

func isComponentLanguage(language string) bool {
	return language == "React JSX" || language == "React TypeScript"
}
