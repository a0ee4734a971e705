package viewer

import "strings"

// DefaultLanguage is used for unknown extensions.
const DefaultLanguage = "text"

var languages = map[string]string{
	"js":      "javascript",
	"jsx":     "jsx",
	"ts":      "typescript",
	"tsx":     "tsx",
	"py":      "python",
	"rb":      "ruby",
	"php":     "php",
	"java":    "java",
	"kt":      "kotlin",
	"go":      "go",
	"rs":      "rust",
	"swift":   "swift",
	"dart":    "dart",
	"html":    "html",
	"css":     "css",
	"scss":    "scss",
	"less":    "less",
	"json":    "json",
	"yaml":    "yaml",
	"yml":     "yaml",
	"xml":     "xml",
	"sql":     "sql",
	"sh":      "bash",
	"bash":    "bash",
	"md":      "markdown",
	"mdx":     "mdx",
	"graphql": "graphql",
	"git":     "git",
}

// LanguageFor maps a file extension to a highlighting language.
func LanguageFor(extension string) string {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
	if lang, ok := languages[ext]; ok {
		return lang
	}
	return DefaultLanguage
}
