package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageFor(t *testing.T) {
	tests := map[string]string{
		"js":      "javascript",
		".js":     "javascript",
		"JSX":     "jsx",
		"ts":      "typescript",
		"tsx":     "tsx",
		"py":      "python",
		"kt":      "kotlin",
		"rs":      "rust",
		"yml":     "yaml",
		"yaml":    "yaml",
		"sh":      "bash",
		"bash":    "bash",
		"md":      "markdown",
		"graphql": "graphql",
		"":        "text",
		"xyz":     "text",
	}
	for ext, want := range tests {
		assert.Equal(t, want, LanguageFor(ext), "extension %q", ext)
	}
}
