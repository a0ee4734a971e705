package reference

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer turns reference bodies into HTML.
type Renderer struct {
	markdown goldmark.Markdown
	enabled  bool
}

// NewRenderer returns a renderer. With markdown disabled, bodies are escaped
// and split into paragraphs on blank lines.
func NewRenderer(markdown bool) *Renderer {
	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		enabled:  markdown,
	}
}

// Render converts body to HTML. Raw HTML in markdown is not passed through.
func (r *Renderer) Render(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", nil
	}
	if !r.enabled {
		return plainParagraphs(body), nil
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

func plainParagraphs(body string) string {
	var b strings.Builder
	for _, paragraph := range strings.Split(body, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(templ.EscapeString(paragraph))
		b.WriteString("</p>\n")
	}
	return b.String()
}
