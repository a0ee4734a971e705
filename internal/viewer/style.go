package viewer

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

const highlightRules = `.code-viewer .line { display: block; }
.code-viewer .line.hl { box-shadow: inset 3px 0 0 #f0b429; }
`

// Stylesheet returns the CSS for the light style, with the dark style
// applied under prefers-color-scheme: dark. Unknown style names fall back to
// chroma's default style.
func Stylesheet(light, dark string) ([]byte, error) {
	formatter := html.New(html.WithClasses(true), html.WithLineNumbers(true))

	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, styles.Get(light)); err != nil {
		return nil, fmt.Errorf("writing %s style: %w", light, err)
	}

	if dark != "" {
		var darkCSS bytes.Buffer
		if err := formatter.WriteCSS(&darkCSS, styles.Get(dark)); err != nil {
			return nil, fmt.Errorf("writing %s style: %w", dark, err)
		}
		buf.WriteString("@media (prefers-color-scheme: dark) {\n")
		buf.Write(darkCSS.Bytes())
		buf.WriteString("}\n")
	}

	buf.WriteString(highlightRules)
	return buf.Bytes(), nil
}
