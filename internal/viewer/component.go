package viewer

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/codetour/internal/selection"
)

// Component renders the viewer against the selection store bound to the
// render context. The first highlighted line carries the hl-start class so
// the page script can scroll to it on load.
func (v *Viewer) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		state := selection.FromContext(ctx, v.logger).State()
		return v.write(w, state)
	})
}

// HTML renders the viewer to a string for state.
func (v *Viewer) HTML(state selection.State) string {
	var b strings.Builder
	_ = v.write(&b, state)
	return b.String()
}

func (v *Viewer) write(w io.Writer, state selection.State) error {
	flags := v.ApplyHighlight(state)
	first, hasFirst := v.FirstHighlighted(state)

	var b strings.Builder
	b.WriteString(`<figure class="code-viewer" data-file="`)
	b.WriteString(templ.EscapeString(v.Path()))
	b.WriteString(`" data-language="`)
	b.WriteString(templ.EscapeString(v.Language))
	b.WriteString(`"><pre class="chroma"><code>`)

	for i, line := range v.Lines() {
		classes := "line"
		if flags[i] {
			classes += " hl"
		}
		if hasFirst && line.Number == first {
			classes += " hl-start"
		}

		b.WriteString(`<span class="`)
		b.WriteString(classes)
		b.WriteString(`" id="`)
		b.WriteString(v.Anchor(line.Number))
		b.WriteString(`" data-line="`)
		b.WriteString(strconv.Itoa(line.Number))
		b.WriteString(`">`)
		if v.lineNumbers {
			b.WriteString(`<span class="ln">`)
			b.WriteString(strconv.Itoa(line.Number))
			b.WriteString(`</span>`)
		}
		b.WriteString(`<span class="cl">`)
		for _, token := range line.Tokens {
			if token.Class == "" {
				b.WriteString(templ.EscapeString(token.Text))
				continue
			}
			b.WriteString(`<span class="`)
			b.WriteString(token.Class)
			b.WriteString(`">`)
			b.WriteString(templ.EscapeString(token.Text))
			b.WriteString(`</span>`)
		}
		b.WriteString("</span></span>\n")
	}

	b.WriteString(`</code></pre></figure>`)
	_, err := io.WriteString(w, b.String())
	return err
}
