package reference

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/selection"
)

// Component renders the reference. The active reference gets the
// ref-active class; the data attributes carry the binding for the page
// script.
func (r *Reference) Component(renderer *Renderer, logger logging.Logger) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		state := selection.FromContext(ctx, logger).State()

		body, err := renderer.Render(r.Body)
		if err != nil {
			logger.Warn(ctx, err, "Falling back to plain reference body", "reference", r.ID)
			body = plainParagraphs(r.Body)
		}

		var b strings.Builder
		b.WriteString(`<div class="reference`)
		if r.IsActive(state) {
			b.WriteString(` ref-active`)
		}
		b.WriteString(`" tabindex="0" data-ref="`)
		b.WriteString(strconv.FormatInt(int64(r.ID), 10))
		b.WriteString(`" data-file="`)
		b.WriteString(templ.EscapeString(r.Path))
		b.WriteString(`" data-lines="`)
		b.WriteString(templ.EscapeString(r.Lines.String()))
		b.WriteString(`">`)

		b.WriteString(`<div class="reference-header"><span class="reference-file">`)
		b.WriteString(templ.EscapeString(strings.TrimPrefix(r.Path, "/")))
		b.WriteString(`</span>`)
		if r.Description != "" {
			b.WriteString(`<span class="reference-description"> - `)
			b.WriteString(templ.EscapeString(r.Description))
			b.WriteString(`</span>`)
		}
		b.WriteString(`</div><div class="reference-body prose">`)
		b.WriteString(body)
		b.WriteString(`</div></div>`)

		_, err = io.WriteString(w, b.String())
		return err
	})
}
