package tour

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/codetour/internal/selection"
)

const (
	// EmptyMessage is shown in place of the code panel for tours without files.
	EmptyMessage = "No code examples found"

	stylesheetPath = "/static/chroma.css"
	pageStylePath  = "/static/codetour.css"
	scriptPath     = "/static/codetour.js"
)

// Page renders the full tour page for the session. Child components see the
// session's store through the render context.
func (s *Session) Page() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ctx = selection.WithStore(ctx, s.store)
		s.tabs.Sync(s.store.State())

		if _, err := io.WriteString(w, s.head()); err != nil {
			return err
		}
		if err := s.prose().Render(ctx, w); err != nil {
			return err
		}
		if err := s.CodePanel().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main><script src="`+scriptPath+`"></script></body></html>`)
		return err
	})
}

func (s *Session) head() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(`<title>`)
	b.WriteString(templ.EscapeString(s.Tour.Title))
	b.WriteString(`</title><link rel="stylesheet" href="` + stylesheetPath + `">`)
	b.WriteString(`<link rel="stylesheet" href="` + pageStylePath + `"></head>`)
	b.WriteString(`<body data-session="`)
	b.WriteString(templ.EscapeString(s.ID))
	b.WriteString(`" data-interaction="`)
	b.WriteString(string(s.mode))
	b.WriteString(`"><main class="tour">`)
	return b.String()
}

func (s *Session) prose() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<article class="tour-prose"><header><h1>`)
		b.WriteString(templ.EscapeString(s.Tour.Title))
		b.WriteString(`</h1>`)
		if s.Tour.Date != "" {
			b.WriteString(`<time>`)
			b.WriteString(templ.EscapeString(s.Tour.Date))
			b.WriteString(`</time>`)
		}
		if s.Tour.Description != "" {
			b.WriteString(`<p class="tour-description">`)
			b.WriteString(templ.EscapeString(s.Tour.Description))
			b.WriteString(`</p>`)
		}
		b.WriteString(`</header>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		for i, ref := range s.references {
			renderer := s.renderers[s.markdown[i]]
			if err := ref.Component(renderer, s.logger).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</article>`)
		return err
	})
}

// CodePanel renders the tab strip and one viewer panel per file, a loading
// skeleton while files are in flight, or EmptyMessage for tours without
// files.
func (s *Session) CodePanel() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if s.tabs.Len() == 0 {
			_, err := io.WriteString(w, `<section class="tour-code"><div class="tour-empty">`+EmptyMessage+`</div></section>`)
			return err
		}
		if !s.Ready() {
			_, err := io.WriteString(w, `<section class="tour-code"><div class="tour-skeleton" aria-busy="true">`+
				`<div class="skeleton-tabs"></div><div class="skeleton-lines"></div></div></section>`)
			return err
		}

		active := s.tabs.SelectedIndex()

		var b strings.Builder
		b.WriteString(`<section class="tour-code"><div class="tabs" role="tablist">`)
		for i, tab := range s.tabs.Tabs() {
			index := strconv.Itoa(i)
			b.WriteString(`<button type="button" role="tab" class="tab`)
			if i == active {
				b.WriteString(` tab-active`)
			}
			b.WriteString(`" data-index="` + index + `" aria-selected="` + strconv.FormatBool(i == active) + `">`)
			b.WriteString(templ.EscapeString(tab.Label))
			b.WriteString(`</button>`)
		}
		b.WriteString(`</div>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		for i, v := range s.viewers {
			open := `<div class="tab-panel" role="tabpanel" data-index="` + strconv.Itoa(i) + `"`
			if i != active {
				open += ` hidden`
			}
			if _, err := io.WriteString(w, open+`>`); err != nil {
				return err
			}
			if err := v.Component().Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</div>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// Index renders the list of available tours.
func Index(tours []*Tour) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Tours</title>`)
		b.WriteString(`<link rel="stylesheet" href="` + pageStylePath + `"></head><body><main class="tour-index"><h1>Tours</h1>`)
		if len(tours) == 0 {
			b.WriteString(`<p class="tour-empty">No tours found</p>`)
		} else {
			b.WriteString(`<ul>`)
			for _, t := range tours {
				b.WriteString(`<li><a href="/tour/`)
				b.WriteString(templ.EscapeString(url.PathEscape(t.Slug)))
				b.WriteString(`">`)
				b.WriteString(templ.EscapeString(t.Title))
				b.WriteString(`</a>`)
				if t.Description != "" {
					b.WriteString(` <span class="tour-description">`)
					b.WriteString(templ.EscapeString(t.Description))
					b.WriteString(`</span>`)
				}
				b.WriteString(`</li>`)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
