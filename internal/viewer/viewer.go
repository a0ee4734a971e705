// Package viewer renders a single source file with line highlighting driven
// by the selection store.
package viewer

import (
	"strconv"
	"strings"
	"sync"

	"github.com/conneroisu/codetour/internal/lines"
	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/selection"
)

const (
	// ScrollBehavior is the scroll animation requested from the browser.
	ScrollBehavior = "smooth"
	// ScrollBlock aligns the first highlighted line to the top of the panel.
	ScrollBlock = "start"
)

// Viewer displays one file.
type Viewer struct {
	File     loader.FileDescriptor
	Language string

	lines       []Line
	mutex       sync.RWMutex
	lineNumbers bool
	logger      logging.Logger
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLineNumbers toggles the line number gutter.
func WithLineNumbers(enabled bool) Option {
	return func(v *Viewer) { v.lineNumbers = enabled }
}

// WithLogger sets the logger used when following a store.
func WithLogger(logger logging.Logger) Option {
	return func(v *Viewer) { v.logger = logger }
}

// New creates a viewer for file. An empty language is derived from the
// file extension.
func New(file loader.FileDescriptor, content, language string, opts ...Option) *Viewer {
	if language == "" {
		language = LanguageFor(file.Extension)
	}
	v := &Viewer{
		File:        file,
		Language:    language,
		lineNumbers: true,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("viewer")
	v.lines = Render(content, language)
	return v
}

// Path is the identity the selection store refers to.
func (v *Viewer) Path() string {
	return v.File.Path
}

// Lines returns the rendered lines.
func (v *Viewer) Lines() []Line {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.lines
}

// SetContent re-renders the viewer with new content.
func (v *Viewer) SetContent(content string) {
	rendered := Render(content, v.Language)
	v.mutex.Lock()
	v.lines = rendered
	v.mutex.Unlock()
}

// Matches reports whether the selection targets this viewer.
func (v *Viewer) Matches(state selection.State) bool {
	return state.HasFile() && state.SelectedFile == v.Path()
}

// IsHighlighted reports whether line is highlighted under state.
func (v *Viewer) IsHighlighted(state selection.State, line int) bool {
	return state.Highlights(v.Path(), line)
}

// ApplyHighlight returns one flag per rendered line, index 0 being line 1.
func (v *Viewer) ApplyHighlight(state selection.State) []bool {
	rendered := v.Lines()
	flags := make([]bool, len(rendered))
	if !v.Matches(state) {
		return flags
	}
	for i, line := range rendered {
		flags[i] = state.SelectedLines.Contains(line.Number)
	}
	return flags
}

// Highlighted returns the highlighted lines that exist in this file.
func (v *Viewer) Highlighted(state selection.State) lines.LineSet {
	if !v.Matches(state) {
		return lines.Empty()
	}
	count := len(v.Lines())
	var visible []int
	for _, n := range state.SelectedLines.Lines() {
		if n <= count {
			visible = append(visible, n)
		}
	}
	return lines.Of(visible...)
}

// FirstHighlighted returns the first highlighted line present in the file.
func (v *Viewer) FirstHighlighted(state selection.State) (int, bool) {
	return v.Highlighted(state).First()
}

// Anchor returns the DOM id of a line.
func (v *Viewer) Anchor(line int) string {
	return "L" + strconv.Itoa(line) + "-" + Slug(v.Path())
}

// ScrollCommand asks the browser to scroll a line into view.
type ScrollCommand struct {
	Path     string `json:"file"`
	Line     int    `json:"line"`
	Anchor   string `json:"anchor"`
	Behavior string `json:"behavior"`
	Block    string `json:"block"`
}

// ScrollToFirst returns the command scrolling to the first highlighted line,
// or false when nothing in this viewer is highlighted.
func (v *Viewer) ScrollToFirst(state selection.State) (ScrollCommand, bool) {
	line, ok := v.FirstHighlighted(state)
	if !ok {
		return ScrollCommand{}, false
	}
	return ScrollCommand{
		Path:     v.Path(),
		Line:     line,
		Anchor:   v.Anchor(line),
		Behavior: ScrollBehavior,
		Block:    ScrollBlock,
	}, true
}

// Slug turns a path into a DOM-safe identifier fragment.
func Slug(p string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(p) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
