// Package reference implements the prose elements that point at lines of a
// file. Activating a reference writes its file, lines and id to the
// selection store in one step.
package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/codetour/internal/lines"
	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/selection"
)

// Mode decides what happens when the pointer leaves a reference.
type Mode string

const (
	// Persistent keeps the selection until another reference is activated.
	Persistent Mode = "persistent"
	// Hover clears the selected lines on pointer-leave.
	Hover Mode = "hover"
)

// ParseMode parses an interaction mode; empty means Persistent.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Persistent:
		return Persistent, nil
	case Hover:
		return Hover, nil
	default:
		return "", fmt.Errorf("unknown interaction mode %q", s)
	}
}

// Reference binds a piece of prose to a line range of a file.
type Reference struct {
	ID          selection.ReferenceID `json:"id" yaml:"id"`
	Path        string                `json:"file" yaml:"file"`
	Spec        string                `json:"spec,omitempty" yaml:"spec,omitempty"`
	Lines       lines.LineSet         `json:"lines" yaml:"-"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Body        string                `json:"body,omitempty" yaml:"body,omitempty"`

	// Warnings holds the range tokens that were skipped while binding.
	Warnings []error `json:"-" yaml:"-"`
}

// New creates a reference with the next id of store. Ids are assigned here,
// once, and never on render.
func New(store selection.Store) *Reference {
	return &Reference{ID: store.NextReferenceID(), Lines: lines.Empty()}
}

// Bind points the reference at spec lines of file. Malformed range tokens
// are skipped and recorded in Warnings.
func (r *Reference) Bind(file loader.FileDescriptor, spec string) *Reference {
	r.Path = file.Path
	r.Spec = strings.TrimSpace(spec)
	r.Lines, r.Warnings = lines.ParseLenient(r.Spec)
	return r
}

// HasRange reports whether the reference names any lines.
func (r *Reference) HasRange() bool {
	return r.Spec != ""
}

// Activate selects the reference's file, lines and id. A reference without
// a range spec writes nothing.
func (r *Reference) Activate(store selection.Store) {
	if !r.HasRange() {
		return
	}
	store.Select(r.Path, r.Lines, r.ID)
}

// Leave handles pointer-leave. Only Hover mode changes the store.
func (r *Reference) Leave(store selection.Store, mode Mode) {
	if mode != Hover {
		return
	}
	store.SetSelectedLines(lines.Empty())
}

// IsActive reports whether state was last written by this reference.
func (r *Reference) IsActive(state selection.State) bool {
	return r.ID != 0 && state.SelectedReferenceID == r.ID
}

// LogWarnings reports skipped range tokens.
func (r *Reference) LogWarnings(ctx context.Context, logger logging.Logger) {
	for _, warning := range r.Warnings {
		logger.Warn(ctx, warning, "Skipped malformed line range token",
			"reference", r.ID, "path", r.Path)
	}
}
