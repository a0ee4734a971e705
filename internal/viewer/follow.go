package viewer

import (
	"context"

	"github.com/conneroisu/codetour/internal/lines"
	"github.com/conneroisu/codetour/internal/selection"
)

// HighlightCommand replaces the highlighted lines of a viewer. An empty
// Lines set clears the viewer.
type HighlightCommand struct {
	Path  string                `json:"file"`
	Lines lines.LineSet         `json:"lines"`
	Ref   selection.ReferenceID `json:"ref"`
}

// Sink receives the commands produced by Follow.
type Sink interface {
	Highlight(ctx context.Context, cmd HighlightCommand) error
	Scroll(ctx context.Context, cmd ScrollCommand) error
}

// Follow keeps a client in sync with the store until ctx ends or the store
// closes its watchers. Each change that touches this viewer emits a
// highlight command, followed by a scroll command when lines are selected.
func (v *Viewer) Follow(ctx context.Context, store selection.Store, sink Sink) error {
	events := store.Watch()
	defer store.Unwatch(events)
	return v.FollowEvents(ctx, events, sink)
}

// FollowEvents is Follow over a channel the caller already subscribed.
func (v *Viewer) FollowEvents(ctx context.Context, events <-chan selection.Event, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			v.Apply(ctx, event, sink)
		}
	}
}

// Apply emits the commands one store change produces for this viewer.
func (v *Viewer) Apply(ctx context.Context, event selection.Event, sink Sink) {
	before := v.Highlighted(event.Previous)
	after := v.Highlighted(event.Current)

	touched := v.Matches(event.Current) || v.Matches(event.Previous)
	if !touched || (before.Equal(after) && event.Previous.SelectedReferenceID == event.Current.SelectedReferenceID) {
		return
	}

	cmd := HighlightCommand{Path: v.Path(), Lines: after}
	if v.Matches(event.Current) {
		cmd.Ref = event.Current.SelectedReferenceID
	}
	if err := sink.Highlight(ctx, cmd); err != nil {
		v.logger.Warn(ctx, err, "Failed to send highlight", "path", v.Path())
		return
	}

	if before.Equal(after) {
		return
	}
	if scroll, ok := v.ScrollToFirst(event.Current); ok {
		if err := sink.Scroll(ctx, scroll); err != nil {
			v.logger.Warn(ctx, err, "Failed to send scroll", "path", v.Path())
		}
	}
}
