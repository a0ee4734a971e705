package selection

import (
	"context"

	toerrors "github.com/conneroisu/codetour/internal/errors"
	"github.com/conneroisu/codetour/internal/lines"
	"github.com/conneroisu/codetour/internal/logging"
)

// NoopStore stands in when a component is rendered without a bound store.
// Reads return the initial state and every write logs a warning and does
// nothing.
type NoopStore struct {
	logger logging.Logger
}

// NewNoopStore returns a NoopStore that reports writes to logger.
func NewNoopStore(logger logging.Logger) *NoopStore {
	if logger == nil {
		logger = logging.Nop()
	}
	return &NoopStore{logger: logger.WithComponent("selection")}
}

func (n *NoopStore) warn(operation string) {
	logging.LogTourError(n.logger, context.Background(), toerrors.NewStoreError(operation))
}

// State returns the initial, empty state.
func (n *NoopStore) State() State { return State{SelectedLines: lines.Empty()} }

func (n *NoopStore) SetSelectedFile(string)                    { n.warn("SetSelectedFile") }
func (n *NoopStore) ClearSelectedFile()                        { n.warn("ClearSelectedFile") }
func (n *NoopStore) SetSelectedLines(lines.LineSet)            { n.warn("SetSelectedLines") }
func (n *NoopStore) SetSelectedReferenceID(ReferenceID)        { n.warn("SetSelectedReferenceID") }
func (n *NoopStore) ClearSelectedReferenceID()                 { n.warn("ClearSelectedReferenceID") }
func (n *NoopStore) Select(string, lines.LineSet, ReferenceID) { n.warn("Select") }
func (n *NoopStore) Clear()                                    { n.warn("Clear") }

// NextReferenceID always returns zero, the "no reference" id.
func (n *NoopStore) NextReferenceID() ReferenceID { return 0 }

// Watch returns a channel that never delivers and is never closed.
func (n *NoopStore) Watch() <-chan Event { return make(chan Event) }

// Unwatch is a no-op.
func (n *NoopStore) Unwatch(<-chan Event) {}
