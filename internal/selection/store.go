// Package selection holds the per-page selection state that ties prose
// references to code viewers.
//
// A Store records which file is selected, which of its lines are highlighted
// and which reference made the selection. Writes are synchronous and the last
// write wins. Each page view owns its own MemoryStore; it travels to the
// components that need it through a context.Context (see WithStore and
// FromContext), never through package state.
package selection

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/codetour/internal/lines"
)

// ReferenceID identifies a reference element within one store.
type ReferenceID int64

// State is a snapshot of the selection.
type State struct {
	// SelectedFile is the path of the selected file; empty when none.
	SelectedFile string `json:"selectedFile"`
	// SelectedLines only applies to SelectedFile.
	SelectedLines lines.LineSet `json:"selectedLines"`
	// SelectedReferenceID is zero when no reference is active.
	SelectedReferenceID ReferenceID `json:"selectedReferenceId"`
}

// HasFile reports whether a file is selected.
func (s State) HasFile() bool {
	return s.SelectedFile != ""
}

// HasReference reports whether a reference is active.
func (s State) HasReference() bool {
	return s.SelectedReferenceID != 0
}

// Highlights reports whether line of the file at path is highlighted.
// Lines are ignored unless path is the selected file.
func (s State) Highlights(path string, line int) bool {
	return s.HasFile() && s.SelectedFile == path && s.SelectedLines.Contains(line)
}

// Equal reports whether two snapshots describe the same selection.
func (s State) Equal(other State) bool {
	return s.SelectedFile == other.SelectedFile &&
		s.SelectedReferenceID == other.SelectedReferenceID &&
		s.SelectedLines.Equal(other.SelectedLines)
}

// Event is delivered to watchers after every mutation.
type Event struct {
	Previous  State
	Current   State
	Timestamp time.Time
}

// Store is the capability set shared by the real and the no-op store.
type Store interface {
	State() State

	SetSelectedFile(path string)
	ClearSelectedFile()
	SetSelectedLines(set lines.LineSet)
	SetSelectedReferenceID(id ReferenceID)
	ClearSelectedReferenceID()

	// Select writes file, lines and reference in one step so watchers never
	// observe a partially applied selection.
	Select(path string, set lines.LineSet, id ReferenceID)
	Clear()

	NextReferenceID() ReferenceID

	Watch() <-chan Event
	Unwatch(ch <-chan Event)
}

// MemoryStore is the in-process Store owned by one page session.
type MemoryStore struct {
	state    State
	mutex    sync.RWMutex
	watchers []chan Event
	nextID   atomic.Int64
}

// NewMemoryStore creates a store in the initial state: no file, no lines,
// no reference.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:    State{SelectedLines: lines.Empty()},
		watchers: make([]chan Event, 0),
	}
}

// State returns the current snapshot.
func (s *MemoryStore) State() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state
}

// SetSelectedFile selects the file at path. An empty path clears it.
func (s *MemoryStore) SetSelectedFile(path string) {
	s.update(func(st *State) { st.SelectedFile = path })
}

// ClearSelectedFile deselects the current file.
func (s *MemoryStore) ClearSelectedFile() {
	s.update(func(st *State) { st.SelectedFile = "" })
}

// SetSelectedLines replaces the highlighted lines.
func (s *MemoryStore) SetSelectedLines(set lines.LineSet) {
	s.update(func(st *State) { st.SelectedLines = set })
}

// SetSelectedReferenceID marks the reference with id as active.
func (s *MemoryStore) SetSelectedReferenceID(id ReferenceID) {
	s.update(func(st *State) { st.SelectedReferenceID = id })
}

// ClearSelectedReferenceID clears the active reference.
func (s *MemoryStore) ClearSelectedReferenceID() {
	s.update(func(st *State) { st.SelectedReferenceID = 0 })
}

// Select sets file, lines and active reference together.
func (s *MemoryStore) Select(path string, set lines.LineSet, id ReferenceID) {
	s.update(func(st *State) {
		st.SelectedFile = path
		st.SelectedLines = set
		st.SelectedReferenceID = id
	})
}

// Clear resets the store to its initial state.
func (s *MemoryStore) Clear() {
	s.update(func(st *State) { *st = State{SelectedLines: lines.Empty()} })
}

// NextReferenceID hands out ids in construction order, starting at 1.
func (s *MemoryStore) NextReferenceID() ReferenceID {
	return ReferenceID(s.nextID.Add(1))
}

// Watch returns a channel that receives an Event after every mutation.
func (s *MemoryStore) Watch() <-chan Event {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ch := make(chan Event, 64)
	s.watchers = append(s.watchers, ch)
	return ch
}

// Unwatch removes a watcher channel and closes it
func (s *MemoryStore) Unwatch(ch <-chan Event) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, watcher := range s.watchers {
		if watcher == ch {
			close(watcher)
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			break
		}
	}
}

// Close closes every watcher channel. The store stays readable.
func (s *MemoryStore) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, watcher := range s.watchers {
		close(watcher)
	}
	s.watchers = nil
}

func (s *MemoryStore) update(mutate func(*State)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	previous := s.state
	mutate(&s.state)

	event := Event{
		Previous:  previous,
		Current:   s.state,
		Timestamp: time.Now(),
	}

	for _, watcher := range s.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
