// Package registry holds the tours the server can open, keyed by slug, and
// broadcasts changes to watchers.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/conneroisu/codetour/internal/tour"
)

// TourRegistry manages all loaded tours
type TourRegistry struct {
	tours    map[string]*tour.Tour
	mutex    sync.RWMutex
	watchers []chan TourEvent
}

// TourEvent represents a change in the registry
type TourEvent struct {
	Type      EventType
	Tour      *tour.Tour
	Timestamp time.Time
}

// EventType represents the type of tour event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// NewTourRegistry creates an empty registry
func NewTourRegistry() *TourRegistry {
	return &TourRegistry{
		tours:    make(map[string]*tour.Tour),
		watchers: make([]chan TourEvent, 0),
	}
}

// ValidateSlug rejects slugs that cannot appear in a /tour/{slug} path.
func ValidateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("empty tour slug")
	}
	if strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		return fmt.Errorf("tour slug %q contains a path separator", slug)
	}
	for _, r := range slug {
		if unicode.IsControl(r) {
			return fmt.Errorf("tour slug %q contains control characters", slug)
		}
	}
	return nil
}

// Register adds or updates a tour
func (r *TourRegistry) Register(t *tour.Tour) error {
	if t == nil {
		return fmt.Errorf("nil tour")
	}
	if err := ValidateSlug(t.Slug); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.tours[t.Slug]; exists {
		eventType = EventTypeUpdated
	}
	r.tours[t.Slug] = t
	r.notify(TourEvent{Type: eventType, Tour: t, Timestamp: time.Now()})
	return nil
}

// Get retrieves a tour by slug
func (r *TourRegistry) Get(slug string) (*tour.Tour, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	t, exists := r.tours[slug]
	return t, exists
}

// All returns every tour sorted by slug
func (r *TourRegistry) All() []*tour.Tour {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*tour.Tour, 0, len(r.tours))
	for _, t := range r.tours {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result
}

// Remove removes a tour
func (r *TourRegistry) Remove(slug string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	t, exists := r.tours[slug]
	if !exists {
		return
	}
	delete(r.tours, slug)
	r.notify(TourEvent{Type: EventTypeRemoved, Tour: t, Timestamp: time.Now()})
}

// Sync makes the registry hold exactly the given tours, registering new or
// changed ones and removing the rest. Invalid slugs are skipped. A tour
// loaded from the same file with the same modification time is unchanged
// and emits no event.
func (r *TourRegistry) Sync(tours []*tour.Tour) {
	keep := make(map[string]bool, len(tours))
	for _, t := range tours {
		if old, ok := r.Get(t.Slug); ok && sameRevision(old, t) {
			keep[t.Slug] = true
			continue
		}
		if err := r.Register(t); err == nil {
			keep[t.Slug] = true
		}
	}

	for _, t := range r.All() {
		if !keep[t.Slug] {
			r.Remove(t.Slug)
		}
	}
}

func sameRevision(a, b *tour.Tour) bool {
	return a.Source != "" && a.Source == b.Source && !a.ModTime.IsZero() && a.ModTime.Equal(b.ModTime)
}

// Watch returns a channel that receives tour events
func (r *TourRegistry) Watch() <-chan TourEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan TourEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *TourRegistry) UnWatch(ch <-chan TourEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered tours
func (r *TourRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.tours)
}

// notify must be called with the write lock held.
func (r *TourRegistry) notify(event TourEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
