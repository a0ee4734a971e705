package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestEventTypeOf(t *testing.T) {
	assert.Equal(t, EventTypeCreated, eventTypeOf(fsnotify.Create))
	assert.Equal(t, EventTypeModified, eventTypeOf(fsnotify.Write))
	assert.Equal(t, EventTypeDeleted, eventTypeOf(fsnotify.Remove))
	assert.Equal(t, EventTypeRenamed, eventTypeOf(fsnotify.Rename))
	assert.Equal(t, EventTypeModified, eventTypeOf(fsnotify.Chmod))
}

func TestFilters(t *testing.T) {
	assert.True(t, TourFilter("/content/tours/intro.tour.yaml"))
	assert.True(t, TourFilter("intro.tour.yml"))
	assert.False(t, TourFilter("intro.yaml"))
	assert.False(t, TourFilter("a.js"))

	assert.True(t, NoHiddenFilter("tours/intro.tour.yaml"))
	assert.False(t, NoHiddenFilter("tours/.intro.tour.yaml"))
	assert.False(t, NoHiddenFilter("tours/intro.tour.yaml~"))
	assert.False(t, NoHiddenFilter("tours/intro.tour.yaml.swp"))
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)

	watcher.AddFilter(TourFilter)
	watcher.AddHandler(func(context.Context, []ChangeEvent) error { return nil })
	assert.Len(t, watcher.filters, 1)
	assert.Len(t, watcher.handlers, 1)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	assert.NoError(t, watcher.AddPath(dir))
	assert.Error(t, watcher.AddPath(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "a.tour.yaml")
	require.NoError(t, os.WriteFile(file, []byte("title: a\n"), 0o644))
	assert.Error(t, watcher.AddPath(file), "files are not directories")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "deeper"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	assert.NoError(t, watcher.AddRecursive(dir))
	assert.NotContains(t, watcher.watcher.WatchList(), filepath.Join(dir, ".git"))
}

func TestDebouncerCoalescesByPath(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)

	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "a"})
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a"})

	select {
	case events := <-d.output:
		require.Len(t, events, 2)
		assert.Equal(t, "a", events[0].Path)
		assert.Equal(t, EventTypeModified, events[0].Type)
		assert.Equal(t, "b", events[1].Path)
	case <-time.After(time.Second):
		t.Fatal("debouncer did not flush")
	}
}

func TestFileWatcherDeliversTourChanges(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewFileWatcher(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(TourFilter)
	watcher.AddFilter(NoHiddenFilter)

	var mutex sync.Mutex
	var seen []string
	watcher.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mutex.Lock()
		defer mutex.Unlock()
		for _, event := range events {
			seen = append(seen, filepath.Base(event.Path))
		}
		return nil
	})

	require.NoError(t, watcher.AddPath(dir))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.tour.yaml"), []byte("title: Intro\n"), 0o644))

	require.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return len(seen) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mutex.Lock()
	defer mutex.Unlock()
	assert.Contains(t, seen, "intro.tour.yaml")
	assert.NotContains(t, seen, "notes.md")
}
