package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/codetour/internal/lines"
	"github.com/conneroisu/codetour/internal/selection"
)

type recordingSink struct {
	mutex      sync.Mutex
	highlights []HighlightCommand
	scrolls    []ScrollCommand
	failScroll bool
}

func (r *recordingSink) Highlight(_ context.Context, cmd HighlightCommand) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.highlights = append(r.highlights, cmd)
	return nil
}

func (r *recordingSink) Scroll(_ context.Context, cmd ScrollCommand) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.failScroll {
		return errors.New("closed")
	}
	r.scrolls = append(r.scrolls, cmd)
	return nil
}

func (r *recordingSink) counts() (int, int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.highlights), len(r.scrolls)
}

func startFollow(t *testing.T, v *Viewer, store *selection.MemoryStore, sink Sink) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	watching := make(chan struct{})
	go func() {
		close(watching)
		done <- v.Follow(ctx, store, sink)
	}()
	<-watching
	// let Follow register its watcher
	time.Sleep(20 * time.Millisecond)
	return cancel, done
}

func TestFollowEmitsHighlightAndScroll(t *testing.T) {
	v := newViewer(t, "a.js")
	store := selection.NewMemoryStore()
	sink := &recordingSink{}
	cancel, done := startFollow(t, v, store, sink)

	store.Select(v.Path(), lines.MustParse("3-4"), 7)

	require.Eventually(t, func() bool {
		_, scrolls := sink.counts()
		return scrolls == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, v.Path(), sink.highlights[0].Path)
	assert.Equal(t, "3-4", sink.highlights[0].Lines.String())
	assert.Equal(t, selection.ReferenceID(7), sink.highlights[0].Ref)
	assert.Equal(t, 3, sink.scrolls[0].Line)
	assert.Equal(t, "smooth", sink.scrolls[0].Behavior)
}

func TestFollowIgnoresOtherFiles(t *testing.T) {
	v := newViewer(t, "a.js")
	store := selection.NewMemoryStore()
	sink := &recordingSink{}
	cancel, done := startFollow(t, v, store, sink)

	store.Select("/b.js", lines.MustParse("1"), 1)
	store.Select(v.Path(), lines.MustParse("2"), 2)

	require.Eventually(t, func() bool {
		highlights, _ := sink.counts()
		return highlights == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, "2", sink.highlights[0].Lines.String())
}

func TestFollowClearsWhenSelectionMovesAway(t *testing.T) {
	v := newViewer(t, "a.js")
	store := selection.NewMemoryStore()
	sink := &recordingSink{}
	cancel, done := startFollow(t, v, store, sink)

	store.Select(v.Path(), lines.MustParse("2"), 1)
	store.Select("/b.js", lines.MustParse("2"), 2)

	require.Eventually(t, func() bool {
		highlights, _ := sink.counts()
		return highlights == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.True(t, sink.highlights[1].Lines.IsEmpty())
	assert.Len(t, sink.scrolls, 1)
}

func TestFollowEndsWhenStoreCloses(t *testing.T) {
	v := newViewer(t, "a.js")
	store := selection.NewMemoryStore()
	sink := &recordingSink{failScroll: true}
	cancel, done := startFollow(t, v, store, sink)
	defer cancel()

	store.Select(v.Path(), lines.MustParse("1"), 1)
	store.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after the store closed")
	}
}
