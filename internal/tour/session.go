package tour

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	toerrors "github.com/conneroisu/codetour/internal/errors"
	"github.com/conneroisu/codetour/internal/lines"
	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/reference"
	"github.com/conneroisu/codetour/internal/selection"
	"github.com/conneroisu/codetour/internal/viewer"
)

// Options control how a tour is presented.
type Options struct {
	// Interaction applies when the tour document does not choose one.
	Interaction reference.Mode
	// Markdown applies when neither the tour nor the step chooses.
	Markdown      bool
	LineNumbers   bool
	TitleCaseTabs bool
	Logger        logging.Logger
}

// DefaultOptions returns persistent interaction with markdown bodies and
// line numbers.
func DefaultOptions() Options {
	return Options{
		Interaction: reference.Persistent,
		Markdown:    true,
		LineNumbers: true,
		Logger:      logging.Nop(),
	}
}

// Sink receives everything a connected page needs to stay in sync.
type Sink interface {
	viewer.Sink
	Tab(ctx context.Context, index int) error
}

// Session is one page view of a tour. It owns the selection store and
// everything bound to it.
type Session struct {
	ID      string
	Tour    *Tour
	Created time.Time

	store      *selection.MemoryStore
	references []*reference.Reference
	markdown   []bool
	viewers    []*viewer.Viewer
	tabs       *TabGroup
	cache      *loader.Cache
	loader     *loader.Loader
	mode       reference.Mode
	renderers  map[bool]*reference.Renderer
	logger     logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Open creates a session for the tour. References get their ids here, in
// step order. The session outlives ctx and ends with Close.
func (t *Tour) Open(ctx context.Context, l *loader.Loader, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Interaction == "" {
		opts.Interaction = reference.Persistent
	}

	id := uuid.NewString()
	logger := opts.Logger.WithComponent("session").With("session", id, "tour", t.Slug)
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s := &Session{
		ID:      id,
		Tour:    t,
		Created: time.Now(),
		store:   selection.NewMemoryStore(),
		tabs:    NewTabGroup(t.files, opts.TitleCaseTabs),
		cache:   loader.NewCache(),
		loader:  l,
		mode:    t.Mode(opts.Interaction),
		renderers: map[bool]*reference.Renderer{
			true:  reference.NewRenderer(true),
			false: reference.NewRenderer(false),
		},
		logger: logger,
		ctx:    sessionCtx,
		cancel: cancel,
	}

	tourMarkdown := opts.Markdown
	if t.Markdown != nil {
		tourMarkdown = *t.Markdown
	}

	for _, step := range t.Steps {
		file, found := t.ResolveFile(step.File)
		if !found {
			logger.Warn(ctx, nil, "Step references a file outside the tour", "file", step.File)
		}

		ref := reference.New(s.store).Bind(file, step.Lines)
		ref.Description = step.Description
		ref.Body = step.Body
		ref.LogWarnings(ctx, logger)

		md := tourMarkdown
		if step.Markdown != nil {
			md = *step.Markdown
		}
		s.references = append(s.references, ref)
		s.markdown = append(s.markdown, md)
	}

	for _, file := range t.files {
		s.viewers = append(s.viewers, viewer.New(file, loader.LoadingPlaceholder, "",
			viewer.WithLineNumbers(opts.LineNumbers),
			viewer.WithLogger(logger)))
	}

	logger.Debug(ctx, "Opened session", "references", len(s.references), "files", len(s.viewers))
	return s
}

// Load fetches the tour's files into the session. Files that fail show
// loader.ErrorPlaceholder. Nothing is written if ctx ends first.
func (s *Session) Load(ctx context.Context) bool {
	if s.loader == nil {
		return s.Ready()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	s.loader.LoadInto(ctx, s.cache, s.Tour.files)
	for _, v := range s.viewers {
		if content, ok := s.cache.Lookup(v.Path()); ok {
			v.SetContent(content)
		}
	}
	return s.Ready()
}

// Ready reports whether every file has loaded or failed.
func (s *Session) Ready() bool {
	return s.cache.Ready(s.Tour.files)
}

// Store returns the session's selection store.
func (s *Session) Store() selection.Store {
	return s.store
}

// State returns the current selection.
func (s *Session) State() selection.State {
	return s.store.State()
}

// Mode returns the effective interaction mode.
func (s *Session) Mode() reference.Mode {
	return s.mode
}

// References returns the bound references in step order.
func (s *Session) References() []*reference.Reference {
	return s.references
}

// Reference finds a reference by id.
func (s *Session) Reference(id selection.ReferenceID) (*reference.Reference, bool) {
	for _, ref := range s.references {
		if ref.ID == id {
			return ref, true
		}
	}
	return nil, false
}

// Viewers returns one viewer per file in tab order.
func (s *Session) Viewers() []*viewer.Viewer {
	return s.viewers
}

// Tabs returns the session's tab group.
func (s *Session) Tabs() *TabGroup {
	return s.tabs
}

// Activate applies pointer-over, tap or focus on a reference.
func (s *Session) Activate(ctx context.Context, id selection.ReferenceID) error {
	ref, ok := s.Reference(id)
	if !ok {
		return toerrors.ErrUnknownReference(int64(id))
	}
	ref.Activate(s.store)
	s.tabs.Sync(s.store.State())
	s.logger.Debug(ctx, "Activated reference", "reference", id, "path", ref.Path, "lines", ref.Lines.String())
	return nil
}

// Leave applies pointer-leave on a reference.
func (s *Session) Leave(ctx context.Context, id selection.ReferenceID) error {
	ref, ok := s.Reference(id)
	if !ok {
		return toerrors.ErrUnknownReference(int64(id))
	}
	ref.Leave(s.store, s.mode)
	return nil
}

// SelectTab shows tab i and selects its file. Switching to another file
// drops the selected lines and the active reference, since both belong to
// the previous file. Out-of-range indexes are ignored with a warning.
func (s *Session) SelectTab(ctx context.Context, i int) bool {
	tab, ok := s.tabs.Select(i)
	if !ok {
		s.logger.Warn(ctx, nil, "Ignoring out-of-range tab", "index", i, "tabs", s.tabs.Len())
		return false
	}
	if s.store.State().SelectedFile != tab.File.Path {
		s.store.Select(tab.File.Path, lines.Empty(), 0)
	}
	return true
}

// Follow streams highlight, scroll and tab updates to sink until ctx or
// the session ends.
func (s *Session) Follow(ctx context.Context, sink Sink) error {
	return s.Subscribe(sink)(ctx)
}

// Subscribe registers sink with the store right away, so no change made
// after it returns is missed, and returns the function that streams the
// updates. The returned function must be called. For each change the tab
// command goes out before the viewers' highlight and scroll commands, so
// the browser reveals a panel before scrolling it.
func (s *Session) Subscribe(sink Sink) func(ctx context.Context) error {
	events := s.store.Watch()
	// baseline taken with the watcher so a change before the follower
	// starts still produces a tab command
	lastTab := s.tabs.SelectedIndex()

	return func(ctx context.Context) error {
		defer s.store.Unwatch(events)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(s.ctx, cancel)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-events:
				if !ok {
					return nil
				}
				lastTab = s.followTab(ctx, event, lastTab, sink)
				for _, v := range s.viewers {
					v.Apply(ctx, event, sink)
				}
			}
		}
	}
}

// followTab sends the tab index when event moved it away from last and
// returns the index now showing.
func (s *Session) followTab(ctx context.Context, event selection.Event, last int, sink Sink) int {
	index, _ := s.tabs.Sync(event.Current)
	if index == last {
		return last
	}
	if err := sink.Tab(ctx, index); err != nil {
		s.logger.Warn(ctx, err, "Failed to send tab change", "index", index)
	}
	return index
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close ends the session, stopping every follower.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		s.store.Close()
		s.logger.Debug(context.Background(), "Closed session")
	})
}
