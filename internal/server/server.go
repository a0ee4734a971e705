// Package server exposes tours over HTTP: the tour index, one session per
// page view, the session websocket and the file-content API that relative
// code examples are fetched through.
package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/conneroisu/codetour/internal/config"
	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/metrics"
	"github.com/conneroisu/codetour/internal/registry"
	"github.com/conneroisu/codetour/internal/tour"
	"github.com/conneroisu/codetour/internal/version"
	"github.com/conneroisu/codetour/internal/viewer"
	"github.com/conneroisu/codetour/internal/watcher"
)

// Server serves tours with live selection sync
type Server struct {
	config     *config.Config
	content    billy.Filesystem
	static     billy.Filesystem
	registry   *registry.TourRegistry
	loader     *loader.Loader
	sessions   *sessionTable
	watcher    *watcher.FileWatcher
	options    tour.Options
	stylesheet []byte
	logger     logging.Logger
	httpClient *http.Client

	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex

	httpServer    *http.Server
	serverMutex   sync.RWMutex
	shutdownOnce  sync.Once
	isShutdown    bool
	shutdownMutex sync.RWMutex
}

// UpdateMessage is a server-initiated message that is not tied to a viewer
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Option configures a Server.
type Option func(*Server)

// WithFilesystem replaces the content root filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(s *Server) { s.content = fs }
}

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithHTTPClient sets the client used to fetch remote code examples.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) { s.httpClient = client }
}

// New creates a server and loads the tours found under the content root.
// Broken tour documents are logged and skipped.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		config:   cfg,
		registry: registry.NewTourRegistry(),
		clients:  make(map[*Client]struct{}),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("server")

	if s.content == nil {
		s.content = osfs.New(cfg.Content.Root)
	}
	if cfg.Content.Static != "" {
		s.static = osfs.New(cfg.Content.Static)
	}

	stylesheet, err := viewer.Stylesheet(cfg.Viewer.Style, cfg.Viewer.DarkStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to build stylesheet: %w", err)
	}
	s.stylesheet = stylesheet

	loaderOpts := []loader.Option{loader.WithLogger(s.logger)}
	if cfg.Loader.BaseURL == "" {
		loaderOpts = append(loaderOpts, loader.WithFilesystem(s.content))
	}
	if s.httpClient != nil {
		loaderOpts = append(loaderOpts, loader.WithHTTPClient(s.httpClient))
	}
	s.loader = loader.New(cfg.LoaderConfig(), loaderOpts...)

	s.options = cfg.TourOptions(s.logger)
	s.sessions = newSessionTable(cfg.Server.MaxSessions, cfg.Server.SessionTTL, s.logger)

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.GitCommit, info.GoVersion).Set(1)

	if err := s.LoadTours(context.Background()); err != nil {
		s.logger.Warn(context.Background(), err, "Some tours failed to load")
	}
	return s, nil
}

// LoadTours rereads the tours directory into the registry. Tours that
// parse are registered even when others fail.
func (s *Server) LoadTours(ctx context.Context) error {
	perf := logging.StartOperation(s.logger, "load_tours")
	tours, err := tour.LoadDir(s.content, s.config.Content.Tours)
	s.registry.Sync(tours)
	metrics.ToursLoaded.Set(float64(s.registry.Count()))
	perf.End(ctx, "tours", s.registry.Count())
	return err
}

// Start serves until the server is shut down
func (s *Server) Start(ctx context.Context) error {
	if s.config.Tour.Watch {
		s.setupFileWatcher(ctx)
	}
	go s.forwardTourEvents(ctx, s.registry.Watch())

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Serving tours", "addr", server.Addr, "tours", s.registry.Count())

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Handler returns the routed handler wrapped in the server middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /tour/{slug}", s.handleTour)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/file-content", s.handleFileContent)
	mux.HandleFunc("GET /api/sessions/{id}/selection", s.handleSelection)
	mux.HandleFunc("GET /static/{file}", s.handleStatic)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())

	return s.addMiddleware(mux)
}

func (s *Server) setupFileWatcher(ctx context.Context) {
	fw, err := watcher.NewFileWatcher(s.config.Tour.Debounce, s.logger)
	if err != nil {
		s.logger.Warn(ctx, err, "Failed to create file watcher")
		return
	}

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.TourFilter)
	fw.AddHandler(s.handleTourChange)

	dir := filepath.Join(s.config.Content.Root, s.config.Content.Tours)
	if err := fw.AddRecursive(dir); err != nil {
		s.logger.Warn(ctx, err, "Failed to watch tours", "dir", dir)
		return
	}
	if err := fw.Start(ctx); err != nil {
		s.logger.Warn(ctx, err, "Failed to start file watcher")
		return
	}

	s.serverMutex.Lock()
	s.watcher = fw
	s.serverMutex.Unlock()
}

func (s *Server) handleTourChange(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, event := range events {
		s.logger.Debug(ctx, "Tour file changed", "path", event.Path, "type", event.Type.String())
	}
	return s.LoadTours(ctx)
}

// forwardTourEvents tells the pages showing a tour to reload after it
// changes.
func (s *Server) forwardTourEvents(ctx context.Context, events <-chan registry.TourEvent) {
	defer s.registry.UnWatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.logger.Info(ctx, "Tour changed", "tour", event.Tour.Slug, "change", event.Type.String())
			s.broadcast(event.Tour.Slug, UpdateMessage{
				Type:      "reload",
				Target:    event.Tour.Slug,
				Timestamp: event.Timestamp,
			})
		}
	}
}

// Shutdown stops the watcher, ends every session and shuts the HTTP server
// down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.shutdownMutex.Lock()
		s.isShutdown = true
		s.shutdownMutex.Unlock()

		s.serverMutex.RLock()
		fw := s.watcher
		server := s.httpServer
		s.serverMutex.RUnlock()

		if fw != nil {
			if err := fw.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}

		s.sessions.purge()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

func (s *Server) shuttingDown() bool {
	s.shutdownMutex.RLock()
	defer s.shutdownMutex.RUnlock()
	return s.isShutdown
}
