package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/conneroisu/codetour/internal/config"
	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/selection"
	"github.com/conneroisu/codetour/internal/tour"
)

// environment shared by the commands that work on one tour
type environment struct {
	config  *config.Config
	logger  logging.Logger
	content billy.Filesystem
}

// newEnvironment loads the configuration and prints its warnings, such as
// a privileged port or an unknown chroma style, to stderr.
func newEnvironment(stderr io.Writer) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if result := config.ValidateConfigWithDetails(cfg); result.HasWarnings() {
		fmt.Fprint(stderr, result.String())
	}
	return &environment{
		config:  cfg,
		logger:  logging.NewLogger(cfg.LoggerConfig()),
		content: osfs.New(cfg.Content.Root),
	}, nil
}

func (e *environment) loader() *loader.Loader {
	opts := []loader.Option{loader.WithLogger(e.logger)}
	if e.config.Loader.BaseURL == "" {
		opts = append(opts, loader.WithFilesystem(e.content))
	}
	return loader.New(e.config.LoaderConfig(), opts...)
}

// openTour resolves name as a tour document on disk, else as a slug in the
// tours directory.
func (e *environment) openTour(name string) (*tour.Tour, error) {
	if _, ok := tour.SlugFor(filepath.Base(name)); ok {
		if _, err := os.Stat(name); err == nil {
			dir, file := filepath.Split(name)
			if dir == "" {
				dir = "."
			}
			return tour.LoadFile(osfs.New(dir), file)
		}
	}

	for _, ext := range tour.Extensions {
		path := e.content.Join(e.config.Content.Tours, name+ext)
		if _, err := e.content.Stat(path); err == nil {
			return tour.LoadFile(e.content, path)
		}
	}
	return nil, fmt.Errorf("tour %q not found in %s", name, filepath.Join(e.config.Content.Root, e.config.Content.Tours))
}

// openSession opens and loads a session, then activates ref when non-zero.
func (e *environment) openSession(ctx context.Context, t *tour.Tour, ref int64) (*tour.Session, error) {
	session := t.Open(ctx, e.loader(), e.config.TourOptions(e.logger))
	session.Load(ctx)
	if ref != 0 {
		if err := session.Activate(ctx, selection.ReferenceID(ref)); err != nil {
			session.Close()
			return nil, err
		}
	}
	return session, nil
}
