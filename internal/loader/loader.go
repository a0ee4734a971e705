package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	toerrors "github.com/conneroisu/codetour/internal/errors"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/metrics"
)

const (
	// ErrorPlaceholder replaces the content of a file that failed to load.
	ErrorPlaceholder = "Error loading file content"

	// LoadingPlaceholder is shown for files whose content has not arrived.
	LoadingPlaceholder = "Loading..."

	// FileContentEndpoint serves local files over HTTP; relative descriptors
	// are fetched through it when the loader has no local filesystem.
	FileContentEndpoint = "/api/file-content"
)

// Config controls fetch behaviour.
type Config struct {
	// Timeout bounds each individual fetch.
	Timeout time.Duration
	// Concurrency caps simultaneous fetches.
	Concurrency int
	// MaxBytes caps the size of one file.
	MaxBytes int64
	// BaseURL resolves relative descriptors when no local filesystem is set.
	BaseURL string
}

// DefaultConfig returns the default loader configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     10 * time.Second,
		Concurrency: 4,
		MaxBytes:    1 << 20,
	}
}

// Loader fetches file contents.
type Loader struct {
	config Config
	client *http.Client
	local  billy.Filesystem
	logger logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) { l.client = client }
}

// WithFilesystem serves relative descriptors from fs instead of HTTP.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(l *Loader) { l.local = fs }
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger logging.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a loader. Zero config fields fall back to DefaultConfig.
func New(config Config, opts ...Option) *Loader {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = defaults.MaxBytes
	}

	l := &Loader{
		config: config,
		client: http.DefaultClient,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent("loader")
	return l
}

// Load fetches every file concurrently and returns content keyed by path.
// Failed files map to ErrorPlaceholder. Results are only recorded while ctx
// is alive; files still in flight when ctx ends are left out of the map.
func (l *Loader) Load(ctx context.Context, files []FileDescriptor) map[string]string {
	perf := logging.StartOperation(l.logger, "load")

	results := make(map[string]string, len(files))
	var mutex sync.Mutex

	var group errgroup.Group
	group.SetLimit(l.config.Concurrency)

	for _, file := range files {
		group.Go(func() error {
			started := time.Now()
			content, err := l.Fetch(ctx, file)
			metrics.FetchDuration.Observe(time.Since(started).Seconds())
			if err != nil {
				var te *toerrors.TourError
				if !asTourError(err, &te) {
					te = toerrors.NewFetchError(file.Path, err)
				}
				logging.LogTourError(l.logger, ctx, te)
				content = ErrorPlaceholder
			}

			if ctx.Err() != nil {
				metrics.FileFetches.WithLabelValues(file.Source(), metrics.OutcomeAbandoned).Inc()
				return nil
			}
			if err != nil {
				metrics.FileFetches.WithLabelValues(file.Source(), metrics.OutcomeError).Inc()
			} else {
				metrics.FileFetches.WithLabelValues(file.Source(), metrics.OutcomeOK).Inc()
			}

			mutex.Lock()
			results[file.Path] = content
			mutex.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	perf.End(ctx, "files", len(files), "loaded", len(results))
	return results
}

// LoadInto runs Load and applies the results to cache, unless ctx ended
// before the batch finished.
func (l *Loader) LoadInto(ctx context.Context, cache *Cache, files []FileDescriptor) {
	results := l.Load(ctx, files)
	if ctx.Err() != nil {
		l.logger.Debug(ctx, "Discarding results of abandoned load", "files", len(files))
		return
	}
	cache.Apply(results)
}

// Fetch retrieves a single file. Errors are TourErrors of type fetch.
func (l *Loader) Fetch(ctx context.Context, file FileDescriptor) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	if !file.IsRemote() && l.local != nil {
		return l.readLocal(file)
	}

	target, err := l.resolve(file)
	if err != nil {
		return "", toerrors.NewFetchError(file.Path, err)
	}
	return l.fetchHTTP(fetchCtx, file, target)
}

func (l *Loader) resolve(file FileDescriptor) (string, error) {
	if file.IsRemote() {
		return file.URL, nil
	}
	if l.config.BaseURL == "" {
		return "", fmt.Errorf("no base URL configured for local file %s", file.Path)
	}
	base := strings.TrimSuffix(l.config.BaseURL, "/")
	return base + FileContentEndpoint + "?path=" + url.QueryEscape(strings.TrimPrefix(file.Path, "/")), nil
}

func (l *Loader) fetchHTTP(ctx context.Context, file FileDescriptor, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", toerrors.NewFetchError(file.Path, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", toerrors.NewFetchError(file.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", toerrors.NewFetchError(file.Path, fmt.Errorf("unexpected status %s", resp.Status)).
			WithContext("status", resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", toerrors.NewFetchError(file.Path, fmt.Errorf("decoding body: %w", err))
	}

	return l.readAll(file, body)
}

func (l *Loader) readLocal(file FileDescriptor) (string, error) {
	f, err := l.local.Open(strings.TrimPrefix(file.Path, "/"))
	if err != nil {
		return "", toerrors.NewFetchError(file.Path, err)
	}
	defer f.Close()

	return l.readAll(file, f)
}

func (l *Loader) readAll(file FileDescriptor, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.config.MaxBytes+1))
	if err != nil {
		return "", toerrors.NewFetchError(file.Path, fmt.Errorf("reading body: %w", err))
	}
	if int64(len(data)) > l.config.MaxBytes {
		return "", toerrors.NewFetchError(file.Path, fmt.Errorf("file exceeds %d bytes", l.config.MaxBytes))
	}
	if !utf8.Valid(data) {
		return "", toerrors.NewFetchError(file.Path, fmt.Errorf("content is not valid UTF-8"))
	}
	return string(data), nil
}

func asTourError(err error, target **toerrors.TourError) bool {
	te, ok := err.(*toerrors.TourError)
	if ok {
		*target = te
	}
	return ok
}
