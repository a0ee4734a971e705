// Package tour assembles tours: YAML documents pairing prose steps with the
// code files they reference, opened per page view as a Session.
package tour

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	toerrors "github.com/conneroisu/codetour/internal/errors"
	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/reference"
	"github.com/conneroisu/codetour/internal/validation"
)

// Extensions recognised as tour documents.
var Extensions = []string{".tour.yaml", ".tour.yml"}

// Step is one prose block of a tour.
type Step struct {
	File        string `yaml:"file" json:"file"`
	Lines       string `yaml:"lines,omitempty" json:"lines,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Body        string `yaml:"body,omitempty" json:"body,omitempty"`
	// Markdown overrides the tour-wide setting for this step.
	Markdown *bool `yaml:"markdown,omitempty" json:"markdown,omitempty"`
}

// Tour is a parsed tour document.
type Tour struct {
	Slug         string   `yaml:"-" json:"slug"`
	Title        string   `yaml:"title" json:"title"`
	Date         string   `yaml:"date,omitempty" json:"date,omitempty"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Interaction  string   `yaml:"interaction,omitempty" json:"interaction,omitempty"`
	Markdown     *bool    `yaml:"markdown,omitempty" json:"markdown,omitempty"`
	CodeExamples []string `yaml:"code_examples" json:"codeExamples"`
	Steps        []Step   `yaml:"steps" json:"steps"`

	Source  string    `yaml:"-" json:"source,omitempty"`
	ModTime time.Time `yaml:"-" json:"-"`

	files []loader.FileDescriptor
	mode  reference.Mode
}

// Parse decodes and validates a tour document.
func Parse(slug string, data []byte) (*Tour, error) {
	var t Tour
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, toerrors.ErrTourInvalid(slug, "malformed document", err)
	}
	t.Slug = slug

	// control characters would reach the page and the logs verbatim
	t.Title = validation.SanitizeInput(t.Title)
	t.Date = validation.SanitizeInput(t.Date)
	t.Description = validation.SanitizeInput(t.Description)
	for i := range t.Steps {
		t.Steps[i].Description = validation.SanitizeInput(t.Steps[i].Description)
	}

	if strings.TrimSpace(t.Title) == "" {
		t.Title = slug
	}

	mode, err := reference.ParseMode(t.Interaction)
	if err != nil {
		return nil, toerrors.ErrTourInvalid(slug, "unknown interaction", err)
	}
	t.mode = mode

	files, err := loader.ParseDescriptors(t.CodeExamples)
	if err != nil {
		return nil, toerrors.ErrTourInvalid(slug, "bad code example", err)
	}
	t.files = files

	return &t, nil
}

// Files returns the tour's code files in tab order.
func (t *Tour) Files() []loader.FileDescriptor {
	out := make([]loader.FileDescriptor, len(t.files))
	copy(out, t.files)
	return out
}

// Mode returns the interaction mode, falling back to def when the document
// does not set one.
func (t *Tour) Mode(def reference.Mode) reference.Mode {
	if strings.TrimSpace(t.Interaction) == "" {
		return def
	}
	return t.mode
}

// ResolveFile finds the code file a step refers to. Steps naming a file
// outside the tour still get a descriptor; no viewer will match it.
func (t *Tour) ResolveFile(ref string) (loader.FileDescriptor, bool) {
	for _, file := range t.files {
		if file.Matches(ref) {
			return file, true
		}
	}
	fd, err := loader.ParseDescriptor(ref)
	if err != nil {
		return loader.FileDescriptor{Path: ref, DisplayName: ref}, false
	}
	return fd, false
}

// SlugFor derives a tour slug from a file name, reporting false for files
// that are not tour documents.
func SlugFor(name string) (string, bool) {
	base := path.Base(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) {
			return strings.TrimSuffix(base, ext), true
		}
	}
	return "", false
}

// LoadFile reads one tour document from fs.
func LoadFile(fs billy.Filesystem, name string) (*Tour, error) {
	slug, ok := SlugFor(name)
	if !ok {
		return nil, fmt.Errorf("%s is not a tour document", name)
	}

	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, toerrors.NewIOError(toerrors.ErrCodeReadFailed, "reading tour", err).WithPath(name)
	}

	t, err := Parse(slug, data)
	if err != nil {
		return nil, err
	}
	t.Source = name
	if info, err := fs.Stat(name); err == nil {
		t.ModTime = info.ModTime()
	}
	return t, nil
}

// LoadDir reads every tour document in dir. Broken documents are skipped
// and reported together in the returned error.
func LoadDir(fs billy.Filesystem, dir string) ([]*Tour, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, toerrors.NewIOError(toerrors.ErrCodeReadFailed, "listing tours", err).WithPath(dir)
	}

	collector := toerrors.NewErrorCollector()
	var tours []*Tour
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := SlugFor(entry.Name()); !ok {
			continue
		}
		t, err := LoadFile(fs, fs.Join(dir, entry.Name()))
		if err != nil {
			collector.Add(err)
			continue
		}
		tours = append(tours, t)
	}

	sort.Slice(tours, func(i, j int) bool { return tours[i].Slug < tours[j].Slug })
	return tours, collector.Err()
}
