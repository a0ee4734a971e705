// Package loader fetches the raw text of the files a tour shows.
//
// Files are described by FileDescriptors, fetched concurrently and collected
// into a path → content mapping. A failed fetch never fails the batch: the
// file's slot gets ErrorPlaceholder and the failure is logged.
package loader

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const rawGitHubHost = "raw.githubusercontent.com"

// FileDescriptor identifies a source file shown by a viewer.
type FileDescriptor struct {
	// URL is the absolute address to fetch; empty for files read from the
	// local content root.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Path is the identity key used by the selection store and the cache.
	Path string `json:"path" yaml:"path"`
	// DirPath is the repository-relative path shown to readers.
	DirPath string `json:"dirPath" yaml:"dirPath"`
	// DisplayName labels the file's tab.
	DisplayName string `json:"displayName" yaml:"displayName"`
	// Extension is the file extension without the dot.
	Extension string `json:"extension" yaml:"extension"`
}

// IsRemote reports whether the file is fetched over HTTP.
func (f FileDescriptor) IsRemote() bool {
	return f.URL != ""
}

// Source labels where the content comes from.
func (f FileDescriptor) Source() string {
	if f.IsRemote() {
		return "remote"
	}
	return "local"
}

// Matches reports whether ref names this file, by path, display path or
// display name.
func (f FileDescriptor) Matches(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	trimmed := strings.TrimPrefix(ref, "/")
	return ref == f.Path ||
		trimmed == strings.TrimPrefix(f.Path, "/") ||
		trimmed == strings.TrimPrefix(f.DirPath, "/") ||
		ref == f.DisplayName
}

// ParseDescriptor builds a descriptor from an absolute URL or a path relative
// to the content root.
//
// For raw.githubusercontent.com URLs the display path drops the owner, repo
// and branch segments, including a "refs/heads/<branch>" prefix when present.
func ParseDescriptor(raw string) (FileDescriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FileDescriptor{}, fmt.Errorf("empty file reference")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("parsing file reference %q: %w", raw, err)
	}

	if u.Scheme == "" {
		return localDescriptor(u.Path)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return FileDescriptor{}, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	if u.Path == "" || u.Path == "/" {
		return FileDescriptor{}, fmt.Errorf("file reference %q has no path", raw)
	}

	dirPath := u.Path
	if u.Host == rawGitHubHost {
		dirPath = rawGitHubDirPath(u.Path)
	}

	return newDescriptor(raw, u.Path, dirPath), nil
}

func localDescriptor(p string) (FileDescriptor, error) {
	clean := path.Clean("/" + strings.TrimPrefix(p, "/"))
	if clean == "/" {
		return FileDescriptor{}, fmt.Errorf("file reference %q has no path", p)
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return FileDescriptor{}, fmt.Errorf("file reference %q escapes the content root", p)
		}
	}
	return newDescriptor("", clean, clean), nil
}

func newDescriptor(rawURL, p, dirPath string) FileDescriptor {
	name := strings.TrimPrefix(dirPath, "/")
	return FileDescriptor{
		URL:         rawURL,
		Path:        p,
		DirPath:     dirPath,
		DisplayName: name,
		Extension:   strings.TrimPrefix(path.Ext(name), "."),
	}
}

// rawGitHubDirPath strips /<owner>/<repo>/refs/heads/<branch> or
// /<owner>/<repo>/<branch> from a raw GitHub path.
func rawGitHubDirPath(p string) string {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")

	skip := 3
	for i, part := range parts {
		if part == "refs" {
			skip = i + 3
			break
		}
	}
	if skip >= len(parts) {
		return p
	}
	return "/" + strings.Join(parts[skip:], "/")
}

// ParseDescriptors parses every reference, returning the first error.
func ParseDescriptors(refs []string) ([]FileDescriptor, error) {
	out := make([]FileDescriptor, 0, len(refs))
	for _, ref := range refs {
		fd, err := ParseDescriptor(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, nil
}
