// Package testutils builds the content trees and configuration shared by
// the package tests.
package testutils

import (
	"os"
	"path"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/codetour/internal/config"
)

// DemoSlug is the slug of the demo tour.
const DemoSlug = "two-column-demo"

// DemoFiles are the demo tour's code examples, keyed by content path.
var DemoFiles = map[string]string{
	"code-examples/two-column-demo/a.js": "let count = 0\ncount += 1\nconsole.log(count)\n",
	"code-examples/two-column-demo/b.py": "count = 0\ncount += 1\nprint(count)\n",
}

// DemoTourPath is the demo tour's content path.
var DemoTourPath = path.Join("tours", DemoSlug+".tour.yaml")

// DemoTour returns the demo tour document from the tour package testdata.
func DemoTour(t *testing.T) []byte {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "locating testutils")

	data, err := os.ReadFile(filepath.Join(filepath.Dir(file), "..", "tour", "testdata", DemoSlug+".tour.yaml"))
	require.NoError(t, err)
	return data
}

// CreateMemContent returns an in-memory content root holding the demo tour.
func CreateMemContent(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, DemoTourPath, DemoTour(t), 0o644))
	for name, content := range DemoFiles {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

// CreateTempContent lays out the demo tour in a temporary directory and
// returns its path.
func CreateTempContent(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string][]byte{DemoTourPath: DemoTour(t)}
	for name, content := range DemoFiles {
		files[name] = []byte(content)
	}
	for name, content := range files {
		target := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
		require.NoError(t, os.WriteFile(target, content, 0o644))
	}
	return root
}

// CreateTestConfig returns the default configuration rooted at root, on an
// ephemeral port and without file watching.
func CreateTestConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)
	cfg.Content.Root = root
	cfg.Server.Port = 0
	cfg.Tour.Watch = false
	return cfg
}

// SecurityTestCases provides common hostile inputs
var SecurityTestCases = struct {
	PathTraversal   []string
	ScriptInjection []string
}{
	PathTraversal: []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"....//....//....//etc/passwd",
		"..%2F..%2F..%2Fetc%2Fpasswd",
		"/%2e%2e/%2e%2e/%2e%2e/etc/passwd",
		"/./../../etc/passwd",
		"code-examples/../../etc/passwd",
		"/etc/passwd\x00.js",
	},
	ScriptInjection: []string{
		"<script>alert('xss')</script>",
		"<img src=x onerror=alert('xss')>",
		"<svg onload=alert('xss')>",
		"\"><script>alert('xss')</script>",
	},
}
