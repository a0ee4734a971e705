package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/codetour/internal/testutils"
	"github.com/conneroisu/codetour/internal/version"
)

// resetFlags returns every flag to its default so commands can run
// repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLinesCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOut    string
		wantErr    bool
		wantWarned bool
	}{
		{name: "normalises", args: []string{"lines", "12, 5-8,3"}, wantOut: "3,5-8,12\n"},
		{name: "json", args: []string{"lines", "--json", "1-3"}, wantOut: "[1,2,3]\n"},
		{name: "lenient skips bad tokens", args: []string{"lines", "1,x,4"}, wantOut: "1,4\n", wantWarned: true},
		{name: "strict fails", args: []string{"lines", "--strict", "1,x"}, wantErr: true},
		{name: "reversed range", args: []string{"lines", "--strict", "8-5"}, wantErr: true},
		{name: "missing argument", args: []string{"lines"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out)
			assert.Equal(t, tt.wantWarned, strings.Contains(errOut, "warning:"))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		out, _, err := execute(t, "version", "--short")
		require.NoError(t, err)
		assert.Equal(t, version.Get().Short()+"\n", out)
	})

	t.Run("default", func(t *testing.T) {
		out, _, err := execute(t, "version")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "codetour "))
		assert.Contains(t, out, "Platform: ")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "version", "--format", "json")
		require.NoError(t, err)

		var info version.Info
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		assert.Equal(t, version.Get().GoVersion, info.GoVersion)
	})

	t.Run("detailed", func(t *testing.T) {
		out, _, err := execute(t, "version", "--detailed")
		require.NoError(t, err)
		assert.Contains(t, out, "Build type: ")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "version", "--format", "xml")
		assert.ErrorContains(t, err, "unsupported format")
	})
}

func TestRenderCommand(t *testing.T) {
	root := testutils.CreateTempContent(t)

	t.Run("html", func(t *testing.T) {
		out, _, err := execute(t, "render", "--content-root", root, testutils.DemoSlug)
		require.NoError(t, err)
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "Two column demo")
		assert.Contains(t, out, "console")
	})

	t.Run("yaml summary with selection", func(t *testing.T) {
		out, _, err := execute(t, "render", "--content-root", root, "--select", "2", "--format", "yaml", testutils.DemoSlug)
		require.NoError(t, err)

		var summary renderSummary
		require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
		assert.Equal(t, testutils.DemoSlug, summary.Tour)
		require.Len(t, summary.Files, 2)
		assert.Equal(t, 3, summary.Files[0].Lines)
		require.Len(t, summary.References, 3)
		assert.Equal(t, int64(1), summary.References[0].ID)
		assert.Equal(t, "1-2", summary.References[0].Lines)

		assert.Equal(t, int64(2), summary.Selection.Reference)
		assert.Equal(t, "3", summary.Selection.Lines)
		assert.Equal(t, 1, summary.Selection.Tab)
		assert.Equal(t, "3", summary.Files[1].Highlighted)
		assert.Empty(t, summary.Files[0].Highlighted)
	})

	t.Run("json tab by index", func(t *testing.T) {
		out, _, err := execute(t, "render", "--content-root", root, "--tab", "1", "-f", "json", testutils.DemoSlug)
		require.NoError(t, err)

		var summary renderSummary
		require.NoError(t, json.Unmarshal([]byte(out), &summary))
		assert.Equal(t, 1, summary.Selection.Tab)
		assert.Zero(t, summary.Selection.Reference)
	})

	t.Run("tour by path to file", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "page.html")
		path := filepath.Join(root, "tours", "two-column-demo.tour.yaml")
		_, _, err := execute(t, "render", "--content-root", root, "-o", output, path)
		require.NoError(t, err)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Two column demo")
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := execute(t, "render", "--content-root", root, "missing")
		assert.ErrorContains(t, err, "not found")

		_, _, err = execute(t, "render", "--content-root", root, "--select", "9", testutils.DemoSlug)
		assert.Error(t, err)

		_, _, err = execute(t, "render", "--content-root", root, "--tab", "c.go", testutils.DemoSlug)
		assert.ErrorContains(t, err, "no tab")

		_, _, err = execute(t, "render", "--content-root", root, "-f", "pdf", testutils.DemoSlug)
		assert.ErrorContains(t, err, "unsupported format")
	})
}

func TestFetchCommand(t *testing.T) {
	root := testutils.CreateTempContent(t)

	out, _, err := execute(t, "fetch", "--content-root", root, testutils.DemoSlug)
	require.NoError(t, err)
	assert.Contains(t, out, "FILE")
	assert.Equal(t, 2, strings.Count(out, " ok\n"))
	assert.Contains(t, out, "local")

	require.NoError(t, os.Remove(filepath.Join(root, "code-examples", testutils.DemoSlug, "b.py")))
	out, _, err = execute(t, "fetch", "--content-root", root, testutils.DemoSlug)
	assert.ErrorContains(t, err, "1 of 2 files failed")
	assert.Equal(t, 1, strings.Count(out, " ok\n"))
}

func TestFlagNormalization(t *testing.T) {
	_, _, err := execute(t, "lines", "--log_level", "debug", "1")
	assert.NoError(t, err)
}

func TestEnvironmentFromFlags(t *testing.T) {
	root := testutils.CreateTempContent(t)
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	require.NoError(t, rootCmd.PersistentFlags().Set("content-root", root))

	env, err := newEnvironment(io.Discard)
	require.NoError(t, err)
	assert.Equal(t, root, env.config.Content.Root)

	tr, err := env.openTour(testutils.DemoSlug)
	require.NoError(t, err)
	assert.Equal(t, testutils.DemoSlug, tr.Slug)
}

func TestExampleTour(t *testing.T) {
	out, _, err := execute(t, "render", "--content-root", "../examples", "--select", "3", "-f", "json", "hello")
	require.NoError(t, err)

	var summary renderSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "Hello, tours", summary.Title)
	assert.Len(t, summary.References, 4)
	assert.Equal(t, "1-6", summary.Selection.Lines)
	assert.Equal(t, 11, summary.Files[1].Lines)
}

func TestConfigWarningsPrinted(t *testing.T) {
	root := testutils.CreateTempContent(t)
	t.Setenv("CODETOUR_SERVER_PORT", "80")
	t.Setenv("CODETOUR_VIEWER_STYLE", "no-such-style")

	_, errOut, err := execute(t, "fetch", "--content-root", root, testutils.DemoSlug)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Validation warnings:")
	assert.Contains(t, errOut, "server.port")
	assert.Contains(t, errOut, "viewer.style")
}

func TestDefaultConfigHasNoWarnings(t *testing.T) {
	root := testutils.CreateTempContent(t)

	_, errOut, err := execute(t, "fetch", "--content-root", root, testutils.DemoSlug)
	require.NoError(t, err)
	assert.NotContains(t, errOut, "Validation warnings:")
}
