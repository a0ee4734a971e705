package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/codetour/internal/lines"
	"github.com/conneroisu/codetour/internal/loader"
	"github.com/conneroisu/codetour/internal/selection"
)

const sample = "line one\nline two\nline three\nline four\nline five"

func newViewer(t *testing.T, path string) *Viewer {
	t.Helper()
	fd, err := loader.ParseDescriptor(path)
	require.NoError(t, err)
	return New(fd, sample, "")
}

func TestNewDerivesLanguage(t *testing.T) {
	v := newViewer(t, "demo/a.js")
	assert.Equal(t, "javascript", v.Language)
	assert.Equal(t, "/demo/a.js", v.Path())
	assert.Len(t, v.Lines(), 5)
}

func TestIsHighlighted(t *testing.T) {
	a := newViewer(t, "a.js")
	b := newViewer(t, "b.js")
	state := selection.State{SelectedFile: a.Path(), SelectedLines: lines.MustParse("2-3")}

	assert.True(t, a.IsHighlighted(state, 2))
	assert.True(t, a.IsHighlighted(state, 3))
	assert.False(t, a.IsHighlighted(state, 4))
	assert.False(t, b.IsHighlighted(state, 2), "lines only apply to the selected file")
	assert.False(t, a.IsHighlighted(selection.State{}, 1))
}

func TestApplyHighlight(t *testing.T) {
	v := newViewer(t, "a.js")
	state := selection.State{SelectedFile: v.Path(), SelectedLines: lines.MustParse("1,4-9")}

	assert.Equal(t, []bool{true, false, false, true, true}, v.ApplyHighlight(state))
	assert.Equal(t, []bool{false, false, false, false, false}, v.ApplyHighlight(selection.State{}))
}

func TestFirstHighlightedIgnoresMissingLines(t *testing.T) {
	v := newViewer(t, "a.js")

	first, ok := v.FirstHighlighted(selection.State{SelectedFile: v.Path(), SelectedLines: lines.MustParse("3,20")})
	assert.True(t, ok)
	assert.Equal(t, 3, first)

	_, ok = v.FirstHighlighted(selection.State{SelectedFile: v.Path(), SelectedLines: lines.MustParse("20-30")})
	assert.False(t, ok)
}

func TestAnchorAndSlug(t *testing.T) {
	v := New(loader.FileDescriptor{Path: "/code-examples/Two Column/a.js", Extension: "js"}, sample, "")
	assert.Equal(t, "L7-code-examples-two-column-a-js", v.Anchor(7))
	assert.Equal(t, "", Slug("///"))
	assert.Equal(t, "a-b", Slug("/a//b/"))
}

func TestScrollToFirst(t *testing.T) {
	v := newViewer(t, "a.js")

	cmd, ok := v.ScrollToFirst(selection.State{SelectedFile: v.Path(), SelectedLines: lines.MustParse("4-5,2")})
	require.True(t, ok)
	assert.Equal(t, ScrollCommand{
		Path:     "/a.js",
		Line:     2,
		Anchor:   v.Anchor(2),
		Behavior: "smooth",
		Block:    "start",
	}, cmd)

	_, ok = v.ScrollToFirst(selection.State{SelectedFile: "/other.js", SelectedLines: lines.MustParse("2")})
	assert.False(t, ok)
}

func TestSetContent(t *testing.T) {
	v := New(loader.FileDescriptor{Path: "/a.js", Extension: "js"}, loader.LoadingPlaceholder, "")
	require.Len(t, v.Lines(), 1)
	assert.Equal(t, loader.LoadingPlaceholder, v.Lines()[0].Text())

	v.SetContent(sample)
	assert.Len(t, v.Lines(), 5)
}
