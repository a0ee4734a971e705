package tour

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toerrors "github.com/conneroisu/codetour/internal/errors"
	"github.com/conneroisu/codetour/internal/reference"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/two-column-demo.tour.yaml")
	require.NoError(t, err)
	return data
}

func TestParse(t *testing.T) {
	tour, err := Parse("two-column-demo", readFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "two-column-demo", tour.Slug)
	assert.Equal(t, "Two column demo", tour.Title)
	assert.Equal(t, "2024-01-05", tour.Date)
	require.Len(t, tour.Files(), 2)
	assert.Equal(t, "/code-examples/two-column-demo/a.js", tour.Files()[0].Path)
	assert.Len(t, tour.Steps, 3)
	assert.Equal(t, reference.Persistent, tour.Mode(reference.Persistent))
	assert.Equal(t, reference.Hover, tour.Mode(reference.Hover), "unset interaction uses the default")
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":   "title: [unclosed",
		"interaction": "title: x\ninteraction: click\n",
		"example":     "title: x\ncode_examples:\n  - ftp://host/a.js\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("bad", []byte(doc))
			require.Error(t, err)
			assert.True(t, toerrors.IsValidationError(err))
		})
	}
}

func TestParseDefaultsTitleToSlug(t *testing.T) {
	tour, err := Parse("untitled", []byte("code_examples: []\n"))
	require.NoError(t, err)
	assert.Equal(t, "untitled", tour.Title)
	assert.Empty(t, tour.Files())
}

func TestParseStripsControlCharacters(t *testing.T) {
	doc := "title: \"Demo\\x1b[31m\"\n" +
		"description: \"a\\x00b\"\n" +
		"code_examples: [a.js]\n" +
		"steps:\n  - file: a.js\n    description: \"setup\\x07\\tdone\"\n"
	tr, err := Parse("demo", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Demo[31m", tr.Title)
	assert.Equal(t, "ab", tr.Description)
	assert.Equal(t, "setup\tdone", tr.Steps[0].Description)
}

func TestResolveFile(t *testing.T) {
	tour, err := Parse("demo", readFixture(t))
	require.NoError(t, err)

	file, ok := tour.ResolveFile("a.js")
	assert.False(t, ok, "bare names only match display paths")
	assert.Equal(t, "/a.js", file.Path)

	file, ok = tour.ResolveFile("code-examples/two-column-demo/b.py")
	assert.True(t, ok)
	assert.Equal(t, "/code-examples/two-column-demo/b.py", file.Path)
}

func TestSlugFor(t *testing.T) {
	slug, ok := SlugFor("tours/intro.tour.yaml")
	assert.True(t, ok)
	assert.Equal(t, "intro", slug)

	slug, ok = SlugFor("intro.tour.yml")
	assert.True(t, ok)
	assert.Equal(t, "intro", slug)

	_, ok = SlugFor("intro.yaml")
	assert.False(t, ok)
	_, ok = SlugFor(".tour.yaml")
	assert.False(t, ok)
}

func TestLoadDir(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "tours/b.tour.yaml", readFixture(t), 0o644))
	require.NoError(t, util.WriteFile(fs, "tours/a.tour.yml", []byte("title: A\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "tours/broken.tour.yaml", []byte("title: [x"), 0o644))
	require.NoError(t, util.WriteFile(fs, "tours/notes.md", []byte("# notes"), 0o644))

	tours, err := LoadDir(fs, "tours")

	require.Error(t, err, "broken documents are reported")
	require.Len(t, tours, 2)
	assert.Equal(t, "a", tours[0].Slug)
	assert.Equal(t, "b", tours[1].Slug)
	assert.Equal(t, "tours/b.tour.yaml", tours[1].Source)
}

func TestLoadDirMissing(t *testing.T) {
	tours, err := LoadDir(memfs.New(), "nowhere")
	assert.NoError(t, err)
	assert.Empty(t, tours)
}
