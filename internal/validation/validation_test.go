package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toerrors "github.com/conneroisu/codetour/internal/errors"
)

func TestValidateContentPath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		want      string
		wantErr   bool
		traversal bool
	}{
		{name: "relative", path: "code-examples/a.js", want: "code-examples/a.js"},
		{name: "leading slash", path: "/code-examples/a.js", want: "code-examples/a.js"},
		{name: "redundant segments", path: "a/./b//c.go", want: "a/b/c.go"},
		{name: "empty", path: "", wantErr: true},
		{name: "root", path: "/", wantErr: true},
		{name: "dot", path: ".", wantErr: true},
		{name: "parent", path: "../etc/passwd", wantErr: true, traversal: true},
		{name: "nested parent", path: "a/../../b", wantErr: true, traversal: true},
		{name: "backslash", path: `..\windows`, wantErr: true},
		{name: "null byte", path: "a.js\x00.png", wantErr: true},
		{name: "shell", path: "a.js;rm", wantErr: true},
		{name: "hidden file", path: ".codetour.yml", wantErr: true},
		{name: "hidden directory", path: "/.git/config", wantErr: true},
		{name: "hidden nested", path: "code-examples/.env", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateContentPath(tt.path)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.traversal, toerrors.IsSecurityError(err))
		})
	}
}

func TestValidateOrigin(t *testing.T) {
	allowed := []string{"localhost:8080", "https://docs.example.com"}

	assert.NoError(t, ValidateOrigin("http://localhost:8080", allowed))
	assert.NoError(t, ValidateOrigin("https://docs.example.com", allowed))
	assert.NoError(t, ValidateOrigin("https://anything.test", []string{"*"}))

	assert.Error(t, ValidateOrigin("", allowed))
	assert.Error(t, ValidateOrigin("http://evil.test", allowed))
	assert.Error(t, ValidateOrigin("file://localhost:8080", allowed))
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("http://localhost:8080"))
	assert.NoError(t, ValidateBaseURL("https://docs.example.com/base/"))

	for _, bad := range []string{"", "localhost:8080", "ftp://host", "http://", "http://host/?q=1", "http://host/a b"} {
		assert.Error(t, ValidateBaseURL(bad), bad)
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "ab\tc\n", SanitizeInput("a\x00b\tc\x07\n"))
}
