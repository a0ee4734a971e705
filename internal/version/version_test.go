package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"release with commit", Info{Version: "v1.2.0", GitCommit: "abcdef0123"}, "v1.2.0 (abcdef0)"},
		{"dev with commit", Info{Version: "dev", GitCommit: "abcdef0123"}, "dev-abcdef0"},
		{"dev version already carries commit", Info{Version: "dev-abcdef0", GitCommit: "abcdef0123"}, "dev-abcdef0"},
		{"unknown commit", Info{Version: "v1.0.0", GitCommit: "unknown"}, "v1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Short())
		})
	}
}

func TestIsRelease(t *testing.T) {
	assert.True(t, Info{Version: "v0.3.0"}.IsRelease())
	assert.False(t, Info{Version: "dev"}.IsRelease())
	assert.False(t, Info{Version: "dev-1234567"}.IsRelease())
}

func TestParseBuildTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	assert.True(t, parseBuildTime("2024-05-01T12:30:00Z").Equal(want))
	assert.True(t, parseBuildTime("2024-05-01 12:30:00").Equal(want))
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
}

func TestGetUsesLinkerValues(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version, GitCommit, BuildTime = "v9.9.9", "0123456789", "2024-01-02T03:04:05Z"
	info := Get()

	assert.Equal(t, "v9.9.9", info.Version)
	assert.Equal(t, "0123456789", info.GitCommit)
	assert.Equal(t, 2024, info.BuildTime.Year())
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Detailed(), "Commit: 0123456789")
}
