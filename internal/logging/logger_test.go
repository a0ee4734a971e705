package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	toerrors "github.com/conneroisu/codetour/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer, level LogLevel) *SlogLogger {
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug).
		WithComponent("loader").
		With("tour", "intro")

	logger.Info(context.Background(), "loaded", "files", 3)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "loaded", records[0]["msg"])
	assert.Equal(t, "loader", records[0]["component"])
	assert.Equal(t, "intro", records[0]["tour"])
	assert.Equal(t, float64(3), records[0]["files"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelWarn)

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden")
	logger.Warn(context.Background(), errors.New("w"), "shown")
	logger.Error(context.Background(), errors.New("e"), "shown")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "w", records[0]["error"])
	assert.Equal(t, "ERROR", records[1]["level"])
}

func TestLogTourError(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug)

	LogTourError(logger, context.Background(), toerrors.NewFetchError("/a.js", errors.New("timeout")))
	LogTourError(logger, context.Background(), toerrors.NewConfigError(toerrors.ErrCodeConfigInvalid, "bad port"))
	LogTourError(logger, context.Background(), nil)

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)

	assert.Equal(t, "WARN", records[0]["level"])
	assert.Equal(t, "fetch", records[0]["error_type"])
	assert.Equal(t, "/a.js", records[0]["path"])
	assert.Equal(t, true, records[0]["recoverable"])

	assert.Equal(t, "ERROR", records[1]["level"])
	assert.Equal(t, toerrors.ErrCodeConfigInvalid, records[1]["error_code"])
}

func TestNopLogger(t *testing.T) {
	logger := Nop().WithComponent("x").With("k", "v")
	assert.NotPanics(t, func() {
		logger.Debug(context.Background(), "a")
		logger.Warn(context.Background(), errors.New("b"), "c")
	})
}

func TestSanitizeForLog(t *testing.T) {
	assert.Equal(t, "a b", SanitizeForLog("a\nb"))
	long := strings.Repeat("x", 300)
	assert.True(t, strings.HasSuffix(SanitizeForLog(long), "...[TRUNCATED]"))
	assert.Len(t, SanitizeForLog(long), 256+len("...[TRUNCATED]"))
}
