package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInit_FileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, Init(Config{Output: path, File: path, Level: "debug"}))
	t.Cleanup(func() { _ = Init(Config{Output: "stderr", Level: "info"}) })

	ctx, runID := WithRun(context.Background())
	_, err := uuid.Parse(runID)
	require.NoError(t, err)

	zerolog.Ctx(ctx).Info().Msg("resolving tracks")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"resolving tracks"`)
	assert.Contains(t, string(data), `"run_id":"`+runID+`"`)
}

func TestInit_UnwritableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "run.log")
	assert.Error(t, Init(Config{Output: path, File: path}))
}

func TestShortCaller(t *testing.T) {
	file := filepath.Join("home", "dev", "playlistbuilder", "internal", "app", "builder", "builder.go")
	assert.Equal(t, filepath.Join("builder", "builder.go")+":42", shortCaller(0, file, 42))
	assert.Equal(t, "main.go:7", shortCaller(0, "main.go", 7))
}
