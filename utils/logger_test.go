package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor/models"

	"stockscreener/config"
)

// writerKinds counts file and console writers
func writerKinds(writers []models.WriterConfiguration) (files, consoles int) {
	for _, w := range writers {
		switch w.Type {
		case models.LogWriterTypeFile:
			files++
		case models.LogWriterTypeConsole:
			consoles++
		}
	}
	return files, consoles
}

func TestSetupLogger_Console(t *testing.T) {
	logger := SetupLogger(config.LoggingConfig{Level: "debug", Output: []string{"stdout"}})
	require.NotNil(t, logger)
	logger.Info().Str("ticker", "AAPL").Msg("console logger ready")
}

func TestSetupLogger_FileCreatesDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "stockscreener.log")
	logger := SetupLogger(config.LoggingConfig{Level: "info", Output: []string{"file"}, File: file})
	require.NotNil(t, logger)
	logger.Info().Msg("file logger ready")

	assert.DirExists(t, filepath.Dir(file))
}

func TestLogWriters(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		files    int
		consoles int
	}{
		{"stdout", config.LoggingConfig{Output: []string{"stdout"}}, 0, 1},
		{"file only", config.LoggingConfig{Output: []string{"file"}, File: filepath.Join(dir, "a.log")}, 1, 0},
		{"file and console", config.LoggingConfig{Output: []string{"file", "console"}, File: filepath.Join(dir, "b.log")}, 1, 1},
		{"no outputs", config.LoggingConfig{}, 0, 1},
		{"file without path", config.LoggingConfig{Output: []string{"file"}}, 0, 1},
		{"unwritable directory", config.LoggingConfig{Output: []string{"file"}, File: filepath.Join(blocker, "c.log")}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, consoles := writerKinds(logWriters(tt.cfg))
			assert.Equal(t, tt.files, files)
			assert.Equal(t, tt.consoles, consoles)
		})
	}
}
