package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"stockscreener/config"
)

const logTimeFormat = "15:04:05"

func consoleWriter() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       logTimeFormat,
		TextOutput:       true,
		DisableTimestamp: false,
	}
}

func fileWriter(file string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:             models.LogWriterTypeFile,
		FileName:         file,
		TimeFormat:       logTimeFormat,
		MaxSize:          10 * 1024 * 1024, // 10 MB
		MaxBackups:       3,
		TextOutput:       true,
		DisableTimestamp: false,
	}
}

// logWriters returns the writers to attach. The console writer is always
// included when no file writer could be set up.
func logWriters(cfg config.LoggingConfig) []models.WriterConfiguration {
	hasFileOutput := false
	hasStdoutOutput := false
	for _, output := range cfg.Output {
		switch output {
		case "file":
			hasFileOutput = true
		case "stdout", "console":
			hasStdoutOutput = true
		}
	}

	var writers []models.WriterConfiguration
	if hasFileOutput && cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			fmt.Printf("Warning: Failed to create logs directory: %v\n", err)
		} else {
			writers = append(writers, fileWriter(cfg.File))
		}
	}

	if hasStdoutOutput || len(writers) == 0 {
		writers = append(writers, consoleWriter())
	}
	return writers
}

// SetupLogger builds the application logger from the logging section
func SetupLogger(cfg config.LoggingConfig) arbor.ILogger {
	logger := arbor.NewLogger()
	for _, writer := range logWriters(cfg) {
		if writer.Type == models.LogWriterTypeFile {
			logger = logger.WithFileWriter(writer)
		} else {
			logger = logger.WithConsoleWriter(writer)
		}
	}
	return logger.WithLevelFromString(cfg.Level)
}
