package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/model"
)

// NewLogger creates a structured zerolog.Logger writing to the configured
// log file. The TUI owns stdout, so a file sink is the default; when the
// file cannot be opened the logger discards output rather than corrupting
// the terminal.
func NewLogger(cfg *model.AppConfig) zerolog.Logger {
	var sink io.Writer = io.Discard

	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err == nil {
			file, err := os.OpenFile(
				cfg.Log.File,
				os.O_CREATE|os.O_WRONLY|os.O_APPEND,
				0o644,
			)
			if err == nil {
				sink = file
			}
		}
	}

	logger := zerolog.New(sink).With().
		Timestamp().
		Str("service", "maildeck").
		Logger()

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
