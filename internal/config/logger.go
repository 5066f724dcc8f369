package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LogFileName is the log file written under Dir while the TUI owns stdout.
const LogFileName = "elog.log"

// NewLogger builds a timestamped logger writing to w. Unknown levels fall
// back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// OpenLogger opens the log file under Dir and returns a logger writing to
// it. The caller closes the returned file.
func OpenLogger(cfg *Config) (zerolog.Logger, io.Closer, error) {
	dir := Dir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	level := ""
	if cfg != nil {
		level = cfg.LogLevel
	}
	return NewLogger(f, level), f, nil
}
