package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/dshills/hoverintent/internal/config"
)

// Logging owns the demo's log output. The terminal belongs to the UI, so
// records go to a file, or nowhere when no path is configured.
type Logging struct {
	Logger *slog.Logger

	level *slog.LevelVar
	file  *os.File
}

// OpenLogging creates the logger described by section.
func OpenLogging(section config.LogSection) (*Logging, error) {
	l := &Logging{level: new(slog.LevelVar)}
	l.level.Set(section.SlogLevel())

	var w io.Writer = io.Discard
	if section.Path != "" {
		f, err := os.OpenFile(section.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, &InitError{Component: "logging", Err: err}
		}
		l.file = f
		w = f
	}

	opts := &slog.HandlerOptions{Level: l.level}
	var h slog.Handler
	if section.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l.Logger = slog.New(h)
	return l, nil
}

// SetLevel changes the minimum level of records written.
func (l *Logging) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the current minimum level.
func (l *Logging) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file, if any.
func (l *Logging) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
