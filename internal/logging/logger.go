package logging

import (
	"io"
	"log/slog"
	"os"
	"sort"
)

// Logger is a thin wrapper over slog.Logger that adds map-based field helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a text logger at debug level in development and a JSON
// logger at info level otherwise. Output goes to stdout.
func NewLogger(isDevelopment bool) *Logger {
	return NewLoggerWithWriter(os.Stdout, isDevelopment)
}

// NewLoggerWithWriter is NewLogger with a custom destination.
func NewLoggerWithWriter(w io.Writer, isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithFields returns a child logger carrying the given fields.
// Keys are added in sorted order so output stays stable.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return &Logger{Logger: l.Logger.With(args...)}
}
