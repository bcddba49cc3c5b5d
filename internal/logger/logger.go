package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a configured slog.Logger writing to stderr.
// When verbose is true, the logger emits debug-level logs; otherwise info-level.
func New(verbose bool) *slog.Logger {
	return NewWriter(os.Stderr, verbose)
}

// NewWriter is New with an explicit destination. A nil writer discards
// everything.
func NewWriter(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Discard returns a logger that drops all records.
func Discard() *slog.Logger {
	return NewWriter(io.Discard, false)
}
