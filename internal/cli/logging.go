package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/slotwatch/slotwatch/internal/constants"
)

// SetSlog replaces the default logger by one writing to stderr, at the level matching the count of
// verbose flags, as text or JSON.
//
// Stdout is left to the status lines of the checker.
func SetSlog(verbosity int, jsonLogs bool) {
	slog.SetDefault(NewLogger(os.Stderr, verbosity, jsonLogs))
}

// NewLogger returns a logger writing to w. Warnings and errors are always logged, -v adds info
// and -vv debug messages.
func NewLogger(w io.Writer, verbosity int, jsonLogs bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(verbosity)}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func levelFor(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return constants.DefaultLogLevel
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
