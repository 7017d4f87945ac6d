// Package logging provides structured logging setup for everylot.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Setup initializes the default slog logger on stderr.
// An interactive terminal gets human-readable text; cron and CI get JSON.
func Setup(verbose bool) {
	slog.SetDefault(New(os.Stderr, verbose, term.IsTerminal(int(os.Stderr.Fd()))))
}

// New returns a logger writing to w. Verbose enables debug output.
func New(w io.Writer, verbose, text bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}
