// Package logging builds the logger handle used by the triage handler.
//
// Verbosity is configured once per invocation from the CLI options; there is
// no global mutable logger state. The default level only lets warnings and
// errors through, verbose opens everything up, and silent drops all output.
// Silent and verbose are mutually exclusive; the CLI enforces that before the
// handler runs.
package logging

import (
	"io"
	"log/slog"
)

// Options controls logger verbosity for one invocation.
type Options struct {
	// Silent suppresses all output, including warnings and errors.
	Silent bool

	// Verbose additionally enables informational and debug output.
	Verbose bool
}

// New returns a logger writing to w at the level the options select.
func New(w io.Writer, opts Options) *slog.Logger {
	if opts.Silent {
		return Discard()
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: dropTime,
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dropTime removes the time attribute; one-shot webhook invocations get their
// timestamps from the hosting environment's own logs.
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.Attr{}
	}
	return a
}
