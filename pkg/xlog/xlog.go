// Package xlog sets up the shared zerolog logger for both CLI entry points.
package xlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a console-writer logger at Info level, or Warn level when quiet
// is set, suppressing informational output while still surfacing warnings
// and errors.
func New(quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if quiet {
		level = zerolog.WarnLevel
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
