// Package logging configures the process-wide zerolog logger used by
// every other package. Levels: Warn for per-pane/per-rule errors that are
// skipped and continued past, Error for surfaced failures, Debug for the
// --debug trace path.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var log = zerolog.New(io.Discard).With().Timestamp().Logger()

// Init configures the global logger. debug raises the level to Debug; when
// filePath is non-empty, output is appended to that file, otherwise it is
// discarded. Nothing is written to stderr (the TUI owns the terminal, so
// logging there would corrupt the display).
func Init(debug bool, filePath string) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	var w io.Writer = io.Discard
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = f
	}
	log = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return nil
}

func L() *zerolog.Logger { return &log }
