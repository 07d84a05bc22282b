// Package logging configures the shared zerolog diagnostic logger.
//
// Diagnostics go to stderr so that merged query output on stdout stays
// machine-consumable. User-facing progress and summaries are printed
// directly by the CLI, not through this logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w (stderr if nil). Verbose
// enables debug-level events such as dropped query entries and watcher
// lifecycle transitions.
func New(w io.Writer, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}
