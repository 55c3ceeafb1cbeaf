// Package logging builds the zerolog loggers used by the CLI and services.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used unless verbose output is requested
const DefaultLevel = zerolog.WarnLevel

// New returns a console logger writing to w at the given level
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// LevelFor maps the CLI verbosity switches to a level.
// quiet wins over verbose.
func LevelFor(verbose, quiet bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.ErrorLevel
	case verbose:
		return zerolog.DebugLevel
	default:
		return DefaultLevel
	}
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
