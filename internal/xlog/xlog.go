// Package xlog wraps the standard library logger behind a verbose
// gate carried on the instance, not a package-level global.
package xlog

import (
	"io"
	"log"
)

// Logger only emits through Printf/Print when Verbose is true. Pretty
// selects which of the two board table renderings a caller should use
// when logging board state; it has no effect on Logger itself.
type Logger struct {
	Verbose bool
	Pretty  bool
	*log.Logger
}

// New builds a Logger writing to w, gated by verbose.
func New(w io.Writer, verbose, pretty bool) *Logger {
	return &Logger{Verbose: verbose, Pretty: pretty, Logger: log.New(w, "", log.Ltime)}
}

// Printf logs only when Verbose is set.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.Verbose {
		l.Logger.Printf(format, v...)
	}
}

// Print logs only when Verbose is set.
func (l *Logger) Print(v ...interface{}) {
	if l.Verbose {
		l.Logger.Print(v...)
	}
}
