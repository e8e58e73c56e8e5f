package common

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// NewLogger returns a console logger at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func NewLogger(level string) *log.Logger {
	lvl := log.ParseLevel(level)
	if level == "" {
		lvl = log.InfoLevel
	}
	return &log.Logger{
		Level:      lvl,
		Caller:     0,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:         os.Stderr,
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}
}

// Discard returns a logger that drops everything. Used by tests and as the
// default when a component is built without one.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
