// Package logger provides the application logger and crash logging for
// ganttline.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates the application logger writing to stderr. Verbose mode lowers
// the level to debug and adds timestamps.
func New(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		Prefix:          "ganttline",
	})
}

// Discard returns a logger that drops everything, for tests and quiet mode.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
