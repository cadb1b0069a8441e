// Package logging builds the structured console logger shared by the CLI,
// the HTTP server and the domain services.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ersonp/kin-core/internal/infrastructure/config"
)

// New creates a logger that writes to stderr at the configured level.
func New(cfg config.LogConfig) *log.Logger {
	return NewWithWriter(os.Stderr, cfg.Level)
}

// NewWithWriter creates a logger writing to w. Unknown levels fall back to info.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
}

// Discard returns a logger that drops everything. Used when a caller passes
// no logger.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
