// Package parsers reads relationship intents from files.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// RawIntent is an intent read from a file, tagged with where it came from.
type RawIntent struct {
	entities.Intent
	LineNum int `json:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing intents from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawIntent, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Intents strips the source positions.
func Intents(raw []RawIntent) []entities.Intent {
	out := make([]entities.Intent, len(raw))
	for i, r := range raw {
		out[i] = r.Intent
	}
	return out
}
