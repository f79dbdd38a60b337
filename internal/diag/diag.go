// Package diag provides source-location-aware errors shared by the
// lexer, parser, and bundler pipeline.
package diag

import (
	"fmt"
	"strings"
)

// Kind identifies the phase that raised a diagnostic.
type Kind string

const (
	SyntaxError Kind = "SyntaxError"
	ImportError Kind = "ImportError"
)

// Location is a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// Error is a diagnostic with an optional source-line excerpt, the
// shape the rest of the pipeline panics/recovers or wraps as needed.
type Error struct {
	Kind     Kind
	Message  string
	Location Location
	Source   string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("\n  at %s:%d:%d", e.Location.File, e.Location.Line, e.Location.Column))
		if e.Source != "" {
			sb.WriteString(fmt.Sprintf("\n\n  %d | %s\n  %s^",
				e.Location.Line, e.Source,
				strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Location.Line))+max0(e.Location.Column-1))))
		}
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// NewSyntaxError creates a parser-phase diagnostic.
func NewSyntaxError(message, file string, line, column int) *Error {
	return &Error{
		Kind:    SyntaxError,
		Message: message,
		Location: Location{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// WithSource attaches the offending source line for display.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}
