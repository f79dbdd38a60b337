// Package bundleerr defines the bundler's error taxonomy: a small
// closed set of kinds, each carrying enough context to render a
// useful diagnostic on the error stream.
package bundleerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the phase that produced the error.
type Kind string

const (
	Configuration Kind = "configuration"
	Discovery     Kind = "discovery"
	Resolution    Kind = "resolution"
	Graph         Kind = "graph"
	Cycles        Kind = "cycles"
	Emission      Kind = "emission"
)

// Error is a fatal, structured bundler error. Its Error() string is the
// message shown to the user.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a Kind-tagged error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an existing error with a Kind, preserving it as Cause
// wrapped with github.com/pkg/errors.WithStack, so %+v on Cause prints
// the stack recorded at the Wrap call.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.WithStack(cause)}
}

// CycleMember describes one member of an unresolvable cycle for the
// purposes of the aggregate CyclesError message.
type CycleMember struct {
	Chain  []string // module names, in cycle order
	Kind   string   // the classified CycleKind, rendered as text
	Reason string
}

// CyclesError aggregates every unresolvable cycle discovered during
// orchestration into one fatal, user-readable error (spec §7: "the
// error enumerates each cycle with its member list and reason").
type CyclesError struct {
	Cycles []CycleMember
}

func (e *CyclesError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %d unresolvable cycle(s) found:\n", Cycles, len(e.Cycles)))
	for _, c := range e.Cycles {
		sb.WriteString(fmt.Sprintf("  %s (%s): %s\n", strings.Join(c.Chain, " → "), c.Kind, c.Reason))
	}
	return sb.String()
}
