// Package reporter implements the "reporter" collaborator (spec §6): plain
// diagnostics and diagnostics annotated with a platform error description,
// both prefixed by the program's display name — the Go analogue of
// srm's error()/errorp() (original_source/src/error.c).
package reporter

import (
	"fmt"
	"log"

	"golang.org/x/xerrors"
)

// Reporter is consumed by the walker, the target driver, and the overwrite
// engine wherever spec.md calls for a diagnostic that does not itself abort
// the operation.
type Reporter interface {
	// Error prints a formatted diagnostic.
	Error(format string, args ...interface{})

	// Errorp prints a formatted diagnostic followed by err's description,
	// the way errorp() appends perror() output in the C original.
	Errorp(err error, format string, args ...interface{})
}

// Log is the default Reporter, logging through the standard library logger
// the way every cmd/distri subcommand does (log.Printf throughout
// cmd/distri/build.go and friends), prefixed with the program name.
type Log struct {
	Program string
}

func (l Log) Error(format string, args ...interface{}) {
	log.Printf("%s: %s", l.Program, fmt.Sprintf(format, args...))
}

func (l Log) Errorp(err error, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("%s: %s: %v", l.Program, msg, err)
}

// Wrap is a convenience for callers that want an xerrors-wrapped error
// instead of (or in addition to) a printed diagnostic, matching the
// "%s: %w" wrapping style used throughout cmd/distri.
func Wrap(msg string, err error) error {
	return xerrors.Errorf("%s: %w", msg, err)
}
