package pkgid

import (
	"errors"
	"fmt"
)

// ErrIdentifierFormat is the sentinel for all identifier parsing and
// validation failures. Use errors.Is to detect it.
var ErrIdentifierFormat = errors.New("malformed node identifier")

// ParseError reports why a string could not be parsed or an ID failed
// validation. It unwraps to ErrIdentifierFormat.
type ParseError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse identifier %q: %s", e.Input, e.Reason)
}

// Unwrap returns the sentinel so callers can match with errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrIdentifierFormat
}
