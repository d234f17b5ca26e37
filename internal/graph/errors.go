package graph

import (
	"errors"
	"fmt"
	"strings"

	"fx-signal-lab/internal/pkgid"
)

// Registration and ordering errors.
var (
	// ErrDuplicateNode is returned when registering a function node whose
	// identifier already exists. Raw-data nodes may be overwritten; function
	// nodes may not.
	ErrDuplicateNode = errors.New("node already registered")

	// ErrUnknownInput is returned when a function node references an input
	// identifier that has not been registered.
	ErrUnknownInput = errors.New("input node not registered")

	// ErrNoInputs is returned when a function node is registered with an
	// empty input list. No function in this system takes zero inputs.
	ErrNoInputs = errors.New("function node requires at least one input")

	// ErrNotFound is returned when looking up an unregistered identifier.
	ErrNotFound = errors.New("node not found")

	// ErrNotRawData is returned when writing a raw value to a function node.
	ErrNotRawData = errors.New("node is not a raw-data node")

	// ErrLayerConflict is returned when a declared layer is not strictly
	// greater than the layers of all resolved inputs. Layer consistency is
	// enforced as a graph invariant.
	ErrLayerConflict = errors.New("declared layer conflicts with input layers")

	// ErrCycle is the sentinel wrapped by CycleError.
	ErrCycle = errors.New("cycle detected")
)

// CycleError reports that the topological sort could not place every node.
// Residual holds the identifiers left inside the cycle, in registration
// order, so the offending wiring can be found.
type CycleError struct {
	Residual []pkgid.ID
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	names := make([]string, 0, len(e.Residual))
	for _, id := range e.Residual {
		names = append(names, id.Format())
	}
	return fmt.Sprintf("cycle detected among %d node(s): %s", len(e.Residual), strings.Join(names, ", "))
}

// Unwrap returns ErrCycle so callers can match with errors.Is.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}
