// Package graph holds the node table and dependency wiring of the
// evaluation DAG. Nodes are stored arena-style: each gets a stable integer
// index at registration and adjacency is kept as index lists, with the
// identifier-to-index mapping in a side table.
//
// A Graph is not safe for concurrent use. Registration must never overlap
// an evaluation pass; the feed session serializes the two.
package graph

import (
	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/pkgid"
)

// Kind distinguishes raw-data leaves from computed function nodes.
type Kind int

// Node kinds.
const (
	KindRawData Kind = iota
	KindFunction
)

// String returns a short label for logging.
func (k Kind) String() string {
	if k == KindRawData {
		return "raw"
	}
	return "function"
}

// Node is one graph vertex. Value and Evaluated mutate on every evaluation
// pass; everything else is fixed at registration.
type Node struct {
	ID     pkgid.ID
	Kind   Kind
	Func   fn.Func   // nil for raw-data nodes
	Params fn.Params // nil for raw-data nodes
	Inputs []pkgid.ID

	// Value is the last stored result: the externally supplied value for
	// raw-data nodes, the last computed result for function nodes.
	Value fn.Value

	// Evaluated latches permanently for raw-data nodes once a value is
	// assigned, and transiently for function nodes between passes.
	Evaluated bool
}

// FuncType returns the registry tag of the node's function, or "" for
// raw-data nodes.
func (n *Node) FuncType() fn.Type {
	if n.Func == nil {
		return ""
	}
	return n.Func.Type()
}
