package graph

import (
	"fmt"

	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/pkgid"
)

// Graph is the set of all nodes keyed by identifier, plus derived adjacency
// in both directions. It is built incrementally by registration calls; the
// topological order is memoized and invalidated by any registration.
type Graph struct {
	nodes      []*Node
	index      map[pkgid.ID]int
	deps       [][]int // node index -> input node indexes
	dependents [][]int // node index -> dependent node indexes

	order      []int
	orderValid bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[pkgid.ID]int),
	}
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node for an identifier.
func (g *Graph) Node(id pkgid.ID) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in registration order. The slice is shared;
// callers must not mutate it.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// RegisterRawData creates or overwrites a layer-0 node keyed by
// "{tf}{period}{currency}^0-{symbol}" and assigns its value. Raw data needs
// no computation, so the node is marked evaluated immediately. Returns the
// identifier under which the value is reachable.
func (g *Graph) RegisterRawData(symbol string, tf pkgid.Timeframe, p pkgid.Period, c pkgid.Currency, value fn.Value) (pkgid.ID, error) {
	id, err := pkgid.Raw(tf, p, c, symbol)
	if err != nil {
		return pkgid.ID{}, err
	}

	if i, ok := g.index[id]; ok {
		n := g.nodes[i]
		if n.Kind != KindRawData {
			return pkgid.ID{}, fmt.Errorf("%w: %s", ErrNotRawData, id)
		}
		n.Value = value
		n.Evaluated = true
		return id, nil
	}

	g.insert(&Node{
		ID:        id,
		Kind:      KindRawData,
		Value:     value,
		Evaluated: true,
	})
	return id, nil
}

// SetRawValue overwrites the value of an existing raw-data node. This is
// the hot path for feed updates; it does not invalidate the memoized order
// because no edges change.
func (g *Graph) SetRawValue(id pkgid.ID, value fn.Value) error {
	i, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	n := g.nodes[i]
	if n.Kind != KindRawData {
		return fmt.Errorf("%w: %s", ErrNotRawData, id)
	}
	n.Value = value
	n.Evaluated = true
	return nil
}

// RegisterFunction creates a function node dispatching to the registry
// entry for funcType. See RegisterFuncNode for the constraints and the
// meaning of the returned identifier.
func (g *Graph) RegisterFunction(id pkgid.ID, funcType fn.Type, inputs []pkgid.ID, params fn.Params) (pkgid.ID, error) {
	f, err := fn.New(funcType)
	if err != nil {
		return pkgid.ID{}, err
	}
	return g.RegisterFuncNode(id, f, inputs, params)
}

// RegisterFuncNode creates a function node running an arbitrary fn.Func
// (domain judgments register through this path). Constraints:
//
//   - inputs must be non-empty and every referenced node must already exist;
//   - the identifier must be unused;
//   - the declared layer must be strictly greater than the layer of every
//     input. A declared layer of 0 means "assign for me": the node gets
//     1 + max(input layers).
//
// Acyclicity is still validated at sort time: existing-input checking makes
// forward cycles impossible, but the invariant is cheap to keep verifying
// and sort-time detection names the offenders.
//
// The returned identifier carries the final layer and is the key under
// which the node was registered.
func (g *Graph) RegisterFuncNode(id pkgid.ID, f fn.Func, inputs []pkgid.ID, params fn.Params) (pkgid.ID, error) {
	if len(inputs) == 0 {
		return pkgid.ID{}, fmt.Errorf("%w: %s", ErrNoInputs, id)
	}

	maxInputLayer := -1
	for _, in := range inputs {
		i, ok := g.index[in]
		if !ok {
			return pkgid.ID{}, fmt.Errorf("%w: %s references %s", ErrUnknownInput, id, in)
		}
		if l := g.nodes[i].ID.Layer; l > maxInputLayer {
			maxInputLayer = l
		}
	}

	if id.Layer == 0 {
		id.Layer = maxInputLayer + 1
	} else if id.Layer <= maxInputLayer {
		return pkgid.ID{}, fmt.Errorf("%w: %s declared layer %d, max input layer %d",
			ErrLayerConflict, id, id.Layer, maxInputLayer)
	}
	if err := id.Validate(); err != nil {
		return pkgid.ID{}, err
	}
	if _, exists := g.index[id]; exists {
		return pkgid.ID{}, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}

	g.insert(&Node{
		ID:     id,
		Kind:   KindFunction,
		Func:   f,
		Params: params,
		Inputs: append([]pkgid.ID(nil), inputs...),
	})
	return id, nil
}

// insert appends a node to the arena and wires adjacency. Inputs are
// guaranteed to exist by the callers.
func (g *Graph) insert(n *Node) {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = idx
	g.deps = append(g.deps, nil)
	g.dependents = append(g.dependents, nil)

	for _, in := range n.Inputs {
		j := g.index[in]
		g.deps[idx] = append(g.deps[idx], j)
		g.dependents[j] = append(g.dependents[j], idx)
	}

	g.orderValid = false
}

// Dependents returns the identifiers of nodes that directly consume id.
func (g *Graph) Dependents(id pkgid.ID) []pkgid.ID {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]pkgid.ID, 0, len(g.dependents[i]))
	for _, j := range g.dependents[i] {
		out = append(out, g.nodes[j].ID)
	}
	return out
}

// TransitiveDependents returns every node that directly or indirectly
// depends on id, in registration order. Used by the cache cascade.
func (g *Graph) TransitiveDependents(id pkgid.ID) []pkgid.ID {
	start, ok := g.index[id]
	if !ok {
		return nil
	}

	seen := make(map[int]bool)
	stack := append([]int(nil), g.dependents[start]...)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			continue
		}
		seen[i] = true
		stack = append(stack, g.dependents[i]...)
	}

	out := make([]pkgid.ID, 0, len(seen))
	for i, n := range g.nodes {
		if seen[i] {
			out = append(out, n.ID)
		}
	}
	return out
}

// ResetEvaluated clears the transient evaluated latch on all function
// nodes. Raw-data latches are permanent and stay set.
func (g *Graph) ResetEvaluated() {
	for _, n := range g.nodes {
		if n.Kind == KindFunction {
			n.Evaluated = false
		}
	}
}
