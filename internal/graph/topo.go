package graph

import (
	"container/heap"

	"fx-signal-lab/internal/pkgid"
)

// Order returns a valid evaluation order over all registered nodes,
// computed with Kahn's algorithm. Ready nodes are dequeued by ascending
// layer, then by registration index, so the order is fully deterministic.
// The result is memoized until the next registration.
//
// If not every node can be placed the graph contains a cycle and a
// *CycleError naming the residual nodes is returned.
func (g *Graph) Order() ([]pkgid.ID, error) {
	idxs, err := g.orderIndexes()
	if err != nil {
		return nil, err
	}
	out := make([]pkgid.ID, len(idxs))
	for i, idx := range idxs {
		out[i] = g.nodes[idx].ID
	}
	return out, nil
}

// orderIndexes returns the memoized order as arena indexes.
func (g *Graph) orderIndexes() ([]int, error) {
	if g.orderValid {
		return g.order, nil
	}

	inDegree := make([]int, len(g.nodes))
	for i := range g.nodes {
		inDegree[i] = len(g.deps[i])
	}

	ready := &nodeQueue{graph: g}
	heap.Init(ready)
	for i, d := range inDegree {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]int, 0, len(g.nodes))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, i)
		for _, j := range g.dependents[i] {
			inDegree[j]--
			if inDegree[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}

	if len(order) < len(g.nodes) {
		placed := make([]bool, len(g.nodes))
		for _, i := range order {
			placed[i] = true
		}
		var residual []pkgid.ID
		for i, n := range g.nodes {
			if !placed[i] {
				residual = append(residual, n.ID)
			}
		}
		return nil, &CycleError{Residual: residual}
	}

	g.order = order
	g.orderValid = true
	return g.order, nil
}

// Layers returns the memoized order grouped by layer number, ascending.
// With layer consistency enforced at registration, nodes within one group
// never depend on each other, which is what makes intra-layer parallel
// evaluation safe.
func (g *Graph) Layers() ([][]pkgid.ID, error) {
	idxs, err := g.orderIndexes()
	if err != nil {
		return nil, err
	}

	var groups [][]pkgid.ID
	lastLayer := -1
	for _, idx := range idxs {
		n := g.nodes[idx]
		if n.ID.Layer != lastLayer {
			groups = append(groups, nil)
			lastLayer = n.ID.Layer
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], n.ID)
	}
	return groups, nil
}

// nodeQueue is a min-heap of arena indexes ordered by (layer, index).
type nodeQueue struct {
	graph *Graph
	items []int
}

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(a, b int) bool {
	ia, ib := q.items[a], q.items[b]
	la := q.graph.nodes[ia].ID.Layer
	lb := q.graph.nodes[ib].ID.Layer
	if la != lb {
		return la < lb
	}
	return ia < ib
}

func (q *nodeQueue) Swap(a, b int) { q.items[a], q.items[b] = q.items[b], q.items[a] }

func (q *nodeQueue) Push(x any) { q.items = append(q.items, x.(int)) }

func (q *nodeQueue) Pop() any {
	last := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return last
}
