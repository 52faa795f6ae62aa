// Package graph is a small undirected graph used as the register
// allocator's interference graph: nodes are live-range ids, edges mark
// pairs of ranges that are simultaneously live.
package graph

import (
	"sort"

	"tacopt/src/xerrors"
)

const stage = "graph"

// Graph is an undirected graph over int-valued node ids.
type Graph struct {
	adj map[int]map[int]bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[int]map[int]bool)}
}

// AddNode inserts id with no edges. Re-adding an id already present is a
// precondition violation, not a silent no-op.
func (g *Graph) AddNode(id int) error {
	if _, ok := g.adj[id]; ok {
		return xerrors.NewPrecondition(stage, "node %d already exists", id)
	}
	g.adj[id] = make(map[int]bool)
	return nil
}

// HasNode reports whether id is present in the graph.
func (g *Graph) HasNode(id int) bool {
	_, ok := g.adj[id]
	return ok
}

// AddEdge marks a and b as interfering. Both a and b must already be nodes
// in the graph; a missing endpoint is a precondition violation. A self-edge
// (a == b) is a no-op: a range never interferes with itself.
func (g *Graph) AddEdge(a, b int) error {
	if !g.HasNode(a) {
		return xerrors.NewPrecondition(stage, "cannot find node %d", a)
	}
	if !g.HasNode(b) {
		return xerrors.NewPrecondition(stage, "cannot find node %d", b)
	}
	if a == b {
		return nil
	}
	g.adj[a][b] = true
	g.adj[b][a] = true
	return nil
}

// Clear resets the graph to empty, as if freshly constructed by New.
func (g *Graph) Clear() {
	g.adj = make(map[int]map[int]bool)
}

// RemoveNode deletes id and every edge touching it.
func (g *Graph) RemoveNode(id int) {
	for n := range g.adj[id] {
		delete(g.adj[n], id)
	}
	delete(g.adj, id)
}

// Degree returns the number of edges touching id.
func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

// Neighbors returns id's neighbors in ascending order.
func (g *Graph) Neighbors(id int) []int {
	out := make([]int, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Nodes returns every node currently in the graph, in ascending order.
func (g *Graph) Nodes() []int {
	out := make([]int, 0, len(g.adj))
	for n := range g.adj {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Size returns the number of nodes remaining in the graph.
func (g *Graph) Size() int {
	return len(g.adj)
}

// IsEmpty reports whether the graph has no nodes left.
func (g *Graph) IsEmpty() bool {
	return len(g.adj) == 0
}

// Interferes reports whether a and b share an edge.
func (g *Graph) Interferes(a, b int) bool {
	return g.adj[a][b]
}

// NodeWithDegreeLessThan returns the smallest-id node with degree strictly
// less than k, and true. It returns false if no such node exists.
func (g *Graph) NodeWithDegreeLessThan(k int) (int, bool) {
	for _, id := range g.Nodes() {
		if g.Degree(id) < k {
			return id, true
		}
	}
	return 0, false
}
