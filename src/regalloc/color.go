package regalloc

import (
	"github.com/oleiade/lane"

	"tacopt/src/graph"
)

// simplifyFrame is what the simplify phase pushes for each removed node: its
// id and the neighbors it had at the moment of removal, needed to rebuild
// the constraint set during select.
type simplifyFrame struct {
	id        int
	neighbors []int
}

// colorGraph runs simplify-then-select over ig with k available colors. It
// mutates ig (nodes are removed during simplify). On success every node in
// ig's original node set has a color; on failure, uncolored lists the nodes
// select could not assign a color to, in ascending id order.
func colorGraph(ig *graph.Graph, k int) (colors map[int]int, uncolored []int, ok bool) {
	allIDs := ig.Nodes()

	st := lane.NewStack()
	for !ig.IsEmpty() {
		id, found := ig.NodeWithDegreeLessThan(k)
		if !found {
			id = highestDegreeNode(ig)
		}
		st.Push(simplifyFrame{id: id, neighbors: ig.Neighbors(id)})
		ig.RemoveNode(id)
	}

	colors = make(map[int]int, len(allIDs))
	for !st.Empty() {
		f := st.Pop().(simplifyFrame)

		used := make(map[int]bool, len(f.neighbors))
		for _, n := range f.neighbors {
			if c, present := colors[n]; present {
				used[c] = true
			}
		}

		for c := 0; c < k; c++ {
			if !used[c] {
				colors[f.id] = c
				break
			}
		}
	}

	for _, id := range allIDs {
		if _, has := colors[id]; !has {
			uncolored = append(uncolored, id)
		}
	}
	return colors, uncolored, len(uncolored) == 0
}

// highestDegreeNode picks the constrained-node simplify candidate when no
// node has degree < k: the node with the highest degree, ties broken by the
// smallest id.
func highestDegreeNode(g *graph.Graph) int {
	ids := g.Nodes()
	best := ids[0]
	bestDeg := -1
	for _, id := range ids {
		if d := g.Degree(id); d > bestDeg {
			bestDeg = d
			best = id
		}
	}
	return best
}
