package regalloc

import (
	"fmt"

	"tacopt/src/cfg"
	"tacopt/src/graph"
	"tacopt/src/tac"
)

// buildInterferenceGraph constructs the register allocator's interference
// graph: one node per distinct live range, an edge between two ranges
// simultaneously live at some program point.
func buildInterferenceGraph(g *cfg.Graph, lrOf map[tac.VarID]int) (*graph.Graph, error) {
	ig := graph.New()

	distinct := make(map[int]bool)
	for _, lr := range lrOf {
		distinct[lr] = true
	}
	for lr := range distinct {
		if err := ig.AddNode(lr); err != nil {
			return nil, fmt.Errorf("interference graph: %w", err)
		}
	}

	out := liveOut(g)

	for _, b := range g.Order() {
		liveNow := make(map[int]bool)
		for v := range out[b.ID] {
			liveNow[lrOf[v]] = true
		}

		for i := len(b.Insts) - 1; i >= 0; i-- {
			inst := b.Insts[i]

			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() {
				d := lrOf[lhs.Var]
				for l := range liveNow {
					if l != d {
						if err := ig.AddEdge(d, l); err != nil {
							return nil, fmt.Errorf("interference graph: %w", err)
						}
					}
				}
				delete(liveNow, d)
			}

			inst.Uses(func(o tac.Operand) {
				if o.IsVar() {
					liveNow[lrOf[o.Var]] = true
				}
			})
		}
	}

	return ig, nil
}
