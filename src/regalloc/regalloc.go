// Package regalloc performs graph-coloring register allocation over an SSA
// CFG: live-range discovery and coalescing, interference graph construction,
// simplify/select coloring, and spill-code insertion when K colors don't
// suffice.
package regalloc

import (
	"fmt"

	"tacopt/src/cfg"
	"tacopt/src/tac"
	"tacopt/src/xerrors"
)

const stage = "regalloc"

// Coloring maps every variable identifier to a color in 0..K, via its
// canonical live range.
type Coloring struct {
	k      int
	colors map[tac.VarID]int
}

// K returns the number of colors the coloring was computed with.
func (c *Coloring) K() int { return c.k }

// Color returns v's assigned color, and whether v appeared in the CFG that
// was allocated.
func (c *Coloring) Color(v tac.VarID) (int, bool) {
	col, ok := c.colors[v]
	return col, ok
}

// Allocate colors g's SSA variables with k available colors, mutating g
// with spill code whenever coloring fails, until either a valid coloring is
// found or every candidate has already been spilled once.
func Allocate(g *cfg.Graph, k int) (*Coloring, error) {
	if g.Form != cfg.SSA {
		return nil, xerrors.NewPrecondition(stage, "CFG is not in SSA form (got %s)", g.Form)
	}
	if k <= 0 {
		return nil, xerrors.NewPrecondition(stage, "K must be positive, got %d", k)
	}

	spilled := make(map[int]bool)

	for {
		lrOf, members := discoverLiveRanges(g)
		ig, err := buildInterferenceGraph(g, lrOf)
		if err != nil {
			return nil, err
		}

		colors, uncolored, ok := colorGraph(ig, k)
		if ok {
			return buildColoring(lrOf, colors, k), nil
		}

		candidate := -1
		for _, id := range uncolored {
			if !spilled[id] {
				candidate = id
				break
			}
		}
		if candidate < 0 {
			return nil, xerrors.NewResourceExhaustion(
				fmt.Sprintf("%d", uncolored[0]),
				"out of registers: K=%d insufficient and every spill candidate already spilled", k,
			)
		}

		spilled[candidate] = true
		insertSpillCode(g, lrOf, members, candidate)
	}
}

func buildColoring(lrOf map[tac.VarID]int, colors map[int]int, k int) *Coloring {
	out := make(map[tac.VarID]int, len(lrOf))
	for v, lr := range lrOf {
		out[v] = colors[lr]
	}
	return &Coloring{k: k, colors: out}
}
