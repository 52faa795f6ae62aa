package regalloc

import (
	"tacopt/src/cfg"
	"tacopt/src/dataflow"
	"tacopt/src/tac"
)

type varset map[tac.VarID]bool

func (s varset) equal(o varset) bool {
	if len(s) != len(o) {
		return false
	}
	for v := range s {
		if !o[v] {
			return false
		}
	}
	return true
}

// fragment holds LiveOut(B), the mutable per-block state the generic
// fixed-point solver threads through this backward analysis.
type fragment struct {
	out varset
}

type liveAnalyzer struct {
	g   *cfg.Graph
	use map[cfg.BlockID]varset
	def map[cfg.BlockID]varset
}

func newLiveAnalyzer(g *cfg.Graph) *liveAnalyzer {
	az := &liveAnalyzer{
		g:   g,
		use: make(map[cfg.BlockID]varset, g.Len()),
		def: make(map[cfg.BlockID]varset, g.Len()),
	}
	for _, b := range g.Order() {
		u := make(varset)
		d := make(varset)
		for _, inst := range b.Insts {
			inst.Uses(func(o tac.Operand) {
				if o.IsVar() && !d[o.Var] {
					u[o.Var] = true
				}
			})
			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() {
				d[lhs.Var] = true
			}
		}
		az.use[b.ID] = u
		az.def[b.ID] = d
	}
	return az
}

func (az *liveAnalyzer) InitFragment(b *cfg.Block) dataflow.Fragment {
	return &fragment{out: make(varset)}
}

// ComputeFragment recomputes LiveOut(b) = union over successors s of
// LiveIn(s), where LiveIn(s) = use(s) ∪ (LiveOut(s) \ def(s)).
func (az *liveAnalyzer) ComputeFragment(frags map[cfg.BlockID]dataflow.Fragment, b *cfg.Block) bool {
	next := make(varset)
	for _, succ := range b.Succs {
		sf := frags[succ.ID].(*fragment)
		for v := range az.use[succ.ID] {
			next[v] = true
		}
		for v := range sf.out {
			if !az.def[succ.ID][v] {
				next[v] = true
			}
		}
	}

	f := frags[b.ID].(*fragment)
	if next.equal(f.out) {
		return false
	}
	f.out = next
	return true
}

// liveOut runs backward live-variable analysis over g and returns
// LiveOut(B) for every block.
func liveOut(g *cfg.Graph) map[cfg.BlockID]varset {
	az := newLiveAnalyzer(g)
	frags := dataflow.Solve(g, az)

	out := make(map[cfg.BlockID]varset, len(frags))
	for id, f := range frags {
		out[id] = f.(*fragment).out
	}
	return out
}
