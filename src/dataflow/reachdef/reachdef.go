// Package reachdef computes, for every block, the set of assignment sites
// that may reach its entry along some control-flow path.
package reachdef

import (
	"tacopt/src/cfg"
	"tacopt/src/dataflow"
	"tacopt/src/tac"
)

// DefSite identifies a single assignment: the block it appears in and its
// instruction index within that block.
type DefSite struct {
	Block cfg.BlockID
	Pos   int
}

type set map[DefSite]bool

func (s set) clone() set {
	out := make(set, len(s))
	for d := range s {
		out[d] = true
	}
	return out
}

func (s set) equal(o set) bool {
	if len(s) != len(o) {
		return false
	}
	for d := range s {
		if !o[d] {
			return false
		}
	}
	return true
}

// Result holds the outcome of reaching-definitions analysis.
type Result struct {
	rd map[cfg.BlockID]set
}

// ReachingAt returns the definitions reaching the entry of block id.
func (r *Result) ReachingAt(id cfg.BlockID) map[DefSite]bool {
	return r.rd[id]
}

// fragment is the per-block mutable state threaded through the generic
// solver: the definitions currently believed to reach this block's entry.
type fragment struct {
	rd set
}

type analyzer struct {
	g       *cfg.Graph
	deDef   map[cfg.BlockID]set
	deKill  map[cfg.BlockID]set
}

// Analyze runs reaching-definitions analysis over g.
func Analyze(g *cfg.Graph) *Result {
	az := &analyzer{g: g}
	az.computeDeDefAndKill()

	frags := dataflow.Solve(g, az)

	res := &Result{rd: make(map[cfg.BlockID]set, len(frags))}
	for id, f := range frags {
		res.rd[id] = f.(*fragment).rd
	}
	return res
}

// computeDeDefAndKill computes, once, every block's downward-exposed
// definitions and the definitions that block obscures.
func (az *analyzer) computeDeDefAndKill() {
	allDefsByVar := make(map[tac.VarID][]DefSite)
	defsOf := make(map[cfg.BlockID]set)

	for _, b := range az.g.Order() {
		local := make(set)
		for pos, inst := range b.Insts {
			lhs, ok := inst.Lhs()
			if !ok || !lhs.IsVar() {
				continue
			}
			site := DefSite{Block: b.ID, Pos: pos}
			allDefsByVar[lhs.Var] = append(allDefsByVar[lhs.Var], site)
			local[site] = true
		}
		defsOf[b.ID] = local
	}

	az.deDef = make(map[cfg.BlockID]set, az.g.Len())
	az.deKill = make(map[cfg.BlockID]set, az.g.Len())

	for _, b := range az.g.Order() {
		// downward exposed: definitions in b whose variable is not
		// redefined later in b. Scan backward, keep the first (i.e. last
		// in program order) definition per variable.
		seen := make(map[tac.VarID]bool)
		exposed := make(set)
		for pos := len(b.Insts) - 1; pos >= 0; pos-- {
			lhs, ok := b.Insts[pos].Lhs()
			if !ok || !lhs.IsVar() {
				continue
			}
			if seen[lhs.Var] {
				continue
			}
			seen[lhs.Var] = true
			exposed[DefSite{Block: b.ID, Pos: pos}] = true
		}
		az.deDef[b.ID] = exposed

		kill := make(set)
		for v := range seen {
			for _, site := range allDefsByVar[v] {
				if !exposed[site] {
					kill[site] = true
				}
			}
		}
		az.deKill[b.ID] = kill
	}
}

func (az *analyzer) InitFragment(b *cfg.Block) dataflow.Fragment {
	return &fragment{rd: make(set)}
}

func (az *analyzer) ComputeFragment(frags map[cfg.BlockID]dataflow.Fragment, b *cfg.Block) bool {
	next := make(set)
	for _, pred := range b.Preds {
		pf := frags[pred.ID].(*fragment)
		for d := range az.deDef[pred.ID] {
			next[d] = true
		}
		for d := range pf.rd {
			if !az.deKill[pred.ID][d] {
				next[d] = true
			}
		}
	}

	f := frags[b.ID].(*fragment)
	if next.equal(f.rd) {
		return false
	}
	f.rd = next
	return true
}
