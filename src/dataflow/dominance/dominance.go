// Package dominance computes dominator sets, immediate dominators and
// dominance frontiers over a control flow graph, the prerequisite data the
// SSA builder needs to place phi-functions.
package dominance

import (
	"sort"

	"tacopt/src/cfg"
	"tacopt/src/dataflow"
	"tacopt/src/xerrors"
)

const stage = "dominance"

type set map[cfg.BlockID]bool

func (s set) equal(o set) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o[id] {
			return false
		}
	}
	return true
}

func (s set) clone() set {
	out := make(set, len(s))
	for id := range s {
		out[id] = true
	}
	return out
}

// Result holds the outcome of dominance analysis: dominator sets, immediate
// dominators, and dominance frontiers for every block in the analyzed CFG.
type Result struct {
	dom      map[cfg.BlockID]set
	idom     map[cfg.BlockID]cfg.BlockID
	hasIdom  map[cfg.BlockID]bool
	df       map[cfg.BlockID]set
	children map[cfg.BlockID][]cfg.BlockID
	root     cfg.BlockID
}

// Dominators returns the set of blocks that dominate id, including id
// itself.
func (r *Result) Dominators(id cfg.BlockID) map[cfg.BlockID]bool {
	return r.dom[id]
}

// Dominates reports whether a dominates b (a == b counts as dominating).
func (r *Result) Dominates(a, b cfg.BlockID) bool {
	return r.dom[b][a]
}

// IDom returns id's immediate dominator. The root block has none.
func (r *Result) IDom(id cfg.BlockID) (cfg.BlockID, bool) {
	d, ok := r.hasIdom[id]
	if !ok || !d {
		return 0, false
	}
	return r.idom[id], true
}

// DF returns id's dominance frontier.
func (r *Result) DF(id cfg.BlockID) map[cfg.BlockID]bool {
	return r.df[id]
}

// Children returns the blocks immediately dominated by id, i.e. id's
// children in the dominator tree. SSA renaming walks the dominator tree in
// this preorder.
func (r *Result) Children(id cfg.BlockID) []cfg.BlockID {
	return r.children[id]
}

type analyzer struct {
	g    *cfg.Graph
	root cfg.BlockID
	all  set
}

func (az *analyzer) InitFragment(b *cfg.Block) dataflow.Fragment {
	f := make(set)
	if b.ID == az.root {
		f[b.ID] = true
	} else {
		for id := range az.all {
			f[id] = true
		}
	}
	return &f
}

func (az *analyzer) ComputeFragment(frags map[cfg.BlockID]dataflow.Fragment, b *cfg.Block) bool {
	if b.ID == az.root {
		return false // Dom(root) = {root}, fixed for the analysis's duration.
	}

	var next set
	for i, pred := range b.Preds {
		pf := *frags[pred.ID].(*set)
		if i == 0 {
			next = pf.clone()
			continue
		}
		for id := range next {
			if !pf[id] {
				delete(next, id)
			}
		}
	}
	if next == nil {
		next = make(set) // no predecessors: meet over empty set is empty.
	}
	next[b.ID] = true

	cur := frags[b.ID].(*set)
	if next.equal(*cur) {
		return false
	}
	*cur = next
	return true
}

// Analyze computes dominator sets, immediate dominators and dominance
// frontiers for g.
func Analyze(g *cfg.Graph) (*Result, error) {
	all := make(set, g.Len())
	for _, b := range g.Order() {
		all[b.ID] = true
	}

	az := &analyzer{g: g, root: g.Root.ID, all: all}
	frags := dataflow.Solve(g, az)

	res := &Result{
		dom:      make(map[cfg.BlockID]set, g.Len()),
		idom:     make(map[cfg.BlockID]cfg.BlockID, g.Len()),
		hasIdom:  make(map[cfg.BlockID]bool, g.Len()),
		df:       make(map[cfg.BlockID]set, g.Len()),
		children: make(map[cfg.BlockID][]cfg.BlockID, g.Len()),
		root:     g.Root.ID,
	}
	for id, f := range frags {
		res.dom[id] = *f.(*set)
	}

	if err := computeIdoms(g, res); err != nil {
		return nil, err
	}
	computeDFs(g, res)

	return res, nil
}

// computeIdoms finds, for each non-root block B, the unique D in
// Dom(B)\{B} such that no other D' in Dom(B)\{B,D} is dominated by D.
func computeIdoms(g *cfg.Graph, res *Result) error {
	for _, b := range g.Order() {
		if b.ID == res.root {
			continue
		}

		candidates := make([]cfg.BlockID, 0, len(res.dom[b.ID]))
		for d := range res.dom[b.ID] {
			if d != b.ID {
				candidates = append(candidates, d)
			}
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

		var idom cfg.BlockID
		found := false
		for _, d := range candidates {
			dominatesOtherCandidate := false
			for _, other := range candidates {
				if other == d {
					continue
				}
				if res.dom[other][d] {
					dominatesOtherCandidate = true
					break
				}
			}
			if !dominatesOtherCandidate {
				if found {
					return xerrors.NewMalformed(stage, int(b.ID), -1, "", "block has more than one immediate dominator candidate")
				}
				idom = d
				found = true
			}
		}
		if !found {
			return xerrors.NewMalformed(stage, int(b.ID), -1, "", "block has no immediate dominator")
		}

		res.idom[b.ID] = idom
		res.hasIdom[b.ID] = true
		res.children[idom] = append(res.children[idom], b.ID)
	}

	for id := range res.children {
		cs := res.children[id]
		sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
	}
	return nil
}

// computeDFs computes, for each block B, the dominance frontier
// contribution of each of B's predecessors: walk the idom chain from the
// predecessor up to (but not including) B's own immediate dominator, adding
// B to each walked block's frontier. B's predecessor count isn't checked:
// when B has a single predecessor other than itself the walk is a no-op
// (that predecessor already is B's idom), but a self-loop header's only
// predecessor is itself, which does need to land in its own frontier.
func computeDFs(g *cfg.Graph, res *Result) {
	for id := range res.dom {
		res.df[id] = make(set)
	}

	for _, b := range g.Order() {
		idomB, _ := res.IDom(b.ID)
		for _, p := range b.Preds {
			for runner := p.ID; runner != idomB; {
				res.df[runner][b.ID] = true
				next, ok := res.IDom(runner)
				if !ok {
					break // reached the root without hitting idomB: stop.
				}
				runner = next
			}
		}
	}
}
