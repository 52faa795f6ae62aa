package regalloc

import (
	"sort"

	"tacopt/src/cfg"
	"tacopt/src/tac"
)

// unionFind merges SSA variables that participate in a common phi's fan-in
// into one live range, classical union-find with path compression.
type unionFind struct {
	parent map[tac.VarID]tac.VarID
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[tac.VarID]tac.VarID)}
}

func (u *unionFind) find(v tac.VarID) tac.VarID {
	p, ok := u.parent[v]
	if !ok {
		u.parent[v] = v
		return v
	}
	if p == v {
		return v
	}
	root := u.find(p)
	u.parent[v] = root
	return root
}

func (u *unionFind) union(a, b tac.VarID) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// discoverLiveRanges merges every phi's LHS and fan-in into one live range,
// then assigns every remaining variable in the CFG a (possibly singleton)
// canonical range, returning the dense live-range id of each variable and
// the sorted member list of each canonical range.
func discoverLiveRanges(g *cfg.Graph) (lrOf map[tac.VarID]int, members map[int][]tac.VarID) {
	uf := newUnionFind()

	for _, b := range g.Order() {
		for _, inst := range b.Insts {
			if !tac.IsPhi(inst.Op) {
				continue
			}
			lhs, ok := inst.Lhs()
			if !ok || !lhs.IsVar() {
				continue
			}
			for _, arg := range inst.Extra {
				if arg.IsVar() {
					uf.union(lhs.Var, arg.Var)
				}
			}
		}
	}

	seen := make(map[tac.VarID]bool)
	var all []tac.VarID
	record := func(v tac.VarID) {
		if !seen[v] {
			seen[v] = true
			all = append(all, v)
		}
	}
	for _, b := range g.Order() {
		for _, inst := range b.Insts {
			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() {
				record(lhs.Var)
			}
			inst.Uses(func(o tac.Operand) {
				if o.IsVar() {
					record(o.Var)
				}
			})
		}
	}

	return nub(uf, all)
}

// nub assigns each distinct live-range root a dense non-negative id,
// ordered deterministically by the root's (base, subscript).
func nub(uf *unionFind, vars []tac.VarID) (lrOf map[tac.VarID]int, members map[int][]tac.VarID) {
	rootSet := make(map[tac.VarID]bool)
	for _, v := range vars {
		rootSet[uf.find(v)] = true
	}

	roots := make([]tac.VarID, 0, len(rootSet))
	for r := range rootSet {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Base != roots[j].Base {
			return roots[i].Base < roots[j].Base
		}
		return roots[i].Sub < roots[j].Sub
	})

	idOf := make(map[tac.VarID]int, len(roots))
	for i, r := range roots {
		idOf[r] = i
	}

	lrOf = make(map[tac.VarID]int, len(vars))
	members = make(map[int][]tac.VarID, len(roots))
	for _, v := range vars {
		id := idOf[uf.find(v)]
		lrOf[v] = id
		members[id] = append(members[id], v)
	}
	for id := range members {
		sort.Slice(members[id], func(i, j int) bool {
			if members[id][i].Base != members[id][j].Base {
				return members[id][i].Base < members[id][j].Base
			}
			return members[id][i].Sub < members[id][j].Sub
		})
	}
	return lrOf, members
}
