// Package ssa transforms a Normal-form control flow graph into semi-pruned
// SSA form in place: dominance-frontier phi-placement for variables live
// across blocks, followed by Cytron-style dominator-tree renaming.
package ssa

import (
	"sort"

	"tacopt/src/cfg"
	"tacopt/src/dataflow/dominance"
	"tacopt/src/tac"
	"tacopt/src/util"
	"tacopt/src/xerrors"
)

const stage = "ssa"

// ToSSA transforms g from Normal to SSA form in place. g must be in Normal
// form; transforming a CFG already in SSA form is a precondition violation,
// not a silent no-op.
func ToSSA(g *cfg.Graph) error {
	if g.Form != cfg.Normal {
		return xerrors.NewPrecondition(stage, "CFG is not in Normal form (got %s)", g.Form)
	}

	dom, err := dominance.Analyze(g)
	if err != nil {
		return err
	}

	globals, defBlocks := findGlobals(g)
	placePhis(g, dom, globals, defBlocks)

	st := &renamer{g: g, dom: dom, counters: map[int]int{}, stacks: map[int][]int{}}

	// Every global defined somewhere in the function but not in the entry
	// block gets a synthetic v_1 name before renaming begins, so uses on
	// paths that bypass the entry still resolve to something. A global with
	// no definition anywhere is not given one: a use of it is malformed IR,
	// caught as a fatal error the first time renaming reaches it.
	for base := range globals {
		if len(defBlocks[base]) > 0 && !defBlocks[base][g.Root.ID] {
			st.counters[base] = 1
			st.stacks[base] = []int{1}
		}
	}

	if err := st.rename(g.Root.ID); err != nil {
		return err
	}

	g.Form = cfg.SSA
	return nil
}

// findGlobals identifies every variable base used in some block before
// being defined in that same block (the classical "live across blocks"
// globals rule), and records every block that assigns each base.
func findGlobals(g *cfg.Graph) (globals map[int]bool, defBlocks map[int]map[cfg.BlockID]bool) {
	globals = make(map[int]bool)
	defBlocks = make(map[int]map[cfg.BlockID]bool)

	for _, b := range g.Order() {
		killed := make(map[int]bool)
		for _, inst := range b.Insts {
			inst.Uses(func(o tac.Operand) {
				if o.IsVar() && !killed[o.Var.Base] {
					globals[o.Var.Base] = true
				}
			})
			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() {
				killed[lhs.Var.Base] = true
				if defBlocks[lhs.Var.Base] == nil {
					defBlocks[lhs.Var.Base] = make(map[cfg.BlockID]bool)
				}
				defBlocks[lhs.Var.Base][b.ID] = true
			}
		}
	}
	return globals, defBlocks
}

// placePhis inserts a phi for every global at every block in the iterated
// dominance frontier of its definition sites.
func placePhis(g *cfg.Graph, dom *dominance.Result, globals map[int]bool, defBlocks map[int]map[cfg.BlockID]bool) {
	bases := make([]int, 0, len(globals))
	for base := range globals {
		bases = append(bases, base)
	}
	sort.Ints(bases)

	for _, base := range bases {
		hasPhi := make(map[cfg.BlockID]bool)
		onWorklist := make(map[cfg.BlockID]bool)

		var seed []cfg.BlockID
		for id := range defBlocks[base] {
			seed = append(seed, id)
		}
		sortBlockIDs(seed)

		worklist := &util.Stack{}
		for _, id := range seed {
			worklist.Push(id)
			onWorklist[id] = true
		}

		for worklist.Size() > 0 {
			w := worklist.Pop().(cfg.BlockID)

			var frontier []cfg.BlockID
			for f := range dom.DF(w) {
				frontier = append(frontier, f)
			}
			sortBlockIDs(frontier)

			for _, f := range frontier {
				if hasPhi[f] {
					continue
				}
				insertPhi(g, f, base)
				hasPhi[f] = true
				if !onWorklist[f] {
					onWorklist[f] = true
					worklist.Push(f)
				}
			}
		}
	}
}

func sortBlockIDs(ids []cfg.BlockID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// insertPhi inserts `v = phi(v, v, ..., v)` (arity == len(block.Preds)) at
// the top of block id, after any phis already there.
func insertPhi(g *cfg.Graph, id cfg.BlockID, base int) {
	b, ok := g.Block(id)
	if !ok {
		return
	}

	args := make([]tac.Operand, len(b.Preds))
	for i := range args {
		args[i] = tac.Var(tac.VarID{Base: base})
	}
	phi := tac.NewAssignPhi(tac.Var(tac.VarID{Base: base}), args...)

	pos := 0
	for pos < len(b.Insts) && tac.IsPhi(b.Insts[pos].Op) {
		pos++
	}
	b.Insts = append(b.Insts, tac.Instruction{})
	copy(b.Insts[pos+1:], b.Insts[pos:])
	b.Insts[pos] = phi
}

// renamer carries the per-base counters and stacks threaded through the
// recursive Cytron renaming pass.
type renamer struct {
	g        *cfg.Graph
	dom      *dominance.Result
	counters map[int]int
	stacks   map[int][]int
}

func (st *renamer) newName(base int) int {
	st.counters[base]++
	n := st.counters[base]
	st.stacks[base] = append(st.stacks[base], n)
	return n
}

func (st *renamer) top(base int) (int, bool) {
	s := st.stacks[base]
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

func (st *renamer) pop(base int) {
	s := st.stacks[base]
	st.stacks[base] = s[:len(s)-1]
}

func (st *renamer) rename(id cfg.BlockID) error {
	b, _ := st.g.Block(id)
	var definedHere []int

	for idx := range b.Insts {
		inst := &b.Insts[idx]

		if tac.IsPhi(inst.Op) {
			base := inst.Fixed[0].Var.Base
			inst.Fixed[0] = tac.Var(tac.VarID{Base: base, Sub: st.newName(base)})
			definedHere = append(definedHere, base)
			continue
		}

		start := 0
		if tac.IsAssign(inst.Op) {
			start = 1
		}
		for i := start; i < inst.NumFixed; i++ {
			if !inst.Fixed[i].IsVar() {
				continue
			}
			base := inst.Fixed[i].Var.Base
			sub, ok := st.top(base)
			if !ok {
				return xerrors.NewMalformed(stage, int(id), idx, tac.VarID{Base: base}.String(), "use of variable with no reaching definition")
			}
			inst.Fixed[i].Var.Sub = sub
		}
		for i := range inst.Extra {
			if !inst.Extra[i].IsVar() {
				continue
			}
			base := inst.Extra[i].Var.Base
			sub, ok := st.top(base)
			if !ok {
				return xerrors.NewMalformed(stage, int(id), idx, tac.VarID{Base: base}.String(), "use of variable with no reaching definition")
			}
			inst.Extra[i].Var.Sub = sub
		}

		if tac.IsAssign(inst.Op) && inst.Fixed[0].IsVar() {
			base := inst.Fixed[0].Var.Base
			inst.Fixed[0].Var.Sub = st.newName(base)
			definedHere = append(definedHere, base)
		}
	}

	// Patch the matching phi fan-in slot in every successor.
	for _, succ := range b.Succs {
		i, ok := succ.PredIndex(b)
		if !ok {
			continue
		}
		for sidx := range succ.Insts {
			sInst := &succ.Insts[sidx]
			if !tac.IsPhi(sInst.Op) {
				break // phis are contiguous at the top of the block.
			}
			if i >= len(sInst.Extra) {
				return xerrors.NewMalformed(stage, int(succ.ID), sidx, "", "phi arity %d does not match predecessor count", len(sInst.Extra))
			}
			base := sInst.Extra[i].Var.Base
			sub, ok := st.top(base)
			if !ok {
				return xerrors.NewMalformed(stage, int(succ.ID), sidx, tac.VarID{Base: base}.String(), "use of variable with no reaching definition")
			}
			sInst.Extra[i].Var.Sub = sub
		}
	}

	for _, child := range st.dom.Children(id) {
		if err := st.rename(child); err != nil {
			return err
		}
	}

	for _, base := range definedHere {
		st.pop(base)
	}
	return nil
}
