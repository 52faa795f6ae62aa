package regalloc

import (
	"sync"

	"tacopt/src/cfg"
	"tacopt/src/tac"
)

// tempGen mints fresh spill temporaries with a base guaranteed not to
// collide with any variable already present in the CFG being rewritten.
type tempGen struct {
	mu   sync.Mutex
	next int
}

func newTempGen(g *cfg.Graph) *tempGen {
	max := 0
	for _, b := range g.Order() {
		for _, inst := range b.Insts {
			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() && lhs.Var.Base > max {
				max = lhs.Var.Base
			}
			inst.Uses(func(o tac.Operand) {
				if o.IsVar() && o.Var.Base > max {
					max = o.Var.Base
				}
			})
		}
	}
	return &tempGen{next: max + 1}
}

func (t *tempGen) fresh() tac.VarID {
	t.mu.Lock()
	defer t.mu.Unlock()
	base := t.next
	t.next++
	return tac.VarID{Base: base, Sub: 1}
}

// insertSpillCode rewrites every block to materialize live range spill
// through memory: phis touching spill are deleted outright, every other
// instruction touching spill gets a fresh temporary and LOAD/STORE/UNLOAD
// bracketing, per occurrence, so the CFG stays in SSA form.
func insertSpillCode(g *cfg.Graph, lrOf map[tac.VarID]int, members map[int][]tac.VarID, spill int) {
	gen := newTempGen(g)

	memberOperands := make([]tac.Operand, 0, len(members[spill]))
	for _, v := range members[spill] {
		memberOperands = append(memberOperands, tac.Var(v))
	}

	for _, b := range g.Order() {
		rewritten := make([]tac.Instruction, 0, len(b.Insts))

		for _, inst := range b.Insts {
			if tac.IsPhi(inst.Op) {
				if phiTouchesSpill(inst, lrOf, spill) {
					continue // delete the phi entirely
				}
				rewritten = append(rewritten, inst)
				continue
			}

			lhsInSpill := false
			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() && lrOf[lhs.Var] == spill {
				lhsInSpill = true
			}
			usesInSpill := false
			inst.Uses(func(o tac.Operand) {
				if o.IsVar() && lrOf[o.Var] == spill {
					usesInSpill = true
				}
			})

			if !lhsInSpill && !usesInSpill {
				rewritten = append(rewritten, inst)
				continue
			}

			t := gen.fresh()
			newInst := inst

			if usesInSpill {
				rewritten = append(rewritten, tac.NewSpillAux(tac.Load, tac.Var(t), memberOperands...))
				replaceUses(&newInst, lrOf, spill, t)
			}
			if lhsInSpill {
				newInst.Fixed[0] = tac.Var(t)
			}
			rewritten = append(rewritten, newInst)

			switch {
			case lhsInSpill:
				rewritten = append(rewritten, tac.NewSpillAux(tac.Store, tac.Var(t)))
			case usesInSpill:
				rewritten = append(rewritten, tac.NewSpillAux(tac.Unload, tac.Var(t)))
			}
		}

		b.Insts = rewritten
	}
}

func phiTouchesSpill(inst tac.Instruction, lrOf map[tac.VarID]int, spill int) bool {
	if lhs, ok := inst.Lhs(); ok && lhs.IsVar() && lrOf[lhs.Var] == spill {
		return true
	}
	for _, arg := range inst.Extra {
		if arg.IsVar() && lrOf[arg.Var] == spill {
			return true
		}
	}
	return false
}

func replaceUses(inst *tac.Instruction, lrOf map[tac.VarID]int, spill int, t tac.VarID) {
	start := 0
	if tac.IsAssign(inst.Op) {
		start = 1
	}
	for i := start; i < inst.NumFixed; i++ {
		if inst.Fixed[i].IsVar() && lrOf[inst.Fixed[i].Var] == spill {
			inst.Fixed[i] = tac.Var(t)
		}
	}
	for i := range inst.Extra {
		if inst.Extra[i].IsVar() && lrOf[inst.Extra[i].Var] == spill {
			inst.Extra[i] = tac.Var(t)
		}
	}
}
