// Package debug is a consumer utility: a pretty-printer for TAC
// instructions and control-flow graphs, plus a structured dump of the
// register allocator's internal results. It sits outside the core pipeline
// and never influences its behaviour.
package debug

import (
	"fmt"
	"io"
	"sort"

	"github.com/davecgh/go-spew/spew"

	"tacopt/src/cfg"
	"tacopt/src/regalloc"
	"tacopt/src/tac"
)

// mnemonic maps an opcode to the short infix/prefix symbol the printer uses
// in place of the opcode's all-caps wire name.
func mnemonic(op tac.Opcode) string {
	switch op {
	case tac.Add:
		return "+"
	case tac.Sub:
		return "-"
	case tac.Mul:
		return "*"
	case tac.Div:
		return "/"
	case tac.Mod:
		return "%"
	default:
		return op.String()
	}
}

// PrintInstruction writes a single instruction in a roughly source-like
// form, e.g. "t3 = t1 + t2" or "t3_2 = phi(t3_3, t3_4)".
func PrintInstruction(w io.Writer, inst tac.Instruction) {
	switch {
	case tac.IsPhi(inst.Op):
		lhs, _ := inst.Lhs()
		fmt.Fprintf(w, "%s = phi(%s)", lhs, joinOperands(inst.Extra))
	case inst.Op == tac.AssignCall:
		fmt.Fprintf(w, "%s = call %s(%s)", inst.Fixed[0], inst.Fixed[1], joinOperands(inst.Extra))
	case inst.Op == tac.Call:
		fmt.Fprintf(w, "call %s(%s)", inst.Fixed[0], joinOperands(inst.Extra))
	case inst.Op == tac.Assign:
		fmt.Fprintf(w, "%s = %s", inst.Fixed[0], inst.Fixed[1])
	case inst.NumFixed == 3:
		fmt.Fprintf(w, "%s = %s %s %s", inst.Fixed[0], inst.Fixed[1], mnemonic(inst.Op), inst.Fixed[2])
	case inst.Op == tac.Cmp:
		fmt.Fprintf(w, "cmp %s, %s", inst.Fixed[0], inst.Fixed[1])
	case inst.Op == tac.Load:
		fmt.Fprintf(w, "load %s [%s]", inst.Fixed[0], joinOperands(inst.Extra))
	case inst.Op == tac.Store:
		fmt.Fprintf(w, "store %s", inst.Fixed[0])
	case inst.Op == tac.Unload:
		fmt.Fprintf(w, "unload %s", inst.Fixed[0])
	case tac.IsBranch(inst.Op):
		fmt.Fprintf(w, "%s %s", mnemonic(inst.Op), inst.Fixed[0])
	case inst.Op == tac.Ret:
		fmt.Fprintf(w, "ret %s", inst.Fixed[0])
	default:
		fmt.Fprintf(w, "%s", inst.Op)
	}
}

func joinOperands(ops []tac.Operand) string {
	s := ""
	for i, o := range ops {
		if i > 0 {
			s += ", "
		}
		s += o.String()
	}
	return s
}

// PrintGraph writes every block of g in ascending id order: its id, form,
// predecessor/successor ids, and its instructions, one per line.
func PrintGraph(w io.Writer, g *cfg.Graph) {
	fmt.Fprintf(w, "cfg (%s form, %d blocks)\n", g.Form, g.Len())
	for _, b := range g.Order() {
		fmt.Fprintf(w, "B%d: preds=%s succs=%s\n", b.ID, blockIDs(b.Preds), blockIDs(b.Succs))
		for _, inst := range b.Insts {
			fmt.Fprint(w, "  ")
			PrintInstruction(w, inst)
			fmt.Fprintln(w)
		}
	}
}

func blockIDs(blocks []*cfg.Block) string {
	ids := make([]int, len(blocks))
	for i, b := range blocks {
		ids[i] = int(b.ID)
	}
	sort.Ints(ids)
	return fmt.Sprint(ids)
}

// dumpConfig renders register allocator output with deterministic map key
// ordering, so a dump can be diffed or pasted into a bug report verbatim.
var dumpConfig = &spew.ConfigState{
	Indent:   "  ",
	SortKeys: true,
}

// DumpColoring writes a structured dump of a completed Coloring, keyed by
// every variable seen in g, for use when a coloring looks wrong and the
// one-line pretty-print isn't enough to see why.
func DumpColoring(w io.Writer, g *cfg.Graph, col *regalloc.Coloring) {
	colors := make(map[tac.VarID]int)
	for _, b := range g.Order() {
		for _, inst := range b.Insts {
			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() {
				if c, ok := col.Color(lhs.Var); ok {
					colors[lhs.Var] = c
				}
			}
			inst.Uses(func(o tac.Operand) {
				if o.IsVar() {
					if c, ok := col.Color(o.Var); ok {
						colors[o.Var] = c
					}
				}
			})
		}
	}
	fmt.Fprintf(w, "coloring (K=%d):\n", col.K())
	dumpConfig.Fdump(w, colors)
}
