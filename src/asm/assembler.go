// Package asm provides the instruction-stream builder consumed by a
// front-end: it mints labels, appends instructions, and resolves forward
// branch targets to signed instruction offsets once every label used has
// been marked.
package asm

import (
	"tacopt/src/tac"
	"tacopt/src/xerrors"
)

const stage = "asm"

// labelUse records a pending branch operand awaiting its label's definition.
type labelUse struct {
	label tac.LabelID
	pos   int // index, in insts, of the branch instruction
}

// Assembler accumulates a linear instruction stream for a single procedure.
// It is not safe for concurrent use; a client compiling several procedures
// in parallel should use one Assembler per worker.
type Assembler struct {
	insts      []tac.Instruction
	nextLabel  tac.LabelID
	labelPos   map[tac.LabelID]int
	pending    []labelUse
}

// New returns an empty Assembler, with label ids minted starting from 1.
func New() *Assembler {
	return &Assembler{
		nextLabel: 1,
		labelPos:  make(map[tac.LabelID]int),
	}
}

// Clear resets the stream and label tables, as if the Assembler were freshly
// constructed.
func (a *Assembler) Clear() {
	a.insts = nil
	a.nextLabel = 1
	a.labelPos = make(map[tac.LabelID]int)
	a.pending = nil
}

// Instructions returns the accumulated instruction stream.
func (a *Assembler) Instructions() []tac.Instruction { return a.insts }

// Pos returns the index the next emitted instruction will occupy.
func (a *Assembler) Pos() int { return len(a.insts) }

// MakeLabel mints a new, as yet unmarked, label id.
func (a *Assembler) MakeLabel() tac.LabelID {
	id := a.nextLabel
	a.nextLabel++
	return id
}

// MarkLabel records the current stream position as id's definition site. A
// label may only have one definition site; marking it twice is a programmer
// error.
func (a *Assembler) MarkLabel(id tac.LabelID) error {
	if _, ok := a.labelPos[id]; ok {
		return xerrors.NewPrecondition(stage, "label %d already marked", id)
	}
	a.labelPos[id] = len(a.insts)
	return nil
}

// MakeAndMarkLabel mints a label and immediately marks it at the current
// position.
func (a *Assembler) MakeAndMarkLabel() tac.LabelID {
	id := a.MakeLabel()
	_ = a.MarkLabel(id)
	return id
}

func (a *Assembler) push(inst tac.Instruction) int {
	pos := len(a.insts)
	a.insts = append(a.insts, inst)
	return pos
}

// pushBranch appends a branch-shaped instruction whose target is still a
// Label operand, recording it as a pending use to be fixed up later.
func (a *Assembler) pushBranch(op tac.Opcode, target tac.LabelID) {
	pos := a.push(tac.Use1(op, tac.Label(target)))
	a.pending = append(a.pending, labelUse{label: target, pos: pos})
}

// EmitAssign appends `x = y`.
func (a *Assembler) EmitAssign(x, y tac.Operand) { a.push(tac.Assign2(tac.Assign, x, y)) }

// EmitAdd appends `x = y + z`.
func (a *Assembler) EmitAdd(x, y, z tac.Operand) { a.push(tac.Assign3(tac.Add, x, y, z)) }

// EmitSub appends `x = y - z`.
func (a *Assembler) EmitSub(x, y, z tac.Operand) { a.push(tac.Assign3(tac.Sub, x, y, z)) }

// EmitMul appends `x = y * z`.
func (a *Assembler) EmitMul(x, y, z tac.Operand) { a.push(tac.Assign3(tac.Mul, x, y, z)) }

// EmitDiv appends `x = y / z`.
func (a *Assembler) EmitDiv(x, y, z tac.Operand) { a.push(tac.Assign3(tac.Div, x, y, z)) }

// EmitMod appends `x = y % z`.
func (a *Assembler) EmitMod(x, y, z tac.Operand) { a.push(tac.Assign3(tac.Mod, x, y, z)) }

// EmitCmp appends `cmp x, y`.
func (a *Assembler) EmitCmp(x, y tac.Operand) { a.push(tac.Use2(tac.Cmp, x, y)) }

// EmitJmp appends an unconditional jump to label.
func (a *Assembler) EmitJmp(label tac.LabelID) { a.pushBranch(tac.Jmp, label) }

// EmitJe appends a "jump if equal" branch to label.
func (a *Assembler) EmitJe(label tac.LabelID) { a.pushBranch(tac.Je, label) }

// EmitJne appends a "jump if not equal" branch to label.
func (a *Assembler) EmitJne(label tac.LabelID) { a.pushBranch(tac.Jne, label) }

// EmitJl appends a "jump if less" branch to label.
func (a *Assembler) EmitJl(label tac.LabelID) { a.pushBranch(tac.Jl, label) }

// EmitJle appends a "jump if less or equal" branch to label.
func (a *Assembler) EmitJle(label tac.LabelID) { a.pushBranch(tac.Jle, label) }

// EmitJg appends a "jump if greater" branch to label.
func (a *Assembler) EmitJg(label tac.LabelID) { a.pushBranch(tac.Jg, label) }

// EmitJge appends a "jump if greater or equal" branch to label.
func (a *Assembler) EmitJge(label tac.LabelID) { a.pushBranch(tac.Jge, label) }

// EmitRet appends `ret x`.
func (a *Assembler) EmitRet(x tac.Operand) { a.push(tac.Use1(tac.Ret, x)) }

// EmitCall appends `call name(args...)`.
func (a *Assembler) EmitCall(name tac.Operand, args ...tac.Operand) {
	a.push(tac.NewCall(name, args...))
}

// EmitAssignCall appends `x = call name(args...)`.
func (a *Assembler) EmitAssignCall(x, name tac.Operand, args ...tac.Operand) {
	a.push(tac.NewAssignCall(x, name, args...))
}

// EmitAssignPhi appends `x = phi(args...)`. Ordinarily only the SSA builder
// calls this directly.
func (a *Assembler) EmitAssignPhi(x tac.Operand, args ...tac.Operand) {
	a.push(tac.NewAssignPhi(x, args...))
}

// FixLabels rewrites every pending branch operand whose label has been
// defined into a resolved Offset: the signed instruction delta from the
// instruction after the branch to the target. Uses of labels that are never
// marked are left untouched as Label operands; build_cfg reports those as a
// precondition violation. FixLabels never fails, and running it twice has
// the same effect as running it once.
func (a *Assembler) FixLabels() {
	remaining := a.pending[:0]
	for _, use := range a.pending {
		defPos, ok := a.labelPos[use.label]
		if !ok {
			remaining = append(remaining, use)
			continue
		}
		delta := int32(defPos - (use.pos + 1))
		a.insts[use.pos].Fixed[0] = tac.Offset(delta)
	}
	a.pending = remaining
}

// UnresolvedLabels returns the label ids still awaiting a definition.
func (a *Assembler) UnresolvedLabels() []tac.LabelID {
	out := make([]tac.LabelID, 0, len(a.pending))
	for _, use := range a.pending {
		out = append(out, use.label)
	}
	return out
}
