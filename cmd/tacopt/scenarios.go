package main

import (
	"fmt"

	"tacopt/src/asm"
	"tacopt/src/tac"
)

func v(base int) tac.Operand { return tac.Var(tac.VarID{Base: base}) }

// build returns the instruction stream for the named built-in scenario, or
// an error if name isn't recognized.
func build(name string) ([]tac.Instruction, error) {
	switch name {
	case "straightline":
		return buildStraightLine(), nil
	case "ifelse":
		return buildIfElse(), nil
	case "loop":
		return buildLoop(), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
}

// buildStraightLine assembles `t1=5; t2=7; t3=t1+t2; ret t3`.
func buildStraightLine() []tac.Instruction {
	a := asm.New()
	a.EmitAssign(v(1), tac.Const(5))
	a.EmitAssign(v(2), tac.Const(7))
	a.EmitAdd(v(3), v(1), v(2))
	a.EmitRet(v(3))
	a.FixLabels()
	return a.Instructions()
}

// buildIfElse assembles the if-then-else-with-join scenario: two paths that
// both update t3 before a join block reads it alongside a fresh t4.
func buildIfElse() []tac.Instruction {
	a := asm.New()
	elseLbl := a.MakeLabel()
	endLbl := a.MakeLabel()

	a.EmitAssign(v(1), tac.Const(5))
	a.EmitAssign(v(2), tac.Const(7))
	a.EmitAdd(v(3), v(1), v(2))
	a.EmitCmp(v(3), tac.Const(8))
	a.EmitJle(elseLbl)

	a.EmitAdd(v(3), v(3), tac.Const(3))
	a.EmitJmp(endLbl)

	a.MarkLabel(elseLbl)
	a.EmitMul(v(3), v(3), tac.Const(2))

	a.MarkLabel(endLbl)
	a.EmitAssign(v(4), tac.Const(1))
	a.EmitAdd(v(5), v(3), v(4))
	a.EmitRet(v(5))

	a.FixLabels()
	return a.Instructions()
}

// buildLoop assembles a single self-loop header: `L: i=i+1; cmp i,10; jl L`.
// The block's only predecessor is itself.
func buildLoop() []tac.Instruction {
	a := asm.New()
	head := a.MakeAndMarkLabel()
	a.EmitAdd(v(1), v(1), tac.Const(1))
	a.EmitCmp(v(1), tac.Const(10))
	a.EmitJl(head)

	a.FixLabels()
	return a.Instructions()
}
