package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacopt/src/asm"
	"tacopt/src/tac"
)

func v(base int) tac.Operand { return tac.Var(tac.VarID{Base: base}) }

func TestBuildStraightLine(t *testing.T) {
	a := asm.New()
	a.EmitAssign(v(1), tac.Const(5))
	a.EmitAssign(v(2), tac.Const(7))
	a.EmitAdd(v(3), v(1), v(2))
	a.EmitRet(v(3))
	a.FixLabels()

	g, err := Build(a.Instructions())
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Len(t, g.Root.Insts, 4)
	assert.Empty(t, g.Root.Succs)
	assert.Empty(t, g.Root.Preds)
}

// if-then-else with join, from the design's worked example:
//
//	t1=5; t2=7; t3=t1+t2; cmp t3,8; jle L_else
//	t3=t3+3; jmp L_end
//	L_else: t3=t3*2
//	L_end:  t4=1; t5=t3+t4
func buildIfElse(t *testing.T) *Graph {
	t.Helper()
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

	a.FixLabels()
	require.Empty(t, a.UnresolvedLabels())

	g, err := Build(a.Instructions())
	require.NoError(t, err)
	return g
}

func TestBuildIfElseJoin(t *testing.T) {
	g := buildIfElse(t)
	require.Equal(t, 4, g.Len())

	b1, _ := g.Block(1)
	b2, _ := g.Block(2)
	b3, _ := g.Block(3)
	b4, _ := g.Block(4)

	// 1 -> 2 (fallthrough, jle not taken), 1 -> 3 (jle taken)
	assert.ElementsMatch(t, []BlockID{2, 3}, succIDs(b1))
	// 2 -> 4 (unconditional jmp to L_end)
	assert.ElementsMatch(t, []BlockID{4}, succIDs(b2))
	// 3 -> 4 (fallthrough into L_end)
	assert.ElementsMatch(t, []BlockID{4}, succIDs(b3))
	assert.Empty(t, succIDs(b4))

	// invariant: only the last instruction of any block is a branch/RET.
	for _, b := range g.Order() {
		for _, inst := range b.Insts[:len(b.Insts)-1] {
			assert.False(t, tac.IsTerminator(inst.Op), "block %d has interior terminator", b.ID)
		}
	}
}

func TestBuildSelfLoop(t *testing.T) {
	a := asm.New()
	head := a.MakeAndMarkLabel()
	a.EmitAdd(v(1), v(1), tac.Const(1))
	a.EmitCmp(v(1), tac.Const(10))
	a.EmitJl(head)
	a.FixLabels()

	g, err := Build(a.Instructions())
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())
	assert.Equal(t, []BlockID{1}, succIDs(g.Root))
	assert.Equal(t, []BlockID{1}, predIDs(g.Root))
}

// A RET in the middle of the stream must start a new block exactly like a
// branch would, even when nothing jumps to the instruction right after it
// (reachability of that instruction comes from elsewhere, here a backward
// jmp into it):
//
//	t1=5; ret t1
//	L: t2=10; ret t2
//	jmp L
//
// Without treating RET as a leader-forcing terminator, "ret t2" and "jmp L"
// would end up sharing a block with "ret t2" stuck in the interior.
func TestBuildEarlyReturnStartsNewBlock(t *testing.T) {
	a := asm.New()

	a.EmitAssign(v(1), tac.Const(5))
	a.EmitRet(v(1))

	loopTop := a.MakeAndMarkLabel()
	a.EmitAssign(v(2), tac.Const(10))
	a.EmitRet(v(2))

	a.EmitJmp(loopTop)
	a.FixLabels()
	require.Empty(t, a.UnresolvedLabels())

	g, err := Build(a.Instructions())
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	b1, _ := g.Block(1)
	b2, _ := g.Block(2)
	b3, _ := g.Block(3)

	assert.Equal(t, []tac.Opcode{tac.Assign, tac.Ret}, []tac.Opcode{b1.Insts[0].Op, b1.Insts[1].Op})
	assert.Equal(t, []tac.Opcode{tac.Assign, tac.Ret}, []tac.Opcode{b2.Insts[0].Op, b2.Insts[1].Op})
	assert.Equal(t, tac.Jmp, b3.Insts[len(b3.Insts)-1].Op)

	// RET never falls through: block 1 has no successor at all.
	assert.Empty(t, succIDs(b1))
	assert.Empty(t, succIDs(b2))
	// the trailing jmp closes the loop back to block 2.
	assert.Equal(t, []BlockID{2}, succIDs(b3))

	for _, b := range g.Order() {
		for _, inst := range b.Insts[:len(b.Insts)-1] {
			assert.False(t, tac.IsTerminator(inst.Op), "block %d has interior terminator", b.ID)
		}
	}
}

func TestBuildRejectsUnresolvedLabel(t *testing.T) {
	a := asm.New()
	never := a.MakeLabel()
	a.EmitJmp(never)
	a.FixLabels()

	_, err := Build(a.Instructions())
	require.Error(t, err)
}

func TestBuildRejectsEmptyStream(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)
}

func succIDs(b *Block) []BlockID {
	out := make([]BlockID, len(b.Succs))
	for i, s := range b.Succs {
		out[i] = s.ID
	}
	return out
}

func predIDs(b *Block) []BlockID {
	out := make([]BlockID, len(b.Preds))
	for i, p := range b.Preds {
		out[i] = p.ID
	}
	return out
}
