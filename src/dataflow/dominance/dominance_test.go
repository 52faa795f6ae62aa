package dominance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacopt/src/asm"
	"tacopt/src/cfg"
	"tacopt/src/tac"
)

func v(base int) tac.Operand { return tac.Var(tac.VarID{Base: base}) }

func buildIfElse(t *testing.T) *cfg.Graph {
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
	g, err := cfg.Build(a.Instructions())
	require.NoError(t, err)
	return g
}

func TestDominanceIfElse(t *testing.T) {
	g := buildIfElse(t)
	res, err := Analyze(g)
	require.NoError(t, err)

	// block 1 dominates everything.
	for _, id := range []cfg.BlockID{1, 2, 3, 4} {
		assert.True(t, res.Dominates(1, id))
	}
	// block 2 and 3 don't dominate each other or block 4.
	assert.False(t, res.Dominates(2, 3))
	assert.False(t, res.Dominates(3, 2))
	assert.False(t, res.Dominates(2, 4))
	assert.False(t, res.Dominates(3, 4))

	idom4, ok := res.IDom(4)
	require.True(t, ok)
	assert.Equal(t, cfg.BlockID(1), idom4)

	// block 4 (the join) is in the dominance frontier of both branches.
	assert.True(t, res.DF(2)[4])
	assert.True(t, res.DF(3)[4])

	_, hasRootIdom := res.IDom(g.Root.ID)
	assert.False(t, hasRootIdom)
}

func TestDominanceSelfLoop(t *testing.T) {
	a := asm.New()
	head := a.MakeAndMarkLabel()
	a.EmitAdd(v(1), v(1), tac.Const(1))
	a.EmitCmp(v(1), tac.Const(10))
	a.EmitJl(head)
	a.FixLabels()

	g, err := cfg.Build(a.Instructions())
	require.NoError(t, err)

	res, err := Analyze(g)
	require.NoError(t, err)
	assert.True(t, res.Dominates(g.Root.ID, g.Root.ID))

	// the loop header's only predecessor is its own back edge, so the
	// header lands in its own dominance frontier.
	assert.True(t, res.DF(g.Root.ID)[g.Root.ID])
}
