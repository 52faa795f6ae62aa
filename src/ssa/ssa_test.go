package ssa

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

func TestToSSAIfElseJoinInsertsPhi(t *testing.T) {
	g := buildIfElse(t)
	require.NoError(t, ToSSA(g))
	assert.Equal(t, cfg.SSA, g.Form)

	join, ok := g.Block(4)
	require.True(t, ok)
	require.NotEmpty(t, join.Insts)

	phi := join.Insts[0]
	assert.True(t, tac.IsPhi(phi.Op))
	assert.Equal(t, 3, phi.Fixed[0].Var.Base)
	require.Len(t, phi.Extra, 2)
	for _, arg := range phi.Extra {
		assert.Equal(t, 3, arg.Var.Base)
	}
	// the two phi operands come from distinct definitions of t3.
	assert.NotEqual(t, phi.Extra[0].Var.Sub, phi.Extra[1].Var.Sub)

	// every definition in the whole function has a unique (base, sub) pair.
	seen := map[tac.VarID]bool{}
	for _, b := range g.Order() {
		for _, inst := range b.Insts {
			if lhs, ok := inst.Lhs(); ok && lhs.IsVar() {
				assert.False(t, seen[lhs.Var], "duplicate SSA name %s", lhs.Var)
				seen[lhs.Var] = true
			}
		}
	}
}

func TestToSSASelfLoopHeaderPhi(t *testing.T) {
	a := asm.New()
	head := a.MakeAndMarkLabel()
	a.EmitAdd(v(1), v(1), tac.Const(1))
	a.EmitCmp(v(1), tac.Const(10))
	a.EmitJl(head)
	a.FixLabels()

	g, err := cfg.Build(a.Instructions())
	require.NoError(t, err)
	require.NoError(t, ToSSA(g))

	head1, ok := g.Block(1)
	require.True(t, ok)
	require.NotEmpty(t, head1.Insts)

	phi := head1.Insts[0]
	assert.True(t, tac.IsPhi(phi.Op))
	assert.Equal(t, 1, phi.Fixed[0].Var.Base)
	// the header's only predecessor in the graph is its own back edge, so
	// the phi has arity 1 - still a legal (if degenerate) merge point, and
	// it's what supplies t1's reaching definition on entry to the header.
	require.Len(t, phi.Extra, 1)
}

func TestToSSARejectsAlreadySSAForm(t *testing.T) {
	g := buildIfElse(t)
	require.NoError(t, ToSSA(g))
	err := ToSSA(g)
	require.Error(t, err)
}

func TestToSSAUseBeforeDefIsFatal(t *testing.T) {
	a := asm.New()
	a.EmitRet(v(9)) // t9 never defined anywhere.
	a.FixLabels()

	g, err := cfg.Build(a.Instructions())
	require.NoError(t, err)

	err = ToSSA(g)
	require.Error(t, err)
}
