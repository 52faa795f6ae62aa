package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacopt/src/tac"
)

func TestFixLabelsResolvesForwardBranch(t *testing.T) {
	a := New()
	t1 := tac.Var(tac.VarID{Base: 1})

	end := a.MakeLabel()
	a.EmitAssign(t1, tac.Const(5))
	a.EmitJmp(end)
	a.EmitAssign(t1, tac.Const(9)) // skipped
	a.MarkLabel(end)
	a.EmitRet(t1)

	a.FixLabels()
	require.Empty(t, a.UnresolvedLabels())

	jmp := a.Instructions()[1]
	require.Equal(t, tac.KindOffset, jmp.Fixed[0].Kind)
	// target is instruction after MarkLabel(end) i.e. index 3; branch at index 1
	// delta = defPos - (usePos+1) = 3 - 2 = 1
	assert.EqualValues(t, 1, jmp.Fixed[0].Offset)
}

func TestFixLabelsIdempotent(t *testing.T) {
	a := New()
	l := a.MakeLabel()
	a.EmitJmp(l)
	a.MarkLabel(l)

	a.FixLabels()
	first := a.Instructions()[0]
	a.FixLabels()
	second := a.Instructions()[0]
	assert.Equal(t, first, second)
}

func TestFixLabelsLeavesUnresolved(t *testing.T) {
	a := New()
	never := a.MakeLabel()
	a.EmitJmp(never)
	a.FixLabels()
	assert.Equal(t, []tac.LabelID{never}, a.UnresolvedLabels())
	assert.Equal(t, tac.KindLabel, a.Instructions()[0].Fixed[0].Kind)
}

func TestMarkLabelTwiceIsPrecondition(t *testing.T) {
	a := New()
	l := a.MakeLabel()
	require.NoError(t, a.MarkLabel(l))
	require.Error(t, a.MarkLabel(l))
}
