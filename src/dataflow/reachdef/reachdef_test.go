package reachdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacopt/src/asm"
	"tacopt/src/cfg"
	"tacopt/src/tac"
)

func v(base int) tac.Operand { return tac.Var(tac.VarID{Base: base}) }

func TestReachingDefinitionsStraightLine(t *testing.T) {
	a := asm.New()
	a.EmitAssign(v(1), tac.Const(5)) // pos 0
	a.EmitAssign(v(2), tac.Const(7)) // pos 1
	a.EmitAdd(v(3), v(1), v(2))      // pos 2
	a.EmitRet(v(3))
	a.FixLabels()

	g, err := cfg.Build(a.Instructions())
	require.NoError(t, err)

	res := Analyze(g)
	// entry of the only block has nothing reaching it.
	assert.Empty(t, res.ReachingAt(g.Root.ID))
}

func TestReachingDefinitionsAcrossJoin(t *testing.T) {
	// block 1: t1 = 0; jmp-or-fallthrough into a diamond that both
	// redefine t1, joining at block 4 which should see both definitions
	// reaching its entry (before any intra-block kill).
	a := asm.New()
	elseLbl := a.MakeLabel()
	endLbl := a.MakeLabel()

	a.EmitAssign(v(1), tac.Const(0))
	a.EmitCmp(v(1), tac.Const(0))
	a.EmitJle(elseLbl)

	a.EmitAssign(v(1), tac.Const(1)) // then-branch def
	a.EmitJmp(endLbl)

	a.MarkLabel(elseLbl)
	a.EmitAssign(v(1), tac.Const(2)) // else-branch def

	a.MarkLabel(endLbl)
	a.EmitRet(v(1))

	a.FixLabels()
	g, err := cfg.Build(a.Instructions())
	require.NoError(t, err)

	res := Analyze(g)
	join, _ := g.Block(4)
	reaching := res.ReachingAt(join.ID)
	assert.Len(t, reaching, 2)
}
