// Package cfg partitions a linear TAC instruction stream into basic blocks
// and links them into a control flow graph: the shared data structure every
// later analysis and transform (reaching definitions, dominance, SSA
// construction, register allocation) operates over.
package cfg

import "tacopt/src/tac"

// BlockID identifies a basic block within a Graph. Ids are assigned in
// monotonically increasing order starting at 1, in the order blocks are
// discovered during construction.
type BlockID int

// Block is a maximal run of instructions with no interior branch: only the
// last instruction (the terminator) may be a branch or RET.
type Block struct {
	ID    BlockID
	Base  int // index of this block's first instruction in the originating stream
	Insts []tac.Instruction

	Preds []*Block
	Succs []*Block
}

// Terminator returns the block's last instruction. A well-formed block
// (see Invariant 1) is never empty, so this is always safe to call on a
// Block returned by Build.
func (b *Block) Terminator() tac.Instruction {
	return b.Insts[len(b.Insts)-1]
}

// PredIndex returns the index of pred within b.Preds, used by the SSA
// builder to pick the matching phi fan-in slot (Invariant 4: the i-th extra
// operand of a phi in B corresponds to B.Preds[i]).
func (b *Block) PredIndex(pred *Block) (int, bool) {
	for i, p := range b.Preds {
		if p.ID == pred.ID {
			return i, true
		}
	}
	return 0, false
}

func (b *Block) addSucc(s *Block) {
	b.Succs = append(b.Succs, s)
	s.Preds = append(s.Preds, b)
}
