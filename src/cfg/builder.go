package cfg

import (
	"sort"

	"tacopt/src/tac"
	"tacopt/src/xerrors"
)

const stage = "cfg"

// Build partitions insts into basic blocks and links predecessor/successor
// edges, producing a Normal-form Graph. insts must be non-empty and every
// branch operand must already be a resolved Offset (i.e. asm.FixLabels must
// have run and left no unresolved labels).
func Build(insts []tac.Instruction) (*Graph, error) {
	if len(insts) == 0 {
		return nil, xerrors.NewPrecondition(stage, "instruction stream is empty")
	}

	leaders := make(map[int]bool, len(insts))
	leaders[0] = true

	for i, inst := range insts {
		if !tac.IsTerminator(inst.Op) {
			continue
		}
		if i+1 < len(insts) {
			leaders[i+1] = true
		}
		if !tac.IsBranch(inst.Op) {
			continue
		}
		if inst.NumFixed < 1 || inst.Fixed[0].Kind != tac.KindOffset {
			return nil, xerrors.NewPrecondition(stage, "branch at instruction %d has no resolved Offset operand", i)
		}
		target := i + 1 + int(inst.Fixed[0].Offset)
		if target < 0 || target >= len(insts) {
			return nil, xerrors.NewMalformed(stage, -1, i, "", "branch target %d is out of range", target)
		}
		leaders[target] = true
	}

	starts := make([]int, 0, len(leaders))
	for pos := range leaders {
		starts = append(starts, pos)
	}
	sort.Ints(starts)

	g := &Graph{Blocks: make(map[BlockID]*Block, len(starts)), Form: Normal}
	blockAt := make(map[int]*Block, len(starts)) // keyed by start instruction index

	for idx, start := range starts {
		end := len(insts)
		if idx+1 < len(starts) {
			end = starts[idx+1]
		}
		b := &Block{
			ID:    BlockID(idx + 1),
			Base:  start,
			Insts: append([]tac.Instruction(nil), insts[start:end]...),
		}
		g.Blocks[b.ID] = b
		blockAt[start] = b
	}
	g.Root = blockAt[0]

	for idx, start := range starts {
		b := blockAt[start]
		term := b.Terminator()

		if tac.IsBranch(term.Op) {
			targetIdx := b.Base + len(b.Insts) - 1 + 1 + int(term.Fixed[0].Offset)
			if target, ok := blockAt[targetIdx]; ok {
				b.addSucc(target)
			}
		}

		if !tac.IsUnconditionalJump(term.Op) && term.Op != tac.Ret {
			if idx+1 < len(starts) {
				if next, ok := blockAt[starts[idx+1]]; ok {
					b.addSucc(next)
				}
			}
		}
	}

	return g, nil
}
