// Package xerrors defines the error taxonomy shared by every stage of the
// optimisation and lowering pipeline: precondition violations, malformed IR
// discovered mid-pass, and resource exhaustion during register allocation.
// Every error carries whatever block, instruction or variable context the
// reporting stage had on hand, so a caller can print a useful diagnostic
// without re-deriving it.
package xerrors

import "fmt"

// Precondition reports that an API was called with state it does not accept:
// a CFG in the wrong form, an operand of the wrong kind, a duplicate label,
// a branch lacking an Offset operand, and so on. Always fatal at the stage
// boundary that detects it.
type Precondition struct {
	Stage   string // pipeline stage that detected the violation
	Message string
}

func (e *Precondition) Error() string {
	return fmt.Sprintf("%s: precondition violation: %s", e.Stage, e.Message)
}

// NewPrecondition builds a Precondition error for the given stage.
func NewPrecondition(stage, format string, args ...interface{}) error {
	return &Precondition{Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Malformed reports IR that cannot be processed as-is: a use with no reaching
// definition, an Offset operand pointing outside the instruction stream, a
// phi whose arity disagrees with its block's predecessor count. Carries
// enough context (block id, instruction index, variable) for diagnosis.
type Malformed struct {
	Stage   string
	Block   int
	Inst    int
	Var     string
	Message string
}

func (e *Malformed) Error() string {
	s := fmt.Sprintf("%s: malformed IR: %s", e.Stage, e.Message)
	if e.Block >= 0 {
		s += fmt.Sprintf(" (block %d)", e.Block)
	}
	if e.Inst >= 0 {
		s += fmt.Sprintf(" (instruction %d)", e.Inst)
	}
	if e.Var != "" {
		s += fmt.Sprintf(" (variable %s)", e.Var)
	}
	return s
}

// NewMalformed builds a Malformed error. Pass -1 for block/inst when not
// applicable.
func NewMalformed(stage string, block, inst int, v, format string, args ...interface{}) error {
	return &Malformed{
		Stage:   stage,
		Block:   block,
		Inst:    inst,
		Var:     v,
		Message: fmt.Sprintf(format, args...),
	}
}

// ResourceExhaustion reports that register allocation ran out of colors:
// coloring failed and every spill candidate had already been spilled once.
type ResourceExhaustion struct {
	LiveRange string
	Message   string
}

func (e *ResourceExhaustion) Error() string {
	return fmt.Sprintf("register allocation exhausted: %s (live range %s)", e.Message, e.LiveRange)
}

// NewResourceExhaustion builds a ResourceExhaustion error naming the live
// range that could not be colored.
func NewResourceExhaustion(liveRange, format string, args ...interface{}) error {
	return &ResourceExhaustion{LiveRange: liveRange, Message: fmt.Sprintf(format, args...)}
}
