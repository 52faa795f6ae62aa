package tac

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// VarID identifies a virtual variable. Before SSA construction Sub is always
// 0; after SSA construction every definition carries a unique Sub >= 1.
// Equality and hashing (VarID is comparable, so it works directly as a map
// key) are over the pair.
type VarID struct {
	Base int
	Sub  int
}

func (v VarID) String() string {
	if v.Sub == 0 {
		return fmt.Sprintf("t%d", v.Base)
	}
	return fmt.Sprintf("t%d_%d", v.Base, v.Sub)
}

// LabelID identifies a label minted by the assembler. A label has at most
// one definition site and any number of uses.
type LabelID int

// NameID identifies a call target (function name).
type NameID int

// Kind tags the variant held by an Operand.
type Kind int

const (
	KindConst Kind = iota
	KindVar
	KindLabel
	KindOffset
	KindName
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	case KindLabel:
		return "label"
	case KindOffset:
		return "offset"
	case KindName:
		return "name"
	default:
		return "unknown"
	}
}

// Operand is a tagged, value-typed, cheaply-copyable variant over the five
// operand shapes an instruction can hold.
type Operand struct {
	Kind   Kind
	Const  int64
	Var    VarID
	Label  LabelID
	Offset int32
	Name   NameID
}

// Const builds a constant operand.
func Const(v int64) Operand { return Operand{Kind: KindConst, Const: v} }

// Var builds a variable operand.
func Var(id VarID) Operand { return Operand{Kind: KindVar, Var: id} }

// Label builds a label operand (pre-fixLabels branch target).
func Label(id LabelID) Operand { return Operand{Kind: KindLabel, Label: id} }

// Offset builds a resolved signed instruction-delta operand.
func Offset(delta int32) Operand { return Operand{Kind: KindOffset, Offset: delta} }

// Name builds a call-target operand.
func Name(id NameID) Operand { return Operand{Kind: KindName, Name: id} }

func (o Operand) String() string {
	switch o.Kind {
	case KindConst:
		return fmt.Sprintf("%d", o.Const)
	case KindVar:
		return o.Var.String()
	case KindLabel:
		return fmt.Sprintf("L%d", o.Label)
	case KindOffset:
		return fmt.Sprintf("%+d", o.Offset)
	case KindName:
		return fmt.Sprintf("@%d", o.Name)
	default:
		return "?"
	}
}

// IsVar reports whether o is a variable operand.
func (o Operand) IsVar() bool { return o.Kind == KindVar }
