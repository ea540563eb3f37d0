// Package memoprog lowers an ast.Node tree into the flat instruction
// program described in spec.md §3/§4.C/§4.F, assigns per-instruction memo
// metadata via the selector policies of §4.E, and exposes the resulting
// Program to the backtrack simulator.
//
// This is the Go arena+index analogue of the original C Prog/Inst: rather
// than raw Inst* pointers for x/y/edges (spec.md §9's "cyclic references"
// design note), every cross-reference is a Ref — an index into
// Program.Insts — so the program is a single contiguous slice with no
// aliasing, matching the arena-of-states shape the teacher already uses
// for nfa.NFA.states/nfa.StateID.
package memoprog

import (
	"fmt"

	"github.com/coregx/memoregex/ast"
)

// Ref is an index into a Program's instruction slice. InvalidRef denotes
// "no successor" (used only for Match, which has none).
type Ref int32

// InvalidRef marks the absence of a cross-reference.
const InvalidRef Ref = -1

// Opcode identifies the operation an Instruction performs.
type Opcode uint8

const (
	OpChar Opcode = iota
	OpAny
	OpCharClass
	OpMatch
	OpRecursiveMatch
	OpJmp
	OpSplit
	OpSplitMany
	OpSave
	OpStringCompare
	OpInlineZWA
	OpRecursiveZWA
)

func (o Opcode) String() string {
	switch o {
	case OpChar:
		return "Char"
	case OpAny:
		return "Any"
	case OpCharClass:
		return "CharClass"
	case OpMatch:
		return "Match"
	case OpRecursiveMatch:
		return "RecursiveMatch"
	case OpJmp:
		return "Jmp"
	case OpSplit:
		return "Split"
	case OpSplitMany:
		return "SplitMany"
	case OpSave:
		return "Save"
	case OpStringCompare:
		return "StringCompare"
	case OpInlineZWA:
		return "InlineZeroWidthAssertion"
	case OpRecursiveZWA:
		return "RecursiveZeroWidthAssertion"
	default:
		return fmt.Sprintf("Opcode(%d)", o)
	}
}

// CharRange is one (low, high) interval with its own invert flag, allowing
// a CharClass instruction to represent classes built from a mix of
// positive and negated sub-ranges (e.g. \D inside a custom class),
// combined with the instruction's own outer Invert flag per spec.md §3.
type CharRange struct {
	Lo, Hi byte
	Invert bool
}

// MemoInfo is the per-instruction memoization metadata populated by the
// selector (§4.E) and consulted by the simulator (§4.I).
type MemoInfo struct {
	ShouldMemo              bool
	InDegree                int
	IsAncestorLoopDestination bool
	MemoStateNum            int // -1 if not memoized
	VisitInterval           int
}

// Instruction is one element of the compiled program (spec.md §3/§4.C).
type Instruction struct {
	Opcode Opcode

	C byte // Char, InlineZeroWidthAssertion operand
	N int  // Save: 2k/2k+1

	ZWA ast.ZWAKind // InlineZWA operand

	StateNum int

	X, Y  Ref   // Jmp uses X; Split uses both
	Edges []Ref // SplitMany destinations, Edges[0] is the "continue" edge

	Ranges []CharRange
	Invert bool

	CGNum int // StringCompare: which capture group to compare against

	Memo MemoInfo
}

// IsMatch reports whether this instruction is the terminal Match opcode.
func (i *Instruction) IsMatch() bool { return i.Opcode == OpMatch }
