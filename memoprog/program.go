package memoprog

import (
	"fmt"

	"github.com/coregx/memoregex/config"
)

// Program is the flat, arena-style instruction sequence a compiler produces
// from an ast.Node tree (spec.md §3's Program/Inst pair). Cross-references
// between instructions are Refs (indices into Insts), never pointers, so the
// whole program is one contiguous, relocatable slice.
type Program struct {
	Insts []Instruction

	NMemoizedStates int
	EOLAnchor       bool
	BOLAnchor       bool

	MemoMode     config.MemoMode
	MemoEncoding config.MemoEncoding

	// BackrefAware and RLETuned are the effective values Compile resolved
	// for this program (BackrefAware may have been forced on by a
	// back-reference in the pattern even if the caller's Config left it
	// false). The simulator reads these from the Program rather than from
	// a caller-supplied Config so a Program's memo behavior can never
	// drift from what it was actually compiled with.
	BackrefAware bool
	RLETuned     bool

	// BackrefGroups holds, in ascending order, the distinct capture-group
	// indices referenced by some OpStringCompare in the program — the
	// cgNumToMemoIdx domain spec.md §4.G describes. The Negative memo
	// encoding's capture-state key extension is built from exactly these
	// groups, never the whole capture array.
	BackrefGroups []int

	NumCaptures int // number of capture groups, excluding group 0
}

// Len reports the number of instructions in the program.
func (p *Program) Len() int { return len(p.Insts) }

// At returns a pointer to the instruction at ref, for in-place field access.
func (p *Program) At(r Ref) *Instruction { return &p.Insts[r] }

// builder accumulates instructions for one compilation. Every emit function
// appends through push/reserve and patches cross-references by index, the
// same shape original_source/src-simple/compile.c's emit() uses against its
// pc cursor: since the grammar always emits contiguous, non-overlapping code
// for each subtree, the index of "whatever gets emitted next" is known the
// instant before it happens, so plain index patching works without a
// Thompson-style open patch list.
type builder struct {
	insts []Instruction
}

func (b *builder) next() Ref { return Ref(len(b.insts)) }

// reserve appends a zero-value instruction and returns its index, to be
// filled in (opcode and operands) once its successors are known.
func (b *builder) reserve() Ref {
	b.insts = append(b.insts, Instruction{})
	return b.next() - 1
}

func (b *builder) at(r Ref) *Instruction { return &b.insts[r] }

// push appends a fully-formed instruction and returns its index.
func (b *builder) push(i Instruction) Ref {
	b.insts = append(b.insts, i)
	return b.next() - 1
}

// Validate checks the structural invariants spec.md §3/§8 require of a
// compiled program: the last instruction is Match, every cross-reference is
// in range, and memoStateNum values are dense over [0, NMemoizedStates).
func (p *Program) Validate() error {
	n := len(p.Insts)
	if n == 0 {
		return fmt.Errorf("memoprog: empty program")
	}
	if p.Insts[n-1].Opcode != OpMatch {
		return fmt.Errorf("memoprog: last instruction is %s, want Match", p.Insts[n-1].Opcode)
	}
	inRange := func(r Ref) bool { return r >= 0 && int(r) < n }
	seenMemo := make([]bool, p.NMemoizedStates)
	for i := range p.Insts {
		inst := &p.Insts[i]
		switch inst.Opcode {
		case OpJmp:
			if !inRange(inst.X) {
				return fmt.Errorf("memoprog: instruction %d: Jmp target %d out of range", i, inst.X)
			}
		case OpSplit:
			if !inRange(inst.X) || !inRange(inst.Y) {
				return fmt.Errorf("memoprog: instruction %d: Split targets (%d,%d) out of range", i, inst.X, inst.Y)
			}
		case OpSplitMany:
			if len(inst.Edges) < 2 {
				return fmt.Errorf("memoprog: instruction %d: SplitMany has %d edges, want >= 2", i, len(inst.Edges))
			}
			for _, e := range inst.Edges {
				if !inRange(e) {
					return fmt.Errorf("memoprog: instruction %d: SplitMany edge %d out of range", i, e)
				}
			}
		case OpRecursiveZWA:
			if !inRange(inst.X) {
				return fmt.Errorf("memoprog: instruction %d: RecursiveZWA target %d out of range", i, inst.X)
			}
		case OpMatch, OpRecursiveMatch:
			// terminal, no successor to check
		default:
			if i+1 >= n {
				return fmt.Errorf("memoprog: instruction %d (%s) has no fallthrough successor", i, inst.Opcode)
			}
		}
		if inst.Memo.ShouldMemo {
			if inst.Memo.MemoStateNum < 0 || inst.Memo.MemoStateNum >= p.NMemoizedStates {
				return fmt.Errorf("memoprog: instruction %d: memoStateNum %d out of range [0,%d)", i, inst.Memo.MemoStateNum, p.NMemoizedStates)
			}
			if seenMemo[inst.Memo.MemoStateNum] {
				return fmt.Errorf("memoprog: duplicate memoStateNum %d", inst.Memo.MemoStateNum)
			}
			seenMemo[inst.Memo.MemoStateNum] = true
		} else if inst.Memo.MemoStateNum != -1 {
			return fmt.Errorf("memoprog: instruction %d: non-memoized but memoStateNum %d != -1", i, inst.Memo.MemoStateNum)
		}
	}
	return nil
}
