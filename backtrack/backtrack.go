// Package backtrack implements the core backtracking simulator from
// spec.md §4.I: a recursive (explicit-stack) backtracker over a
// memoprog.Program, consulting a memo.Table before exploring each memoized
// vertex and a visit.Table purely for diagnostics.
//
// The thread-stack shape (push the "other" branch of a Split, keep running
// the current branch to completion, pop on failure) is the same one the
// teacher's nfa.BoundedBacktracker (nfa/backtrack.go) uses; this package
// generalizes it from an always-on dense visited bitset to the selective,
// pluggable memo.Table this system's compiler produces.
package backtrack

import (
	"fmt"

	"github.com/coregx/memoregex/ast"
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
	"github.com/coregx/memoregex/memo"
	"github.com/coregx/memoregex/memoprog"
	"github.com/coregx/memoregex/stats"
	"github.com/coregx/memoregex/subcap"
	"github.com/coregx/memoregex/visit"
)

// initialStackCapacity seeds the thread stack at the same size the early
// variants of the original implementation used as a fixed ceiling
// (original_source/src-simple/backtrack.c's Thread ready[MAX] with
// MAX=100000 is the later, generous version; spec.md §9(iii) calls for
// unconditional dynamic growth instead of any fixed ceiling, so this is
// only a seed for Go's normal slice-doubling growth).
const initialStackCapacity = 1000

// Result is the outcome of one simulation.
type Result struct {
	Matched  bool
	Captures []int // 2*(NumCaptures+1) offsets, -1 where unset
	Report   *stats.Report
}

type thread struct {
	pc  memoprog.Ref
	sp  int
	sub *subcap.Sub
}

// Simulator runs one Program against one input. Not safe for concurrent use
// (spec.md §5 / SPEC_FULL.md §6): each call to Run should use its own
// Simulator, or the same Simulator sequentially. A Program already carries
// every knob (MemoMode, MemoEncoding, BackrefAware, RLETuned) Compile
// resolved for it, so the Simulator needs nothing beyond the Program and a
// logger.
type Simulator struct {
	prog *memoprog.Program
	log  *logging.Logger
	pool *subcap.Pool
}

// New builds a Simulator for prog.
func New(prog *memoprog.Program, log *logging.Logger) *Simulator {
	if log == nil {
		log = logging.Nop()
	}
	return &Simulator{prog: prog, log: log, pool: subcap.NewPool()}
}

// Run simulates the program against input, returning the first match found
// in thread-stack (depth-first, split-ordered) order, along with a
// statistics report for the simulation.
func (s *Simulator) Run(input []byte) (*Result, error) {
	nChars := len(input) + 1
	visitTable := visit.New(s.prog.Len(), nChars)

	var memoTable memo.Table
	if s.prog.MemoMode != config.MemoNone {
		memoTable = memo.New(s.prog.MemoEncoding, s.prog.NMemoizedStates, nChars, visitIntervals(s.prog), s.prog.RLETuned, s.log)
	}

	nsub := 2 * (s.prog.NumCaptures + 1)
	initial := s.pool.New(nsub)

	stack := make([]thread, 0, initialStackCapacity)
	stack = append(stack, thread{pc: 0, sp: 0, sub: initial})

	var result *Result
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pc, sp, sub := top.pc, top.sp, top.sub

		matched, captures, final := s.runThread(input, pc, sp, sub, &stack, memoTable, visitTable)
		if matched {
			result = &Result{Matched: true, Captures: captures}
			s.pool.Decref(final)
			break
		}
		s.pool.Decref(final)
	}

	if result == nil {
		result = &Result{Matched: false}
	}
	result.Report = s.buildReport(visitTable, memoTable)
	return result, nil
}

// runThread runs one thread to completion (match, dead, or a new branch
// pushed and this branch continuing), mirroring
// original_source/src-simple/backtrack.c's inner for(;;) loop.
//
// The returned *subcap.Sub is always the record the thread currently owns
// at the point it stops — not necessarily the sub it was called with.
// OpSave may fork it via pool.Update partway through (whenever the record
// is shared with a still-live sibling pushed by an earlier Split), and
// pool.Update already decrefs the pre-fork original itself; the caller
// must decref this returned record, exactly once, at every exit point
// (matching the original's single `Dead: decref(sub)` label), never the
// sub it passed in.
func (s *Simulator) runThread(input []byte, pc memoprog.Ref, sp int, sub *subcap.Sub, stack *[]thread, memoTable memo.Table, visitTable *visit.Table) (bool, []int, *subcap.Sub) {
	for {
		inst := s.prog.At(pc)

		if memoTable != nil && inst.Memo.ShouldMemo {
			capKey := ""
			if s.prog.BackrefAware {
				capKey = capKeyOf(sub, s.prog.BackrefGroups)
			}
			if memoTable.IsMarked(inst.Memo.MemoStateNum, sp, capKey) {
				// Already explored from here and it failed last time
				// (matches return on first success, so a revisit can only
				// be a repeat failure).
				return false, nil, sub
			}
			memoTable.Mark(inst.Memo.MemoStateNum, sp, capKey)
		}

		visitTable.Mark(inst.StateNum, sp)

		switch inst.Opcode {
		case memoprog.OpChar:
			if sp >= len(input) || input[sp] != inst.C {
				return false, nil, sub
			}
			pc, sp = pc+1, sp+1

		case memoprog.OpAny:
			if sp >= len(input) || input[sp] == '\n' || input[sp] == '\r' {
				return false, nil, sub
			}
			pc, sp = pc+1, sp+1

		case memoprog.OpCharClass:
			if sp >= len(input) || !matchesCharClass(inst, input[sp]) {
				return false, nil, sub
			}
			pc, sp = pc+1, sp+1

		case memoprog.OpStringCompare:
			n, ok := matchesBackref(inst, sub, input, sp)
			if !ok {
				return false, nil, sub
			}
			pc, sp = pc+1, sp+n

		case memoprog.OpInlineZWA:
			if !matchesZWA(inst.ZWA, input, sp) {
				return false, nil, sub
			}
			pc = pc + 1

		case memoprog.OpRecursiveZWA:
			if !s.matchesLookahead(input, inst.X, sp) {
				return false, nil, sub
			}
			// Resume after the RecursiveMatch closing this lookahead's body,
			// skipping over any lookaheads nested inside it.
			next, depth := inst.X, 0
			for {
				op := s.prog.At(next).Opcode
				if op == memoprog.OpRecursiveZWA {
					depth++
				} else if op == memoprog.OpRecursiveMatch {
					if depth == 0 {
						break
					}
					depth--
				}
				next++
			}
			pc = next + 1

		case memoprog.OpMatch:
			if s.prog.EOLAnchor && sp != len(input) {
				return false, nil, sub
			}
			return true, captureSlice(sub), sub

		case memoprog.OpRecursiveMatch:
			return true, nil, sub

		case memoprog.OpJmp:
			pc = inst.X

		case memoprog.OpSplit:
			*stack = append(*stack, thread{pc: inst.Y, sp: sp, sub: subcap.Incref(sub)})
			pc = inst.X

		case memoprog.OpSplitMany:
			for i := len(inst.Edges) - 1; i >= 1; i-- {
				*stack = append(*stack, thread{pc: inst.Edges[i], sp: sp, sub: subcap.Incref(sub)})
			}
			pc = inst.Edges[0]

		case memoprog.OpSave:
			sub = s.pool.Update(sub, inst.N, sp)

		default:
			panic(fmt.Sprintf("backtrack: unhandled opcode %s", inst.Opcode))
		}
	}
}

func captureSlice(sub *subcap.Sub) []int {
	out := make([]int, sub.Len())
	copy(out, sub.Sub[:len(out)])
	return out
}

// capKeyOf builds the Negative encoding's capture-state key extension from
// only the groups referenced by some StringCompare instruction in the
// program (spec.md §4.G's cgNumToMemoIdx/memoIdxToCgNum restriction), not
// the whole Sub array — a group no back-reference ever reads cannot affect
// future StringCompare results, so including it in the key would only
// over-distinguish otherwise-identical search states. An unset group
// contributes (0,0), matching spec.md §4.G's "unset groups contribute
// (0,0)" key-extension rule.
func capKeyOf(sub *subcap.Sub, groups []int) string {
	if len(groups) == 0 {
		return ""
	}
	pairs := make([][2]int, len(groups))
	for i, g := range groups {
		if subcap.IsGroupSet(sub, g) {
			pairs[i] = [2]int{sub.Sub[2*g], sub.Sub[2*g+1]}
		}
	}
	return fmt.Sprint(pairs)
}

func matchesCharClass(inst *memoprog.Instruction, c byte) bool {
	in := false
	for _, r := range inst.Ranges {
		if (r.Lo <= c && c <= r.Hi) != r.Invert {
			in = true
			break
		}
	}
	return in != inst.Invert
}

// matchesBackref compares the input at sp against the substring captured by
// group CGNum, returning the number of bytes consumed on success.
func matchesBackref(inst *memoprog.Instruction, sub *subcap.Sub, input []byte, sp int) (int, bool) {
	g := inst.CGNum
	if !subcap.IsGroupSet(sub, g) {
		return 0, true // unset group backreferences match the empty string
	}
	start, end := sub.Sub[2*g], sub.Sub[2*g+1]
	n := end - start
	if sp+n > len(input) {
		return 0, false
	}
	for i := 0; i < n; i++ {
		if input[sp+i] != input[start+i] {
			return 0, false
		}
	}
	return n, true
}

func matchesZWA(z ast.ZWAKind, input []byte, sp int) bool {
	switch z {
	case ast.ZWACaret, ast.ZWAA:
		return sp == 0
	case ast.ZWADollar, ast.ZWAZ, ast.ZWAz:
		return sp == len(input)
	case ast.ZWAWordB, ast.ZWANWordB:
		before := sp > 0 && isWordByte(input[sp-1])
		after := sp < len(input) && isWordByte(input[sp])
		boundary := before != after
		if z == ast.ZWANWordB {
			return !boundary
		}
		return boundary
	default:
		return false
	}
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// matchesLookahead runs a small, unmemoized nested simulation starting at
// pc against the input from sp, without consuming sp — the zero-width
// assertion semantics of Lookahead (spec.md §4.I/§9; see SPEC_FULL.md §7.2
// for why this sub-simulation is intentionally out of scope for the
// visit-count-≤-1 invariant and does not itself consult a memo.Table).
func (s *Simulator) matchesLookahead(input []byte, start memoprog.Ref, sp int) bool {
	stack := []thread{{pc: start, sp: sp, sub: s.pool.New(0)}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.runLookaheadThread(input, top.pc, top.sp, &stack) {
			return true
		}
	}
	return false
}

func (s *Simulator) runLookaheadThread(input []byte, pc memoprog.Ref, sp int, stack *[]thread) bool {
	for {
		inst := s.prog.At(pc)
		switch inst.Opcode {
		case memoprog.OpChar:
			if sp >= len(input) || input[sp] != inst.C {
				return false
			}
			pc, sp = pc+1, sp+1
		case memoprog.OpAny:
			if sp >= len(input) || input[sp] == '\n' || input[sp] == '\r' {
				return false
			}
			pc, sp = pc+1, sp+1
		case memoprog.OpCharClass:
			if sp >= len(input) || !matchesCharClass(inst, input[sp]) {
				return false
			}
			pc, sp = pc+1, sp+1
		case memoprog.OpInlineZWA:
			if !matchesZWA(inst.ZWA, input, sp) {
				return false
			}
			pc = pc + 1
		case memoprog.OpRecursiveMatch:
			return true
		case memoprog.OpJmp:
			pc = inst.X
		case memoprog.OpSplit:
			*stack = append(*stack, thread{pc: inst.Y, sp: sp})
			pc = inst.X
		case memoprog.OpSplitMany:
			for i := len(inst.Edges) - 1; i >= 1; i-- {
				*stack = append(*stack, thread{pc: inst.Edges[i], sp: sp})
			}
			pc = inst.Edges[0]
		case memoprog.OpSave:
			pc = pc + 1
		default:
			return false
		}
	}
}

func visitIntervals(p *memoprog.Program) []int {
	out := make([]int, p.NMemoizedStates)
	for i := range p.Insts {
		if p.Insts[i].Memo.ShouldMemo {
			out[p.Insts[i].Memo.MemoStateNum] = p.Insts[i].Memo.VisitInterval
		}
	}
	return out
}

func (s *Simulator) buildReport(visitTable *visit.Table, memoTable memo.Table) *stats.Report {
	perVertex, maxState, maxOffset, maxSearchStateVisits := visitTable.PerVertexTotals()

	maxVertex, maxVertexVisits := -1, -1
	for i, v := range perVertex {
		if v > maxVertexVisits {
			maxVertexVisits = v
			maxVertex = i
		}
	}

	var costs, bytesPerVertex []int
	if s.prog.MemoMode != config.MemoNone {
		costs = make([]int, 0, s.prog.NMemoizedStates)
		for i := range s.prog.Insts {
			if s.prog.Insts[i].Memo.ShouldMemo {
				costs = append(costs, perVertex[i])
			}
		}
		if memoTable != nil {
			bytesPerVertex = memoTable.MemoryBytesPerVertex()
			if rt, ok := memoTable.(interface{ MaxObservedCostPerVertex() []int }); ok {
				costs = rt.MaxObservedCostPerVertex()
			}
		}
	}

	return &stats.Report{
		NStates:                      visitTable.NStates(),
		LenW:                         visitTable.NChars(),
		MostVisitedSearchStateVertex: maxState,
		MostVisitedSearchStateOffset: maxOffset,
		MostVisitedSearchStateCount:  maxSearchStateVisits,
		MostVisitedVertex:            maxVertex,
		MostVisitedVertexCount:       maxVertexVisits,
		TotalVisits:                  visitTable.TotalVisits(),
		PossibleTotalVisitsNoMemo:    visitTable.NStates() * visitTable.NChars(),
		MemoMode:                     s.prog.MemoMode,
		MemoEncoding:                 s.prog.MemoEncoding,
		NSelectedVertices:            s.prog.NMemoizedStates,
		MaxObservedAsymptoticCostsPerMemoizedVertex: costs,
		MaxObservedMemoryBytesPerMemoizedVertex:     bytesPerVertex,
	}
}
