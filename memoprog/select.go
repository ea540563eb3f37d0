package memoprog

import (
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
)

// computeInDegrees fills in each instruction's Memo.InDegree, counting q0 as
// having one implicit in-edge the way original_source/src-simple/memoize.c's
// Prog_compute_in_degrees does (the simulator's entry point is itself an
// edge target, even though nothing in the program jumps to it).
func computeInDegrees(p *Program) {
	insts := p.Insts
	for i := range insts {
		insts[i].Memo.InDegree = 0
	}
	insts[0].Memo.InDegree = 1

	for i := range insts {
		switch insts[i].Opcode {
		case OpMatch, OpRecursiveMatch:
			// terminates, no out-edge
		case OpJmp, OpRecursiveZWA:
			insts[insts[i].X].Memo.InDegree++
		case OpSplit:
			insts[insts[i].X].Memo.InDegree++
			insts[insts[i].Y].Memo.InDegree++
		case OpSplitMany:
			for _, e := range insts[i].Edges {
				insts[e].Memo.InDegree++
			}
		default:
			insts[i+1].Memo.InDegree++
		}
	}
}

// selectMemoVertices applies one of the four memo-vertex selection policies
// from spec.md §4.E, directly grounded on
// original_source/src-simple/memoize.c's Prog_determineMemoNodes and (for
// MemoLoopDest) Prog_find_ancestor_nodes / the loop-destination marking done
// inline during emit() there.
//
// LOOP_DEST vertices were already marked during emission here (see
// compile.go's emitStar/emitPlus, which set ShouldMemo on a Star's Split —
// the target of its closing Jmp — and on a Plus's body entry — the target of
// its Split's back-edge — the same way the C emit() does inline), so this
// function's MemoLoopDest
// case is a pass-through that only needs the final memoStateNum assignment.
func selectMemoVertices(p *Program, mode config.MemoMode, log *logging.Logger) {
	insts := p.Insts

	switch mode {
	case config.MemoFull:
		for i := range insts {
			insts[i].Memo.ShouldMemo = true
		}
	case config.MemoInDegreeGT1:
		computeInDegrees(p)
		for i := range insts {
			insts[i].Memo.ShouldMemo = insts[i].Memo.InDegree > 1
		}
	case config.MemoLoopDest:
		// Marked during emission; nothing more to do.
	case config.MemoNone:
		for i := range insts {
			insts[i].Memo.ShouldMemo = false
		}
	}

	next := 0
	for i := range insts {
		if insts[i].Memo.ShouldMemo {
			insts[i].Memo.MemoStateNum = next
			next++
		} else {
			insts[i].Memo.MemoStateNum = -1
		}
	}
	p.NMemoizedStates = next
	log.Debug().Int("states", next).Str("mode", mode.String()).Msg("selected memo vertices")
}
