// Package memo implements the memo table described in spec.md §3/§4.G: a
// mapping from (memoStateNum, stringIndex) pairs — optionally extended with
// capture state when backreferences are in play — to "already visited,
// don't re-explore" marks.
//
// Three encodings share one Table interface, grounded on
// original_source/src-simple/backtrack.c's initMemoTable/isMarked/markMemo
// trio: Dense (a flat bit-vector sized at compile time), Negative (a hash
// set, used directly for sparse marking and also the only encoding able to
// key on capture state), and RLE (one rle.Vector per memoized vertex).
package memo

import (
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
)

// Table is the interface the backtrack simulator consults before exploring
// a (memoStateNum, stringIndex) pair and updates after exploring it.
type Table interface {
	// IsMarked reports whether (state, pos[, capKey]) has already been
	// visited. capKey is only meaningful (and only read) for the Negative
	// encoding in backreference-aware mode; other encodings ignore it.
	IsMarked(state, pos int, capKey string) bool

	// Mark records (state, pos[, capKey]) as visited. Marking an
	// already-marked key is accepted, not an error, and leaves the table
	// unchanged; the Negative encoding also logs it at Trace, matching the
	// original's duplicate-mark diagnostic (see SPEC_FULL.md §5.1).
	Mark(state, pos int, capKey string)

	// Encoding reports which concrete encoding backs this table.
	Encoding() config.MemoEncoding

	// MemoryBytesPerVertex reports, per memoized vertex (in memoStateNum
	// order), the storage this table's encoding has spent on that vertex so
	// far — the maxObservedMemoryBytesPerMemoizedVertex series of spec.md
	// §4.J's JSON schema. Dense is fixed at allocation time; Negative grows
	// with the number of distinct keys marked for the vertex, and RLE with
	// the vertex's peak run count.
	MemoryBytesPerVertex() []int
}

// New constructs a Table for a program with nStates memoized vertices and an
// input of length n, per enc. RLE tables are additionally tuned by
// visitIntervals when tuned is true (one entry per memoized vertex, in
// program order).
func New(enc config.MemoEncoding, nStates, n int, visitIntervals []int, tuned bool, log *logging.Logger) Table {
	if log == nil {
		log = logging.Nop()
	}
	switch enc {
	case config.EncodingDense:
		return newDense(nStates, n)
	case config.EncodingNegative:
		return newNegative(nStates, log)
	case config.EncodingRLE:
		return newRLETable(nStates, visitIntervals, tuned)
	default:
		return newDense(nStates, n)
	}
}
