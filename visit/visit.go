// Package visit implements the diagnostic visit-count table from spec.md
// §3/§4.H: a dense per-(stateNum, stringIndex) counter grid, independent of
// memoization, used purely for the statistics reporter and for the
// visit-count-≤-1 invariant (spec.md §8), which the backtrack package's
// tests check under MemoFull. Grounded on original_source/src-simple/backtrack.c's VisitTable /
// initVisitTable / markVisit.
package visit

// Table counts, for every (program state, string offset) pair, how many
// times the simulator actually evaluated that search state.
type Table struct {
	counts  []int
	nStates int
	nChars  int
}

// New allocates a visit table for a program with nStates instructions and an
// input of length nChars-1 (nChars == len(input)+1, matching
// original_source's woffset range which includes the end-of-input offset).
func New(nStates, nChars int) *Table {
	return &Table{
		counts:  make([]int, nStates*nChars),
		nStates: nStates,
		nChars:  nChars,
	}
}

func (t *Table) idx(stateNum, offset int) int { return stateNum*t.nChars + offset }

// Mark increments the visit count for (stateNum, offset).
func (t *Table) Mark(stateNum, offset int) {
	t.counts[t.idx(stateNum, offset)]++
}

// Count returns how many times (stateNum, offset) was visited.
func (t *Table) Count(stateNum, offset int) int {
	return t.counts[t.idx(stateNum, offset)]
}

// NStates and NChars expose the table's dimensions for the statistics
// reporter.
func (t *Table) NStates() int { return t.nStates }
func (t *Table) NChars() int  { return t.nChars }

// PerVertexTotals sums visits over all offsets for each state, and also
// returns the single most-visited (state, offset) pair and its count —
// the "most-visited search state" / "most-visited vertex" pair printStats
// reports.
func (t *Table) PerVertexTotals() (perVertex []int, maxState, maxOffset, maxSearchStateVisits int) {
	perVertex = make([]int, t.nStates)
	maxSearchStateVisits = -1
	for s := 0; s < t.nStates; s++ {
		for o := 0; o < t.nChars; o++ {
			c := t.Count(s, o)
			perVertex[s] += c
			if c > maxSearchStateVisits {
				maxSearchStateVisits = c
				maxState, maxOffset = s, o
			}
		}
	}
	return perVertex, maxState, maxOffset, maxSearchStateVisits
}

// TotalVisits sums every counter in the table.
func (t *Table) TotalVisits() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}
