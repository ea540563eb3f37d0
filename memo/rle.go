package memo

import (
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/rle"
)

// rleTable is the RLE memo encoding: one rle.Vector per memoized vertex,
// marking string indices instead of a raw bitset. When tuned, each vertex's
// run length is that vertex's analyzed visitInterval rather than 1,
// matching the RLE_TUNED variant spec.md §9(i) and SPEC_FULL.md §7.1
// describe.
type rleTable struct {
	vectors []*rle.Vector
}

func newRLETable(nStates int, visitIntervals []int, tuned bool) *rleTable {
	vectors := make([]*rle.Vector, nStates)
	for i := range vectors {
		k := 1
		if tuned && i < len(visitIntervals) && visitIntervals[i] > 0 {
			k = visitIntervals[i]
		}
		vectors[i] = rle.New(k, false)
	}
	return &rleTable{vectors: vectors}
}

func (t *rleTable) IsMarked(state, pos int, _ string) bool {
	if state < 0 || state >= len(t.vectors) {
		return false
	}
	return t.vectors[state].Get(pos)
}

func (t *rleTable) Mark(state, pos int, _ string) {
	if state < 0 || state >= len(t.vectors) {
		return
	}
	if t.vectors[state].Get(pos) {
		return
	}
	t.vectors[state].Set(pos)
}

func (t *rleTable) Encoding() config.MemoEncoding { return config.EncodingRLE }

// rleRunBytes approximates the in-memory size of one rle.Vector run record
// (offset, nRuns int64 fields plus a uint64 pattern): used only for the
// statistics reporter's byte estimate.
const rleRunBytes = 24

// MaxObservedCostPerVertex reports, per memoized vertex, the largest run
// count the vertex's RLE vector ever reached — the
// maxObservedAsymptoticCostsPerMemoizedVertex series the original's
// statistics.c reports (see SPEC_FULL.md §5.2).
func (t *rleTable) MaxObservedCostPerVertex() []int {
	out := make([]int, len(t.vectors))
	for i, v := range t.vectors {
		out[i] = v.MaxObservedSize()
	}
	return out
}

// MemoryBytesPerVertex reports, per memoized vertex, its RLE vector's
// historical peak run count times rleRunBytes.
func (t *rleTable) MemoryBytesPerVertex() []int {
	out := make([]int, len(t.vectors))
	for i, v := range t.vectors {
		out[i] = v.MaxObservedSize() * rleRunBytes
	}
	return out
}
