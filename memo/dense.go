package memo

import "github.com/coregx/memoregex/config"

// dense is the Dense memo encoding: a flat []uint64 bit-vector of
// nStates*(n+1) bits, one per (memoStateNum, stringIndex) pair, matching the
// teacher's nfa.BoundedBacktracker visited bitset sizing
// (nfa/backtrack.go), generalized here from "one bit per (state, pos)
// covering every vertex" to "one bit per (memoStateNum, pos) covering only
// the selected vertices".
type dense struct {
	bits   []uint64
	n      int // stride: positions 0..n inclusive
	nState int
}

func newDense(nStates, n int) *dense {
	stride := n + 1
	total := nStates * stride
	return &dense{
		bits:   make([]uint64, (total+63)/64),
		n:      stride,
		nState: nStates,
	}
}

func (d *dense) index(state, pos int) int { return state*d.n + pos }

func (d *dense) IsMarked(state, pos int, _ string) bool {
	if state < 0 || state >= d.nState {
		return false
	}
	idx := d.index(state, pos)
	return d.bits[idx/64]&(1<<uint(idx%64)) != 0
}

func (d *dense) Mark(state, pos int, _ string) {
	if state < 0 || state >= d.nState {
		return
	}
	idx := d.index(state, pos)
	d.bits[idx/64] |= 1 << uint(idx%64)
}

func (d *dense) Encoding() config.MemoEncoding { return config.EncodingDense }

// MemoryBytesPerVertex returns the same fixed per-vertex byte count for
// every memoized vertex, since Dense allocates its whole nStates*(n+1) bit
// grid up front rather than growing it per vertex.
func (d *dense) MemoryBytesPerVertex() []int {
	perVertex := (d.n + 7) / 8
	out := make([]int, d.nState)
	for i := range out {
		out[i] = perVertex
	}
	return out
}
