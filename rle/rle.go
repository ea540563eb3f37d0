// Package rle implements the run-length-encoded bit-vector described in
// spec.md §4.A: a sparse, compressible set of non-negative integers with
// periodic structure, used as one of the three memo-table encodings.
//
// The original C implementation (original_source/src-simple/rle.c) backs
// this with an AVL tree keyed by run offset. spec.md §9 treats that tree as
// an external ordered-map collaborator whose internals are out of scope,
// and no ordered-map/balanced-tree library appears anywhere in the
// retrieval pack. At the scale a single regex's memo vector operates at
// (tens of runs, not millions), a sorted slice searched with sort.Search is
// the idiomatic Go stand-in for "some ordered map" — so that's what Vector
// uses internally; DESIGN.md documents this as the one place this package
// reaches for the standard library instead of a third-party collaborator.
package rle

import (
	"fmt"
	"sort"
)

// run is one element of the ordered run sequence: positions
// [offset, offset+nRuns*k) follow a period-k bit pattern.
type run struct {
	offset int
	nRuns  int
	pattern uint64
}

func (r run) bitsPerRun(k int) int { return r.nRuns * k }
func (r run) end(k int) int        { return r.offset + r.nRuns*k }

// Vector is a run-length-encoded bit-vector with run length k.
type Vector struct {
	runs []run // sorted, strictly ordered, disjoint by offset
	k    int

	currSize int
	maxSize  int

	autoValidate bool
}

// maxPatternWidth is the bit width of the pattern field; k larger than this
// falls back to k=1 per spec.md §4.A.
const maxPatternWidth = 64

// New creates a run-length vector with the given run length k. If
// autoValidate is true, every mutation is followed by an internal
// consistency check (mirrors the C implementation's TEST/_validate gate),
// intended for tests and debug builds rather than hot paths.
func New(k int, autoValidate bool) *Vector {
	if k < 1 || k > maxPatternWidth {
		k = 1
	}
	return &Vector{k: k, autoValidate: autoValidate}
}

// RunSize returns the configured run length k.
func (v *Vector) RunSize() int { return v.k }

// CurrSize returns the current number of runs.
func (v *Vector) CurrSize() int { return v.currSize }

// MaxObservedSize returns the historical maximum number of runs, as counted
// after each Set has finished merging.
func (v *Vector) MaxObservedSize() int { return v.maxSize }

// Get returns whether bit i is set.
func (v *Vector) Get(i int) bool {
	idx := v.find(i)
	if idx < 0 {
		return false
	}
	r := v.runs[idx]
	bitPos := (i - r.offset) % v.k
	return r.pattern&(1<<uint(bitPos)) != 0
}

// find returns the index of the run containing rounded(i), or -1.
func (v *Vector) find(i int) int {
	rounded := i - mod(i, v.k)
	// runs are sorted by offset; find the run whose [offset, end) contains rounded.
	n := len(v.runs)
	j := sort.Search(n, func(idx int) bool {
		return v.runs[idx].offset > rounded
	})
	// candidate is the run just before j
	if j == 0 {
		return -1
	}
	cand := j - 1
	r := v.runs[cand]
	if rounded >= r.offset && rounded < r.end(v.k) {
		return cand
	}
	return -1
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Set marks bit i. It is a precondition violation (and panics, matching
// the C assert) to call Set on an already-set bit.
func (v *Vector) Set(i int) {
	if v.autoValidate {
		v.validate()
	}
	if v.Get(i) {
		panic(fmt.Sprintf("rle: Set(%d) called on an already-set bit", i))
	}

	rounded := i - mod(i, v.k)
	bitPos := uint(mod(i, v.k))
	bit := uint64(1) << bitPos

	idx := v.find(i)
	if idx < 0 {
		v.insertNew(rounded, bit)
	} else {
		v.splitAndSet(idx, rounded, bit)
	}
	if v.currSize > v.maxSize {
		v.maxSize = v.currSize
	}

	if v.autoValidate {
		v.validate()
	}
}

func (v *Vector) insertNew(rounded int, bit uint64) {
	newRun := run{offset: rounded, nRuns: 1, pattern: bit}
	pos := sort.Search(len(v.runs), func(idx int) bool {
		return v.runs[idx].offset > rounded
	})
	v.runs = append(v.runs, run{})
	copy(v.runs[pos+1:], v.runs[pos:])
	v.runs[pos] = newRun
	v.addRun()
	v.mergeAround(pos)
}

// splitAndSet handles the case where rounded(i) already falls inside an
// existing run: remove it and reinsert up to three pieces — the prefix
// runs before rounded, a single-run record with pattern|bit, and the
// suffix runs after rounded+k (per spec.md §4.A case 2).
func (v *Vector) splitAndSet(idx int, rounded int, bit uint64) {
	old := v.runs[idx]
	v.runs = append(v.runs[:idx], v.runs[idx+1:]...)
	v.subtractRun()

	var pieces []run
	// prefix: [old.offset, rounded)
	if prefixRuns := (rounded - old.offset) / v.k; prefixRuns > 0 {
		pieces = append(pieces, run{offset: old.offset, nRuns: prefixRuns, pattern: old.pattern})
	}
	// the modified single run at rounded
	pieces = append(pieces, run{offset: rounded, nRuns: 1, pattern: old.pattern | bit})
	// suffix: [rounded+k, old.end)
	suffixStart := rounded + v.k
	if suffixRuns := (old.end(v.k) - suffixStart) / v.k; suffixRuns > 0 {
		pieces = append(pieces, run{offset: suffixStart, nRuns: suffixRuns, pattern: old.pattern})
	}

	insertAt := idx
	for _, p := range pieces {
		pos := sort.Search(len(v.runs), func(i int) bool {
			return v.runs[i].offset > p.offset
		})
		v.runs = append(v.runs, run{})
		copy(v.runs[pos+1:], v.runs[pos:])
		v.runs[pos] = p
		v.addRun()
		insertAt = pos
	}
	_ = insertAt

	// Merge each inserted piece with neighbors; merging the modified
	// middle run covers the two interesting adjacency cases (abutting
	// prefix/suffix), so just re-scan for the middle offset.
	middleIdx := sort.Search(len(v.runs), func(i int) bool {
		return v.runs[i].offset >= rounded
	})
	v.mergeAround(middleIdx)
}

// mergeAround attempts to merge the run at idx with its immediate left and
// right neighbors when contiguous and pattern-identical. Cascades at most
// once on each side, matching spec.md §4.A.
func (v *Vector) mergeAround(idx int) {
	if idx < 0 || idx >= len(v.runs) {
		return
	}
	// Merge with left neighbor.
	if idx > 0 {
		left := v.runs[idx-1]
		cur := v.runs[idx]
		if left.end(v.k) == cur.offset && left.pattern == cur.pattern {
			merged := run{offset: left.offset, nRuns: left.nRuns + cur.nRuns, pattern: left.pattern}
			v.runs = append(v.runs[:idx-1], append([]run{merged}, v.runs[idx+1:]...)...)
			v.subtractRun()
			idx = idx - 1
		}
	}
	// Merge with right neighbor.
	if idx+1 < len(v.runs) {
		cur := v.runs[idx]
		right := v.runs[idx+1]
		if cur.end(v.k) == right.offset && cur.pattern == right.pattern {
			merged := run{offset: cur.offset, nRuns: cur.nRuns + right.nRuns, pattern: cur.pattern}
			v.runs = append(v.runs[:idx], append([]run{merged}, v.runs[idx+2:]...)...)
			v.subtractRun()
		}
	}
}

func (v *Vector) addRun() {
	v.currSize++
}

func (v *Vector) subtractRun() {
	v.currSize--
}

// validate checks the ordering/disjointness/no-adjacent-equal-pattern
// invariants, panicking on violation. Mirrors _RLEVector_validate.
func (v *Vector) validate() {
	if len(v.runs) != v.currSize {
		panic(fmt.Sprintf("rle: currSize %d does not match run count %d", v.currSize, len(v.runs)))
	}
	for i := 1; i < len(v.runs); i++ {
		prev, cur := v.runs[i-1], v.runs[i]
		if prev.offset >= cur.offset {
			panic("rle: runs out of order")
		}
		if prev.end(v.k) > cur.offset {
			panic("rle: overlapping runs")
		}
		if prev.end(v.k) == cur.offset && prev.pattern == cur.pattern {
			panic("rle: adjacent runs with identical pattern were not merged")
		}
	}
}
