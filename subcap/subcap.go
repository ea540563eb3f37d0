// Package subcap implements the reference-counted, copy-on-write
// sub-capture record described in spec.md §4.B: a per-thread vector of
// (start, end) byte pointers for capture groups, shared between threads
// spawned by Split until one of them mutates it.
//
// This is the backtracking-simulator analogue of the teacher's
// nfa.cowCaptures (nfa/pikevm.go), adapted from an int-slot-index scheme to
// the spec's explicit refcount + free-list discipline, since the
// simulator here (unlike PikeVM) explicitly models thread lifecycle and
// needs deterministic release back to a free list rather than relying on
// the garbage collector alone.
package subcap

// MaxSub is the maximum number of capture-boundary slots: 2 per group,
// groups 0..9, per spec.md §3.
const MaxSub = 20

// Sub is a reference-counted copy-on-write capture record.
type Sub struct {
	ref  int
	nsub int
	Sub  [MaxSub]int // byte offsets into the input; -1 means unset
}

// Pool is a free list of released Sub records, avoiding per-thread heap
// churn the way the original's global freesub list did (spec.md §9 calls
// out the global freesub as state that should be threaded through an
// explicit context instead — Pool is that context).
type Pool struct {
	free []*Sub
}

// NewPool creates an empty free list.
func NewPool() *Pool { return &Pool{} }

// New returns a Sub with nsub slots, all initialized unset, reusing a
// released record from the free list when available.
func (p *Pool) New(nsub int) *Sub {
	var s *Sub
	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		s = &Sub{}
	}
	s.ref = 1
	s.nsub = nsub
	for i := 0; i < nsub; i++ {
		s.Sub[i] = -1
	}
	return s
}

// Incref increments the reference count and returns the same record —
// used when a Split clones a thread's capture state without mutating it.
func Incref(s *Sub) *Sub {
	s.ref++
	return s
}

// Decref decrements the reference count, releasing the record to p's free
// list when it drops to zero.
func (p *Pool) Decref(s *Sub) {
	s.ref--
	if s.ref == 0 {
		p.free = append(p.free, s)
	}
}

// Update sets slot i to p, returning the same record if ref == 1, or a
// fresh clone (with the original's refcount decremented) otherwise —
// the copy-on-write fork described in spec.md §4.B.
func (pool *Pool) Update(s *Sub, i, pos int) *Sub {
	if s.ref == 1 {
		s.Sub[i] = pos
		return s
	}
	clone := pool.New(s.nsub)
	copy(clone.Sub[:s.nsub], s.Sub[:s.nsub])
	clone.Sub[i] = pos
	pool.Decref(s)
	return clone
}

// IsGroupSet reports whether both boundaries of group g are set.
func IsGroupSet(s *Sub, g int) bool {
	start, end := 2*g, 2*g+1
	return start < s.nsub && end < s.nsub && s.Sub[start] >= 0 && s.Sub[end] >= 0
}

// Ref returns the current reference count, for tests asserting the
// lifecycle invariant (ref never negative, free-list reuse on release).
func (s *Sub) Ref() int { return s.ref }

// Len returns the number of capture slots this record tracks.
func (s *Sub) Len() int { return s.nsub }
