package memo

import (
	"fmt"

	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
)

// negative is the Negative/sparse memo encoding: only marked keys occupy
// space, stored in a Go map rather than the AVL/hash-set the original C used
// (spec.md §4.G leaves the concrete set implementation unspecified beyond
// "negative: only marked entries exist"; a Go map is the idiomatic sparse
// set here the same way it is everywhere else in the teacher's codebase,
// e.g. nfa's capture-name lookup). This is the only encoding consulted when
// a pattern contains a backreference, since capKey must be woven into the
// key (spec.md §4.G's coercion rule).
type negative struct {
	marked   map[string]bool
	perState []int // entry count per memoStateNum, for MemoryBytesPerVertex
	log      *logging.Logger
}

// negativeEntryBytes approximates the per-entry cost of one hash-set
// member: the string key's backing bytes plus the map's bucket/bool
// overhead. Used only for the statistics reporter's byte estimate, not for
// any allocation decision.
const negativeEntryBytes = 32

func newNegative(nStates int, log *logging.Logger) *negative {
	return &negative{marked: make(map[string]bool), perState: make([]int, nStates), log: log}
}

func key(state, pos int, capKey string) string {
	if capKey == "" {
		return fmt.Sprintf("%d:%d", state, pos)
	}
	return fmt.Sprintf("%d:%d:%s", state, pos, capKey)
}

func (s *negative) IsMarked(state, pos int, capKey string) bool {
	return s.marked[key(state, pos, capKey)]
}

func (s *negative) Mark(state, pos int, capKey string) {
	k := key(state, pos, capKey)
	if s.marked[k] {
		s.log.Trace().Str("key", k).Msg("duplicate mark")
		return
	}
	s.marked[k] = true
	if state >= 0 && state < len(s.perState) {
		s.perState[state]++
	}
}

func (s *negative) Encoding() config.MemoEncoding { return config.EncodingNegative }

// MemoryBytesPerVertex estimates bytes spent per memoized vertex as its
// marked-entry count times negativeEntryBytes.
func (s *negative) MemoryBytesPerVertex() []int {
	out := make([]int, len(s.perState))
	for i, n := range s.perState {
		out[i] = n * negativeEntryBytes
	}
	return out
}
