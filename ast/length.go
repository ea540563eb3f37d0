package ast

// LengthSet is a bounded set of non-negative simple-path lengths, capacity
// 16 per spec.md §3. Once the capacity would be exceeded, TooMany is set
// and further insertions are no-ops — the set itself stops growing but
// remains whatever it held at the moment of overflow.
type LengthSet struct {
	vals    [16]int
	n       int
	TooMany bool
}

func lengthSetOf(vs ...int) LengthSet {
	var s LengthSet
	for _, v := range vs {
		s.insert(v)
	}
	return s
}

func (s *LengthSet) insert(v int) {
	for i := 0; i < s.n; i++ {
		if s.vals[i] == v {
			return
		}
	}
	if s.n == len(s.vals) {
		s.TooMany = true
		return
	}
	s.vals[s.n] = v
	s.n++
}

// Values returns the distinct lengths currently held.
func (s LengthSet) Values() []int {
	return append([]int(nil), s.vals[:s.n]...)
}

func unionInto(dst *LengthSet, a, b LengthSet) {
	if a.TooMany || b.TooMany {
		dst.TooMany = true
	}
	for _, v := range a.Values() {
		dst.insert(v)
	}
	for _, v := range b.Values() {
		dst.insert(v)
	}
}

func sumInto(dst *LengthSet, a, b LengthSet) {
	if a.TooMany || b.TooMany {
		dst.TooMany = true
	}
	for _, x := range a.Values() {
		for _, y := range b.Values() {
			dst.insert(x + y)
		}
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	g := gcd(a, b)
	return a / g * b
}

// sup is the "smallest universal period": the LCM of the set's entries
// greater than 1, capped at 64. An overflowing set maps to the sentinel 2,
// per spec.md §4.D.
func sup(s LengthSet) int {
	if s.TooMany {
		return 2
	}
	period := 1
	any := false
	for _, v := range s.Values() {
		if v > 1 {
			any = true
			period = lcm(period, v)
			if period > 64 {
				return 64
			}
		}
	}
	if !any {
		return 1
	}
	if period > 64 {
		return 64
	}
	return period
}

// Analyze runs the post-order language-length analysis (§4.D) over root,
// populating Lengths and VisitInterval on every node in the tree.
//
// The analyzer is flagged upstream (memoized-regex-engine) as
// work-in-progress; RLE_TUNED's run length depends on VisitInterval, so
// that encoding stays opt-in (config.RLETuned) rather than a default. See
// SPEC_FULL.md §7.1.
func Analyze(root *Node) {
	analyzeLengths(root)
	analyzeVisitInterval(root)
}

func analyzeLengths(n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Literal, Dot, CharEscape, CharRange, CustomCharClass:
		n.Lengths = lengthSetOf(1)
	case Concat:
		analyzeLengths(n.L)
		analyzeLengths(n.R)
		sumInto(&n.Lengths, n.L.Lengths, n.R.Lengths)
	case Alt:
		analyzeLengths(n.L)
		analyzeLengths(n.R)
		unionInto(&n.Lengths, n.L.Lengths, n.R.Lengths)
	case AltList:
		for _, c := range n.Alts {
			analyzeLengths(c)
			unionInto(&n.Lengths, n.Lengths, c.Lengths)
		}
	case Paren:
		analyzeLengths(n.Child)
		n.Lengths = n.Child.Lengths
	case Question, Star:
		analyzeLengths(n.Child)
		n.Lengths = n.Child.Lengths
		n.Lengths.insert(0)
	case Plus:
		analyzeLengths(n.Child)
		n.Lengths = n.Child.Lengths
	case Curly:
		analyzeLengths(n.Child)
		// Simple paths through {min,max}: 0 (if min==0) up through the
		// child's own lengths combined across repetitions up to max (or a
		// single body length if unbounded) — bounded by the same capacity.
		if n.Min == 0 {
			n.Lengths.insert(0)
		}
		reps := n.Max
		if reps < 0 || reps > 16 {
			reps = 16
		}
		acc := LengthSet{}
		acc.insert(0)
		for i := 1; i <= reps; i++ {
			var next LengthSet
			sumInto(&next, acc, n.Child.Lengths)
			acc = next
			if acc.TooMany {
				break
			}
		}
		unionInto(&n.Lengths, n.Lengths, acc)
	case Backref, Lookahead, InlineZWA:
		n.Lengths = lengthSetOf(0)
	default:
		n.Lengths = lengthSetOf(0)
	}
}

func analyzeVisitInterval(n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Literal, Dot, CharEscape, CharRange, CustomCharClass, Backref, Lookahead, InlineZWA:
		n.VisitInterval = 1
	case Alt:
		analyzeVisitInterval(n.L)
		analyzeVisitInterval(n.R)
		n.VisitInterval = lcm(sup(n.L.Lengths), sup(n.R.Lengths))
	case AltList:
		period := 1
		for _, c := range n.Alts {
			analyzeVisitInterval(c)
			period = lcm(period, sup(c.Lengths))
		}
		n.VisitInterval = period
	case Concat:
		analyzeVisitInterval(n.L)
		analyzeVisitInterval(n.R)
		vi := lcm(sup(n.L.Lengths), sup(n.R.Lengths))
		propagateVisitInterval(n.R, vi)
		n.VisitInterval = lcm(n.L.VisitInterval, vi)
	case Paren:
		analyzeVisitInterval(n.Child)
		n.VisitInterval = n.Child.VisitInterval
	case Question, Star, Plus, Curly:
		analyzeVisitInterval(n.Child)
		n.VisitInterval = sup(n.Child.Lengths)
	default:
		n.VisitInterval = 1
	}
}

// propagateVisitInterval pushes a computed visit interval down through a
// chain of Paren wrappers to their first non-Paren descendant, per
// spec.md §4.D's "propagated through Paren wrappers" rule.
func propagateVisitInterval(n *Node, vi int) {
	for n != nil && n.Kind == Paren {
		n.VisitInterval = vi
		n = n.Child
	}
	if n != nil {
		n.VisitInterval = vi
	}
}
