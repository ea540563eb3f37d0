package memoprog

import (
	"fmt"
	"sort"

	"github.com/coregx/memoregex/ast"
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
)

type compiler struct {
	b        builder
	mode     config.MemoMode
	log      *logging.Logger
	maxGroup int
}

// Compile lowers root into a Program, selects memo vertices per cfg, and
// validates the result. Grounded on
// original_source/src-simple/compile.c's compile()/emit() pair: count-then-
// emit is replaced here by a single growable-slice pass (Go slices already
// amortize the growth compile.c's count() pre-pass exists to avoid), and
// MemoLoopDest marking happens inline during emission exactly where the C
// emit() does it, on the destination of each Star/Plus loop's back-edge.
func Compile(root *ast.Node, cfg config.Config, log *logging.Logger) (*Program, error) {
	if log == nil {
		log = logging.Nop()
	}
	root = desugarCurly(root)
	ast.Analyze(root)

	if containsBackref(root) {
		cfg.BackrefAware = true
	}

	c := &compiler{mode: cfg.MemoMode, log: log}
	log.Debug().Str("mode", cfg.MemoMode.String()).Msg("compiling program")
	// Group 0 denotes the whole match (spec.md §3); it is saved the same
	// way a Paren(0, root) would be, but group 0 never occupies a parser
	// capture index, so it is bracketed here instead of carried as an
	// ast.Paren node.
	c.b.push(Instruction{Opcode: OpSave, N: 0, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: 1}})
	c.emit(root)
	c.b.push(Instruction{Opcode: OpSave, N: 1, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: 1}})
	c.b.push(Instruction{Opcode: OpMatch, Memo: MemoInfo{MemoStateNum: -1}})

	p := &Program{
		Insts:        c.b.insts,
		EOLAnchor:    root.EOLAnchor,
		BOLAnchor:    root.BOLAnchor,
		MemoMode:     cfg.MemoMode,
		MemoEncoding: cfg.EffectiveEncoding(),
		BackrefAware: cfg.BackrefAware,
		RLETuned:     cfg.RLETuned,
		NumCaptures:  c.maxGroup,
	}
	for i := range p.Insts {
		p.Insts[i].StateNum = i
	}
	p.BackrefGroups = backrefGroups(p.Insts)

	selectMemoVertices(p, cfg.MemoMode, log)

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("memoprog: %w", err)
	}
	log.Info().Int("instructions", p.Len()).Int("memoized", p.NMemoizedStates).Msg("compiled program")
	return p, nil
}

// backrefGroups scans the compiled program for OpStringCompare instructions
// and returns the distinct capture-group indices they reference, in
// ascending order — the cgNumToMemoIdx domain spec.md §4.G builds at
// memo-table construction time.
func backrefGroups(insts []Instruction) []int {
	seen := make(map[int]bool)
	var out []int
	for i := range insts {
		if insts[i].Opcode == OpStringCompare {
			g := insts[i].CGNum
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	sort.Ints(out)
	return out
}

func containsBackref(n *ast.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.Backref:
		return true
	case ast.Concat, ast.Alt:
		return containsBackref(n.L) || containsBackref(n.R)
	case ast.AltList:
		for _, c := range n.Alts {
			if containsBackref(c) {
				return true
			}
		}
		return false
	case ast.Question, ast.Star, ast.Plus, ast.Curly, ast.Paren, ast.Lookahead:
		return containsBackref(n.Child)
	default:
		return false
	}
}

// desugarCurly rewrites every Curly{min,max} node into an equivalent tree of
// Concat/Star/Question nodes, the same bounded-repetition expansion Go's own
// regexp/syntax.Simplify performs on OpRepeat before NFA compilation — so a
// compiler never needs separate counting/emission logic for {m,n}.
func desugarCurly(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.Concat:
		n.L, n.R = desugarCurly(n.L), desugarCurly(n.R)
	case ast.Alt:
		n.L, n.R = desugarCurly(n.L), desugarCurly(n.R)
	case ast.AltList:
		for i, c := range n.Alts {
			n.Alts[i] = desugarCurly(c)
		}
	case ast.Question, ast.Star, ast.Plus, ast.Paren, ast.Lookahead:
		n.Child = desugarCurly(n.Child)
	case ast.Curly:
		n.Child = desugarCurly(n.Child)
		return expandCurly(n)
	}
	return n
}

func expandCurly(n *ast.Node) *ast.Node {
	min, max, child := n.Min, n.Max, n.Child
	var out *ast.Node
	for i := 0; i < min; i++ {
		out = concatMaybe(out, cloneNode(child))
	}
	if max < 0 {
		out = concatMaybe(out, ast.NewStar(cloneNode(child), n.NonGreedy))
		return out
	}
	for i := min; i < max; i++ {
		out = concatMaybe(out, ast.NewQuestion(cloneNode(child), n.NonGreedy))
	}
	if out == nil {
		// {0,0}: matches only the empty string. The AST has no empty node,
		// so use an optional inverted class covering every byte: it can
		// never consume input, leaving only the empty path.
		return ast.NewQuestion(ast.NewCustomCharClass(true, []*ast.Node{ast.NewCharRange(0, 255)}), false)
	}
	return out
}

func concatMaybe(l, r *ast.Node) *ast.Node {
	if l == nil {
		return r
	}
	return ast.NewConcat(l, r)
}

// cloneNode performs a deep copy so expanding {m,n} doesn't let repeated
// copies of child alias the same *ast.Node (each copy needs its own derived
// Lengths/VisitInterval and, if it contains Paren, its own capture slots are
// intentionally shared since Curly never introduces new groups).
func cloneNode(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.L = cloneNode(n.L)
	cp.R = cloneNode(n.R)
	cp.Child = cloneNode(n.Child)
	if n.Alts != nil {
		cp.Alts = make([]*ast.Node, len(n.Alts))
		for i, a := range n.Alts {
			cp.Alts[i] = cloneNode(a)
		}
	}
	if n.Children != nil {
		cp.Children = make([]*ast.Node, len(n.Children))
		for i, a := range n.Children {
			cp.Children[i] = cloneNode(a)
		}
	}
	return &cp
}

func (c *compiler) emit(n *ast.Node) {
	switch n.Kind {
	case ast.Literal:
		c.b.push(Instruction{Opcode: OpChar, C: n.Byte, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: 1}})

	case ast.Dot:
		c.b.push(Instruction{Opcode: OpAny, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: 1}})

	case ast.CharEscape:
		c.emitCharEscape(n)

	case ast.CharRange:
		c.b.push(Instruction{
			Opcode: OpCharClass,
			Ranges: []CharRange{{Lo: n.Low, Hi: n.High}},
			Memo:   MemoInfo{MemoStateNum: -1, VisitInterval: 1},
		})

	case ast.CustomCharClass:
		ranges := make([]CharRange, len(n.Children))
		for i, ch := range n.Children {
			ranges[i] = CharRange{Lo: ch.Low, Hi: ch.High}
		}
		c.b.push(Instruction{
			Opcode: OpCharClass,
			Ranges: ranges,
			Invert: n.Inverted,
			Memo:   MemoInfo{MemoStateNum: -1, VisitInterval: 1},
		})

	case ast.Concat:
		c.emit(n.L)
		c.emit(n.R)

	case ast.Alt:
		splitRef := c.b.reserve()
		c.b.at(splitRef).Opcode = OpSplit
		c.b.at(splitRef).Memo = MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}
		c.b.at(splitRef).X = c.b.next()
		c.emit(n.L)
		jmpRef := c.b.reserve()
		c.b.at(splitRef).Y = c.b.next()
		c.emit(n.R)
		c.b.at(jmpRef).Opcode = OpJmp
		c.b.at(jmpRef).X = c.b.next()
		c.b.at(jmpRef).Memo = MemoInfo{MemoStateNum: -1}

	case ast.AltList:
		c.emitAltList(n)

	case ast.Question:
		splitRef := c.b.reserve()
		c.b.at(splitRef).Opcode = OpSplit
		c.b.at(splitRef).Memo = MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}
		bodyStart := c.b.next()
		c.emit(n.Child)
		end := c.b.next()
		if n.NonGreedy {
			c.b.at(splitRef).X, c.b.at(splitRef).Y = end, bodyStart
		} else {
			c.b.at(splitRef).X, c.b.at(splitRef).Y = bodyStart, end
		}

	case ast.Star:
		c.emitStar(n)

	case ast.Plus:
		c.emitPlus(n)

	case ast.Paren:
		if n.Index > c.maxGroup {
			c.maxGroup = n.Index
		}
		c.b.push(Instruction{Opcode: OpSave, N: 2 * n.Index, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}})
		c.emit(n.Child)
		c.b.push(Instruction{Opcode: OpSave, N: 2*n.Index + 1, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}})

	case ast.Backref:
		c.b.push(Instruction{Opcode: OpStringCompare, CGNum: n.GroupIndex, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: 1}})

	case ast.Lookahead:
		zwaRef := c.b.reserve()
		c.b.at(zwaRef).Opcode = OpRecursiveZWA
		c.b.at(zwaRef).Memo = MemoInfo{MemoStateNum: -1, VisitInterval: 1}
		c.b.at(zwaRef).X = c.b.next()
		c.emit(n.Child)
		c.b.push(Instruction{Opcode: OpRecursiveMatch, Memo: MemoInfo{MemoStateNum: -1}})

	case ast.InlineZWA:
		c.b.push(Instruction{Opcode: OpInlineZWA, ZWA: n.ZWA, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: 1}})

	default:
		panic(fmt.Sprintf("memoprog: bad emit kind %s", n.Kind))
	}
}

func (c *compiler) emitCharEscape(n *ast.Node) {
	// Matches original_source/src-simple/compile.c's CharEscape case: \s \w
	// \d are classes, upper-case variants invert, anything else is a
	// literal (with \n \t \b given their raw-mode meaning).
	lower := n.Byte | 0x20
	invert := n.Byte >= 'A' && n.Byte <= 'Z'
	switch lower {
	case 's':
		c.b.push(Instruction{
			Opcode: OpCharClass,
			Ranges: []CharRange{{Lo: 9, Hi: 13}, {Lo: 28, Hi: 32}},
			Invert: invert,
			Memo:   MemoInfo{MemoStateNum: -1, VisitInterval: 1},
		})
	case 'w':
		c.b.push(Instruction{
			Opcode: OpCharClass,
			Ranges: []CharRange{{Lo: 'a', Hi: 'z'}, {Lo: 'A', Hi: 'Z'}, {Lo: '0', Hi: '9'}},
			Invert: invert,
			Memo:   MemoInfo{MemoStateNum: -1, VisitInterval: 1},
		})
	case 'd':
		c.b.push(Instruction{
			Opcode: OpCharClass,
			Ranges: []CharRange{{Lo: '0', Hi: '9'}},
			Invert: invert,
			Memo:   MemoInfo{MemoStateNum: -1, VisitInterval: 1},
		})
	default:
		ch := n.Byte
		switch n.Byte {
		case 'n':
			ch = '\n'
		case 't':
			ch = '\t'
		case 'b':
			ch = '\b'
		}
		c.b.push(Instruction{Opcode: OpChar, C: ch, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: 1}})
	}
}

func (c *compiler) emitStar(n *ast.Node) {
	splitRef := c.b.reserve()
	c.b.at(splitRef).Opcode = OpSplit
	c.b.at(splitRef).Memo = MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}
	bodyStart := c.b.next()
	c.emit(n.Child)
	jmpRef := c.b.push(Instruction{Opcode: OpJmp, X: splitRef, Memo: MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}})
	if c.mode == config.MemoLoopDest {
		c.b.at(splitRef).Memo.ShouldMemo = true
	}
	end := c.b.next()
	if n.NonGreedy {
		c.b.at(splitRef).X, c.b.at(splitRef).Y = end, bodyStart
	} else {
		c.b.at(splitRef).X, c.b.at(splitRef).Y = bodyStart, end
	}
	_ = jmpRef
}

func (c *compiler) emitPlus(n *ast.Node) {
	bodyStart := c.b.next()
	c.emit(n.Child)
	splitRef := c.b.reserve()
	c.b.at(splitRef).Opcode = OpSplit
	c.b.at(splitRef).X = bodyStart
	c.b.at(splitRef).Memo = MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}
	if c.mode == config.MemoLoopDest {
		c.b.at(bodyStart).Memo.ShouldMemo = true
	}
	end := c.b.next()
	if n.NonGreedy {
		c.b.at(splitRef).X, c.b.at(splitRef).Y = end, bodyStart
	} else {
		c.b.at(splitRef).Y = end
	}
}

// emitAltList lowers an n-ary alternation into a SplitMany fanning out to
// each branch, with every non-final branch closed by a Jmp to the shared end
// — the n-ary generalization of the binary Alt case above.
func (c *compiler) emitAltList(n *ast.Node) {
	splitRef := c.b.reserve()
	c.b.at(splitRef).Opcode = OpSplitMany
	c.b.at(splitRef).Memo = MemoInfo{MemoStateNum: -1, VisitInterval: n.VisitInterval}

	edges := make([]Ref, len(n.Alts))
	var jmps []Ref
	for i, alt := range n.Alts {
		edges[i] = c.b.next()
		c.emit(alt)
		if i != len(n.Alts)-1 {
			jmps = append(jmps, c.b.reserve())
		}
	}
	end := c.b.next()
	for _, j := range jmps {
		c.b.at(j).Opcode = OpJmp
		c.b.at(j).X = end
		c.b.at(j).Memo = MemoInfo{MemoStateNum: -1}
	}
	c.b.at(splitRef).Edges = edges
}
