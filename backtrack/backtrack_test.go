package backtrack

import (
	"testing"

	"github.com/coregx/memoregex/ast"
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
	"github.com/coregx/memoregex/memoprog"
)

func compileFor(t *testing.T, root *ast.Node, cfg config.Config) *memoprog.Program {
	t.Helper()
	p, err := memoprog.Compile(root, cfg, logging.Nop())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}

func TestRunMatchesLiteralConcat(t *testing.T) {
	root := ast.NewConcat(ast.NewLiteral('a'), ast.NewLiteral('b'))
	cfg := config.Config{MemoMode: config.MemoNone}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("ab"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched {
		t.Fatal("expected match")
	}
	if res.Captures[0] != 0 || res.Captures[1] != 2 {
		t.Fatalf("whole-match captures = %v, want [0 2]", res.Captures[:2])
	}
}

func TestRunFailsOnMismatch(t *testing.T) {
	root := ast.NewConcat(ast.NewLiteral('a'), ast.NewLiteral('b'))
	cfg := config.Config{MemoMode: config.MemoNone}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("ac"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Matched {
		t.Fatal("expected no match")
	}
}

func TestRunCapturesGroup(t *testing.T) {
	// a(b)c
	root := ast.NewConcat(
		ast.NewConcat(ast.NewLiteral('a'), ast.NewParen(1, ast.NewLiteral('b'))),
		ast.NewLiteral('c'),
	)
	cfg := config.Config{MemoMode: config.MemoFull, MemoEncoding: config.EncodingNegative}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("abc"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched {
		t.Fatal("expected match")
	}
	want := []int{0, 3, 1, 2}
	for i, w := range want {
		if res.Captures[i] != w {
			t.Fatalf("Captures = %v, want %v", res.Captures, want)
		}
	}
}

func TestGreedyStarPrefersLongestFirst(t *testing.T) {
	// a*a — the Star should back off from the greedy maximal run of a's
	// exactly enough to let the trailing literal 'a' match.
	root := ast.NewConcat(ast.NewStar(ast.NewLiteral('a'), false), ast.NewLiteral('a'))
	cfg := config.Config{MemoMode: config.MemoFull}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("aaa"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched || res.Captures[0] != 0 || res.Captures[1] != 3 {
		t.Fatalf("Run() = %+v, want whole match (0,3)", res)
	}
}

func TestNonGreedyQuestionPrefersEmpty(t *testing.T) {
	root := ast.NewConcat(ast.NewQuestion(ast.NewLiteral('a'), true), ast.NewLiteral('a'))
	cfg := config.Config{MemoMode: config.MemoNone}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("a"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched || res.Captures[1] != 1 {
		t.Fatalf("Run() = %+v, want a single-byte match", res)
	}
}

// TestVisitCountBoundedUnderFull is the core guarantee from spec.md §4.H:
// under FULL, without back-references, no (stateNum, stringIndex) pair is
// visited more than once.
func TestVisitCountBoundedUnderFull(t *testing.T) {
	root := ast.NewStar(ast.NewStar(ast.NewLiteral('a'), false), false)
	cfg := config.Config{MemoMode: config.MemoFull, MemoEncoding: config.EncodingDense}
	prog := compileFor(t, root, cfg)

	input := make([]byte, 40)
	for i := range input {
		input[i] = 'a'
	}
	input = append(input, '!')

	res, err := New(prog, logging.Nop()).Run(input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Report.MostVisitedSearchStateCount > 1 {
		t.Fatalf("search state <%d, %d> visited %d times, want at most 1", res.Report.MostVisitedSearchStateVertex, res.Report.MostVisitedSearchStateOffset, res.Report.MostVisitedSearchStateCount)
	}
	if res.Report.TotalVisits > res.Report.NStates*res.Report.LenW {
		t.Fatalf("TotalVisits = %d exceeds NStates*LenW = %d", res.Report.TotalVisits, res.Report.NStates*res.Report.LenW)
	}
}

func TestLookaheadEntersAndExitsOnce(t *testing.T) {
	// foo(?=bar)bar
	root := ast.NewConcat(
		ast.NewConcat(ast.NewConcat(ast.NewLiteral('f'), ast.NewLiteral('o')), ast.NewLiteral('o')),
		ast.NewConcat(
			ast.NewLookahead(ast.NewConcat(ast.NewConcat(ast.NewLiteral('b'), ast.NewLiteral('a')), ast.NewLiteral('r'))),
			ast.NewConcat(ast.NewConcat(ast.NewLiteral('b'), ast.NewLiteral('a')), ast.NewLiteral('r')),
		),
	)
	cfg := config.Config{MemoMode: config.MemoFull, MemoEncoding: config.EncodingNegative}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("foobar"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched || res.Captures[1] != 6 {
		t.Fatalf("Run() = %+v, want whole match (0,6)", res)
	}
	// The 14-instruction program visits each of its 10 instructions outside
	// the lookahead body exactly once; the body runs only in the lookahead's
	// own sub-simulation, which does not record visits.
	if res.Report.TotalVisits != 10 {
		t.Fatalf("TotalVisits = %d, want 10", res.Report.TotalVisits)
	}
}

func TestBackrefMatchesCapturedText(t *testing.T) {
	// (a+)\1
	root := ast.NewConcat(ast.NewParen(1, ast.NewPlus(ast.NewLiteral('a'), false)), ast.NewBackref(1))
	cfg := config.Config{MemoMode: config.MemoFull, MemoEncoding: config.EncodingDense}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("aaaa"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched {
		t.Fatal("expected (a+)\\1 to match \"aaaa\"")
	}
	if res.Report.MemoEncoding != config.EncodingNegative {
		t.Fatalf("MemoEncoding = %v, want Negative (backref coercion)", res.Report.MemoEncoding)
	}
}

func TestWordBoundary(t *testing.T) {
	root := ast.NewConcat(ast.NewInlineZWA(ast.ZWAWordB), ast.NewLiteral('a'))
	cfg := config.Config{MemoMode: config.MemoNone}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run([]byte("a"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched {
		t.Fatal("expected \\b to be satisfied at position 0 before a word byte")
	}
}

func TestEmptyInputEmptyMatch(t *testing.T) {
	root := ast.NewStar(ast.NewLiteral('a'), false)
	cfg := config.Config{MemoMode: config.MemoNone}
	prog := compileFor(t, root, cfg)

	res, err := New(prog, logging.Nop()).Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched || res.Captures[0] != 0 || res.Captures[1] != 0 {
		t.Fatalf("Run() = %+v, want a zero-length match", res)
	}
}
