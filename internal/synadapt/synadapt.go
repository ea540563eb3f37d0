// Package synadapt is the parser collaborator spec.md treats as out of
// scope for the core's rigor (SPEC_FULL.md §1) but still needs building: it
// turns a pattern string into the ast.Node tree the compiler consumes.
//
// RE2 syntax (what regexp/syntax parses) forbids backreferences and
// lookahead, both of which spec.md's AST supports. So translation runs in
// two passes: a hand-written scanner first extracts \N backreference and
// (?=...) lookahead spans from the raw pattern text (replacing each with an
// inert placeholder group regexp/syntax will accept), then the placeholder-
// substituted pattern goes through regexp/syntax.Parse as usual, and the
// translator splices the extracted ast.Backref/ast.Lookahead nodes back in
// at the placeholder's position. This keeps regexp/syntax as the primary
// collaborator, the same role it plays in the teacher's nfa.Compiler
// (nfa/compile.go), for every construct RE2 already understands.
package synadapt

import (
	"fmt"
	"regexp/syntax"

	"github.com/coregx/memoregex/ast"
)

// extra holds one backreference or lookahead pulled out of the pattern
// before handing it to regexp/syntax, keyed by the placeholder group index
// that stands in for it.
type extra struct {
	backref   int  // >0: this placeholder is \N
	lookahead string // non-empty: this placeholder is (?=lookahead)
}

// Translate parses pattern into an ast.Node tree.
func Translate(pattern string) (*ast.Node, error) {
	scrubbed, extras, err := extractExtras(pattern)
	if err != nil {
		return nil, err
	}

	re, err := syntax.Parse(scrubbed, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("synadapt: %w", err)
	}
	re = re.Simplify()

	root := translate(re, extras)
	if root == nil {
		root = ast.NewLiteral(0) // unreachable in practice; keeps compile total
	}
	root.BOLAnchor = containsOp(re, syntax.OpBeginText)
	root.EOLAnchor = containsOp(re, syntax.OpEndText)
	return root, nil
}

func containsOp(re *syntax.Regexp, op syntax.Op) bool {
	if re.Op == op {
		return true
	}
	for _, s := range re.Sub {
		if containsOp(s, op) {
			return true
		}
	}
	return false
}

func translate(re *syntax.Regexp, extras map[int]extra) *ast.Node {
	switch re.Op {
	case syntax.OpLiteral:
		var n *ast.Node
		for _, r := range re.Rune {
			lit := ast.NewLiteral(byte(r))
			n = concat(n, lit)
		}
		if n == nil {
			return ast.NewLiteral(0)
		}
		return n

	case syntax.OpCharClass:
		children := make([]*ast.Node, 0, len(re.Rune)/2)
		for i := 0; i+1 < len(re.Rune); i += 2 {
			children = append(children, ast.NewCharRange(clampByte(re.Rune[i]), clampByte(re.Rune[i+1])))
		}
		return ast.NewCustomCharClass(false, children)

	case syntax.OpAnyCharNotNL, syntax.OpAnyChar:
		return ast.NewDot()

	case syntax.OpBeginLine:
		return ast.NewInlineZWA(ast.ZWACaret)
	case syntax.OpEndLine:
		return ast.NewInlineZWA(ast.ZWADollar)
	case syntax.OpBeginText:
		return ast.NewInlineZWA(ast.ZWAA)
	case syntax.OpEndText:
		return ast.NewInlineZWA(ast.ZWAz)
	case syntax.OpWordBoundary:
		return ast.NewInlineZWA(ast.ZWAWordB)
	case syntax.OpNoWordBoundary:
		return ast.NewInlineZWA(ast.ZWANWordB)

	case syntax.OpCapture:
		if ex, ok := extras[re.Cap]; ok {
			if ex.backref > 0 {
				return ast.NewBackref(ex.backref)
			}
			if ex.lookahead != "" {
				inner, err := Translate(ex.lookahead)
				if err != nil {
					return ast.NewLiteral(0)
				}
				return ast.NewLookahead(inner)
			}
		}
		return ast.NewParen(re.Cap, translate(re.Sub[0], extras))

	case syntax.OpStar:
		return ast.NewStar(translate(re.Sub[0], extras), false)
	case syntax.OpPlus:
		return ast.NewPlus(translate(re.Sub[0], extras), false)
	case syntax.OpQuest:
		return ast.NewQuestion(translate(re.Sub[0], extras), false)
	case syntax.OpRepeat:
		return ast.NewCurly(translate(re.Sub[0], extras), re.Min, re.Max, false)

	case syntax.OpConcat:
		var n *ast.Node
		for _, s := range re.Sub {
			n = concat(n, translate(s, extras))
		}
		return n

	case syntax.OpAlternate:
		alts := make([]*ast.Node, len(re.Sub))
		for i, s := range re.Sub {
			alts[i] = translate(s, extras)
		}
		if len(alts) == 2 {
			return ast.NewAlt(alts[0], alts[1])
		}
		return ast.NewAltList(alts)

	case syntax.OpEmptyMatch:
		return nil

	default:
		return nil
	}
}

func concat(l, r *ast.Node) *ast.Node {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	return ast.NewConcat(l, r)
}

func clampByte(r rune) byte {
	if r > 255 {
		return 255
	}
	return byte(r)
}
