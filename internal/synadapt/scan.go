package synadapt

import (
	"fmt"
	"strconv"
	"strings"
)

// extractExtras scans pattern for \N backreferences and (?=...) lookaheads —
// both illegal in RE2 syntax — and replaces each with an empty capturing
// group "()" placeholder that regexp/syntax will happily parse. It returns
// the scrubbed pattern and a map from each placeholder's capture-group
// index (in the same left-to-right, open-paren-order numbering
// regexp/syntax itself assigns) to the extra it stands in for.
//
// This is a hand-written character scanner, not a regexp/syntax-level
// transform, because by definition regexp/syntax cannot represent the
// constructs being extracted.
func extractExtras(pattern string) (string, map[int]extra, error) {
	var out strings.Builder
	extras := make(map[int]extra)
	capIndex := 0 // capture groups are 1-based; group 0 is the whole match

	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		if inClass {
			out.WriteByte(c)
			if c == '\\' && i+1 < len(pattern) {
				out.WriteByte(pattern[i+1])
				i++
				continue
			}
			if c == ']' {
				inClass = false
			}
			continue
		}

		switch c {
		case '[':
			inClass = true
			out.WriteByte(c)

		case '\\':
			if i+1 < len(pattern) && pattern[i+1] >= '1' && pattern[i+1] <= '9' {
				j := i + 1
				for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
					j++
				}
				n, err := strconv.Atoi(pattern[i+1 : j])
				if err != nil {
					return "", nil, fmt.Errorf("synadapt: bad backreference in %q", pattern)
				}
				capIndex++
				extras[capIndex] = extra{backref: n}
				out.WriteString("()")
				i = j - 1
				continue
			}
			if i+1 < len(pattern) {
				out.WriteByte(c)
				out.WriteByte(pattern[i+1])
				i++
				continue
			}
			out.WriteByte(c)

		case '(':
			if strings.HasPrefix(pattern[i:], "(?=") {
				depth := 1
				j := i + 3
				for j < len(pattern) && depth > 0 {
					switch pattern[j] {
					case '(':
						depth++
					case ')':
						depth--
					case '\\':
						j++
					}
					j++
				}
				if depth != 0 {
					return "", nil, fmt.Errorf("synadapt: unterminated lookahead in %q", pattern)
				}
				inner := pattern[i+3 : j-1]
				capIndex++
				extras[capIndex] = extra{lookahead: inner}
				out.WriteString("()")
				i = j - 1
				continue
			}
			if strings.HasPrefix(pattern[i:], "(?:") {
				out.WriteByte(c)
				continue
			}
			capIndex++
			out.WriteByte(c)

		default:
			out.WriteByte(c)
		}
	}

	return out.String(), extras, nil
}
