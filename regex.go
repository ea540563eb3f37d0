// Package memoregex is a prototype regex matching engine built around
// selective memoization of a backtracking simulation: the compiler marks a
// subset of the compiled program's vertices as memoization candidates (by
// one of four policies), and the backtracking simulator consults a
// pluggable memo table before re-exploring a (vertex, input position) pair
// it has already visited, trading memory for protection against
// catastrophic, exponential backtracking.
//
// Basic usage:
//
//	re, err := memoregex.Compile(`(a+)+b`, config.Config{MemoMode: config.MemoFull})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if re.Match([]byte("aaaaaaaaaaaaaaaaaaaac")) {
//	    fmt.Println("matched")
//	}
package memoregex

import (
	"fmt"
	"os"

	"github.com/coregx/memoregex/backtrack"
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
	"github.com/coregx/memoregex/internal/synadapt"
	"github.com/coregx/memoregex/memoprog"
	"github.com/coregx/memoregex/stats"
)

// Regex is a compiled pattern, ready to run against byte input.
type Regex struct {
	prog    *memoprog.Program
	cfg     config.Config
	pattern string
	log     *logging.Logger
}

// Compile compiles pattern under cfg. Syntax follows regexp/syntax (Perl
// subset) with two extensions RE2 itself forbids: \N backreferences and
// (?=...) lookahead (see internal/synadapt).
func Compile(pattern string, cfg config.Config) (*Regex, error) {
	log := logging.Default()
	if cfg.LogLevel != "" {
		log = logging.New(os.Stderr, cfg.LogLevel)
	}

	root, err := synadapt.Translate(pattern)
	if err != nil {
		return nil, fmt.Errorf("memoregex: %w", err)
	}
	prog, err := memoprog.Compile(root, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("memoregex: %w", err)
	}
	return &Regex{prog: prog, cfg: cfg, pattern: pattern, log: log}, nil
}

// MustCompile compiles pattern and panics if it fails.
func MustCompile(pattern string, cfg config.Config) *Regex {
	re, err := Compile(pattern, cfg)
	if err != nil {
		panic("memoregex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

func (r *Regex) run(b []byte) *backtrack.Result {
	res, _ := backtrack.New(r.prog, r.log).Run(b)
	return res
}

// Match reports whether b contains a match, anchored at the start of b.
func (r *Regex) Match(b []byte) bool {
	return r.run(b).Matched
}

// FindSubmatchIndex runs the simulator once against b, anchored at its
// start, returning the 2*(n+1) capture offsets on success and nil on
// failure.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	res := r.run(b)
	if !res.Matched {
		return nil
	}
	return res.Captures
}

// Report runs the simulator against b and returns its match result
// alongside its statistics report, for callers that want the diagnostics
// spec.md §4.J describes without going through the CLI.
func (r *Regex) Report(b []byte) (*backtrack.Result, *stats.Report) {
	res := r.run(b)
	return res, res.Report
}

// FindAllSubmatchIndex repeatedly matches starting from the end of the
// previous match, a thin convenience wrapper — not full global-search
// semantics, which spec.md's Non-goals exclude from the core simulator
// (SPEC_FULL.md §5.5). Stops when no further match is found.
func (r *Regex) FindAllSubmatchIndex(b []byte) [][]int {
	var out [][]int
	start := 0
	for start <= len(b) {
		res := r.run(b[start:])
		if !res.Matched {
			break
		}
		shifted := make([]int, len(res.Captures))
		for i, v := range res.Captures {
			if v < 0 {
				shifted[i] = v
			} else {
				shifted[i] = v + start
			}
		}
		out = append(out, shifted)
		if res.Captures[1] == res.Captures[0] {
			start += res.Captures[1] + 1
		} else {
			start += res.Captures[1]
		}
	}
	return out
}
