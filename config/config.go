// Package config holds the knobs spec.md §6 exposes across the compiler,
// memo table, and CLI: which vertices get memoized, how the memo table is
// encoded, and whether the RLE encoding's run length is tuned from the
// language-length analyzer. Mirrors the shape of the teacher's
// nfa.CompilerConfig: a plain struct of fields plus a Default constructor,
// no builder pattern.
package config

import "fmt"

// MemoMode selects which program vertices are memoization candidates
// (spec.md §4.E).
type MemoMode uint8

const (
	// MemoNone disables memoization entirely; the simulator behaves as a
	// plain backtracker.
	MemoNone MemoMode = iota
	// MemoFull memoizes every vertex.
	MemoFull
	// MemoInDegreeGT1 memoizes vertices with in-degree greater than 1.
	MemoInDegreeGT1
	// MemoLoopDest memoizes the destinations of loop back-edges: the Split
	// heading each Star and the body entry of each Plus.
	MemoLoopDest
)

func (m MemoMode) String() string {
	switch m {
	case MemoNone:
		return "none"
	case MemoFull:
		return "full"
	case MemoInDegreeGT1:
		return "in-degree-gt1"
	case MemoLoopDest:
		return "loop-dest"
	default:
		return fmt.Sprintf("MemoMode(%d)", uint8(m))
	}
}

// ParseMemoMode parses the CLI/JSON spelling of a memo mode.
func ParseMemoMode(s string) (MemoMode, error) {
	switch s {
	case "none":
		return MemoNone, nil
	case "full":
		return MemoFull, nil
	case "in-degree-gt1", "indegree", "in_degree_gt1":
		return MemoInDegreeGT1, nil
	case "loop-dest", "loopdest", "loop_dest":
		return MemoLoopDest, nil
	default:
		return 0, fmt.Errorf("config: unknown memo mode %q", s)
	}
}

// MemoEncoding selects the storage layout of the memo table (spec.md §4.G).
type MemoEncoding uint8

const (
	// EncodingDense stores one bit per (memoStateNum, stringIndex) pair in
	// a flat bit-vector, sized at compile time.
	EncodingDense MemoEncoding = iota
	// EncodingNegative stores only the marked pairs, in a hash set —
	// suited to sparse marking and to backreference-bearing patterns where
	// the key must also carry capture state.
	EncodingNegative
	// EncodingRLE stores one run-length-encoded bit-vector per memoized
	// vertex.
	EncodingRLE
)

func (e MemoEncoding) String() string {
	switch e {
	case EncodingDense:
		return "dense"
	case EncodingNegative:
		return "negative"
	case EncodingRLE:
		return "rle"
	default:
		return fmt.Sprintf("MemoEncoding(%d)", uint8(e))
	}
}

// ParseMemoEncoding parses the CLI/JSON spelling of a memo encoding.
func ParseMemoEncoding(s string) (MemoEncoding, error) {
	switch s {
	case "dense":
		return EncodingDense, nil
	case "negative", "sparse":
		return EncodingNegative, nil
	case "rle":
		return EncodingRLE, nil
	default:
		return 0, fmt.Errorf("config: unknown memo encoding %q", s)
	}
}

// Config is the full set of knobs threaded through Compile and the
// simulator.
type Config struct {
	MemoMode     MemoMode
	MemoEncoding MemoEncoding

	// RLETuned sets the RLE encoding's run length from each memoized
	// vertex's analyzed visitInterval instead of a fixed run length of 1.
	// Off by default: the language-length analyzer feeding visitInterval is
	// marked work-in-progress upstream (see ast.Analyze's doc comment).
	RLETuned bool

	// BackrefAware forces EncodingNegative regardless of MemoEncoding, since
	// the dense and RLE encodings cannot key on capture state. Compile sets
	// this automatically when the pattern contains a backreference; callers
	// normally leave it false.
	BackrefAware bool

	// LogLevel overrides MEMOIZATION_LOGLVL for this Config's logger. Empty
	// means "read the environment variable".
	LogLevel string
}

// Default returns a Config with memoization off and the dense encoding —
// the same no-op-by-default posture as the original CLI's required, explicit
// mode/encoding arguments.
func Default() Config {
	return Config{
		MemoMode:     MemoNone,
		MemoEncoding: EncodingDense,
	}
}

// EffectiveEncoding returns the encoding Compile should actually use, forcing
// EncodingNegative when BackrefAware is set regardless of the configured
// MemoEncoding (spec.md §4.G's backreference-coercion rule).
func (c Config) EffectiveEncoding() MemoEncoding {
	if c.BackrefAware {
		return EncodingNegative
	}
	return c.MemoEncoding
}
