// Package query loads the CLI's batch query-file input (SPEC_FULL.md §5.4,
// grounded on original_source/src-simple/main.c's -f flag): a JSON document
// describing one or more {pattern, input} pairs to run sequentially.
package query

import (
	"encoding/json"
	"fmt"
	"io"
)

// Query is one pattern/input pair to simulate.
type Query struct {
	Pattern string `json:"pattern"`
	Input   string `json:"input"`
}

// Load reads either a single Query object or a JSON array of Query objects
// from r. A single object is returned as a one-element slice, so callers
// always iterate uniformly — the array form is a supplement beyond the
// original single-query-per-invocation CLI (SPEC_FULL.md §5.4).
func Load(r io.Reader) ([]Query, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	var arr []Query
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var single Query
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("query: invalid query file: %w", err)
	}
	return []Query{single}, nil
}
