// Package stats implements the dual-channel statistics reporter from
// spec.md §4.J: a human-readable summary to one writer (originally stdout)
// and a single JSON object to another (originally stderr), both produced
// from one simulation's Report. Grounded field-for-field on
// original_source/src-simple/backtrack.c's printStats.
package stats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/coregx/memoregex/config"
)

// Report summarizes one backtracking simulation.
type Report struct {
	NStates int
	LenW    int

	MostVisitedSearchStateVertex int
	MostVisitedSearchStateOffset int
	MostVisitedSearchStateCount  int

	MostVisitedVertex      int
	MostVisitedVertexCount int

	TotalVisits                  int
	PossibleTotalVisitsNoMemo    int
	ElapsedMicros                int64

	MemoMode     config.MemoMode
	MemoEncoding config.MemoEncoding

	NSelectedVertices int

	// MaxObservedAsymptoticCostsPerMemoizedVertex holds, per memoized vertex
	// (in memoStateNum order): the vertex's RLEVector.MaxObservedSize under
	// RLE, or its total visits summed over all offsets under Dense and
	// Negative. MemoNone leaves this nil, since no vertex is memoized and
	// there is nothing to report.
	MaxObservedAsymptoticCostsPerMemoizedVertex []int

	// MaxObservedMemoryBytesPerMemoizedVertex holds, per memoized vertex,
	// the peak storage memo.Table.MemoryBytesPerVertex reported for it
	// during the run (spec.md §4.J).
	MaxObservedMemoryBytesPerMemoizedVertex []int
}

// WriteHuman writes the plain-text summary lines printStats sends to
// stdout.
func WriteHuman(w io.Writer, r *Report) error {
	_, err := fmt.Fprintf(w,
		"STATS: Most-visited search state: <%d, %d> (%d visits)\n"+
			"STATS: Most-visited vertex: %d (%d visits over all its search states)\n",
		r.MostVisitedSearchStateVertex, r.MostVisitedSearchStateOffset, r.MostVisitedSearchStateCount,
		r.MostVisitedVertex, r.MostVisitedVertexCount,
	)
	return err
}

type jsonReport struct {
	InputInfo struct {
		NStates int `json:"nStates"`
		LenW    int `json:"lenW"`
	} `json:"inputInfo"`
	SimulationInfo struct {
		NTotalVisits                   int   `json:"nTotalVisits"`
		NPossibleTotalVisitsWithMemo   int   `json:"nPossibleTotalVisitsWithMemoization"`
		VisitsToMostVisitedSearchState int   `json:"visitsToMostVisitedSearchState"`
		VisitsToMostVisitedVertex      int   `json:"visitsToMostVisitedVertex"`
		SimTimeUS                      int64 `json:"simTimeUS"`
	} `json:"simulationInfo"`
	MemoizationInfo struct {
		Config struct {
			VertexSelection string `json:"vertexSelection"`
			Encoding        string `json:"encoding"`
		} `json:"config"`
		Results struct {
			NSelectedVertices                           int   `json:"nSelectedVertices"`
			LenW                                         int   `json:"lenW"`
			MaxObservedAsymptoticCostsPerMemoizedVertex []int `json:"maxObservedAsymptoticCostsPerMemoizedVertex"`
			MaxObservedMemoryBytesPerMemoizedVertex     []int `json:"maxObservedMemoryBytesPerMemoizedVertex"`
		} `json:"results"`
	} `json:"memoizationInfo"`
}

// WriteJSON writes the single JSON object printStats sends to stderr.
func WriteJSON(w io.Writer, r *Report) error {
	var j jsonReport
	j.InputInfo.NStates = r.NStates
	j.InputInfo.LenW = r.LenW
	j.SimulationInfo.NTotalVisits = r.TotalVisits
	j.SimulationInfo.NPossibleTotalVisitsWithMemo = r.PossibleTotalVisitsNoMemo
	j.SimulationInfo.VisitsToMostVisitedSearchState = r.MostVisitedSearchStateCount
	j.SimulationInfo.VisitsToMostVisitedVertex = r.MostVisitedVertexCount
	j.SimulationInfo.SimTimeUS = r.ElapsedMicros
	j.MemoizationInfo.Config.VertexSelection = vertexSelectionName(r.MemoMode)
	j.MemoizationInfo.Config.Encoding = encodingName(r.MemoEncoding)
	j.MemoizationInfo.Results.NSelectedVertices = r.NSelectedVertices
	j.MemoizationInfo.Results.LenW = r.LenW
	j.MemoizationInfo.Results.MaxObservedAsymptoticCostsPerMemoizedVertex = r.MaxObservedAsymptoticCostsPerMemoizedVertex
	j.MemoizationInfo.Results.MaxObservedMemoryBytesPerMemoizedVertex = r.MaxObservedMemoryBytesPerMemoizedVertex

	enc := json.NewEncoder(w)
	return enc.Encode(j)
}

func vertexSelectionName(m config.MemoMode) string {
	switch m {
	case config.MemoNone:
		return "NONE"
	case config.MemoFull:
		return "ALL"
	case config.MemoInDegreeGT1:
		return "INDEG>1"
	case config.MemoLoopDest:
		return "LOOP"
	default:
		return "UNKNOWN"
	}
}

func encodingName(e config.MemoEncoding) string {
	switch e {
	case config.EncodingDense:
		return "DENSE"
	case config.EncodingNegative:
		return "NEGATIVE"
	case config.EncodingRLE:
		return "RLE"
	default:
		return "UNKNOWN"
	}
}
