package stats

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/coregx/memoregex/config"
)

func sampleReport() *Report {
	return &Report{
		NStates:                      6,
		LenW:                         3,
		MostVisitedSearchStateVertex: 2,
		MostVisitedSearchStateOffset: 1,
		MostVisitedSearchStateCount:  4,
		MostVisitedVertex:            2,
		MostVisitedVertexCount:       7,
		TotalVisits:                  18,
		PossibleTotalVisitsNoMemo:    36,
		ElapsedMicros:                123,
		MemoMode:                     config.MemoInDegreeGT1,
		MemoEncoding:                 config.EncodingRLE,
		NSelectedVertices:            2,
		MaxObservedAsymptoticCostsPerMemoizedVertex: []int{3, 5},
		MaxObservedMemoryBytesPerMemoizedVertex:     []int{96, 160},
	}
}

func TestWriteHumanMentionsMostVisited(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHuman(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteHuman: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<2, 1>") {
		t.Fatalf("WriteHuman output %q missing most-visited search state", out)
	}
	if !strings.Contains(out, "4 visits") {
		t.Fatalf("WriteHuman output %q missing search state visit count", out)
	}
	if !strings.Contains(out, "Most-visited vertex: 2") {
		t.Fatalf("WriteHuman output %q missing most-visited vertex", out)
	}
}

func TestWriteJSONRoundTripsFields(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if got.InputInfo.NStates != r.NStates || got.InputInfo.LenW != r.LenW {
		t.Fatalf("InputInfo = %+v, want NStates=%d LenW=%d", got.InputInfo, r.NStates, r.LenW)
	}
	if got.SimulationInfo.NTotalVisits != r.TotalVisits {
		t.Fatalf("NTotalVisits = %d, want %d", got.SimulationInfo.NTotalVisits, r.TotalVisits)
	}
	if got.MemoizationInfo.Config.VertexSelection != "INDEG>1" {
		t.Fatalf("VertexSelection = %q, want INDEG>1", got.MemoizationInfo.Config.VertexSelection)
	}
	if got.MemoizationInfo.Config.Encoding != "RLE" {
		t.Fatalf("Encoding = %q, want RLE", got.MemoizationInfo.Config.Encoding)
	}
	if len(got.MemoizationInfo.Results.MaxObservedAsymptoticCostsPerMemoizedVertex) != 2 {
		t.Fatalf("MaxObservedAsymptoticCostsPerMemoizedVertex = %v, want 2 entries", got.MemoizationInfo.Results.MaxObservedAsymptoticCostsPerMemoizedVertex)
	}
	if len(got.MemoizationInfo.Results.MaxObservedMemoryBytesPerMemoizedVertex) != 2 {
		t.Fatalf("MaxObservedMemoryBytesPerMemoizedVertex = %v, want 2 entries", got.MemoizationInfo.Results.MaxObservedMemoryBytesPerMemoizedVertex)
	}
}

func TestVertexSelectionNameCoversAllModes(t *testing.T) {
	cases := map[config.MemoMode]string{
		config.MemoNone:        "NONE",
		config.MemoFull:        "ALL",
		config.MemoInDegreeGT1: "INDEG>1",
		config.MemoLoopDest:    "LOOP",
	}
	for mode, want := range cases {
		if got := vertexSelectionName(mode); got != want {
			t.Errorf("vertexSelectionName(%v) = %q, want %q", mode, got, want)
		}
	}
}

func TestEncodingNameCoversAllEncodings(t *testing.T) {
	cases := map[config.MemoEncoding]string{
		config.EncodingDense:    "DENSE",
		config.EncodingNegative: "NEGATIVE",
		config.EncodingRLE:      "RLE",
	}
	for enc, want := range cases {
		if got := encodingName(enc); got != want {
			t.Errorf("encodingName(%v) = %q, want %q", enc, got, want)
		}
	}
}
