package memo

import (
	"testing"

	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/logging"
)

func TestDenseMarkAndIsMarked(t *testing.T) {
	d := New(config.EncodingDense, 3, 10, nil, false, logging.Nop())
	if d.IsMarked(1, 5, "") {
		t.Fatal("expected unmarked before Mark")
	}
	d.Mark(1, 5, "")
	if !d.IsMarked(1, 5, "") {
		t.Fatal("expected marked after Mark")
	}
	if d.IsMarked(1, 6, "") || d.IsMarked(2, 5, "") {
		t.Fatal("neighboring keys should stay unmarked")
	}
	if d.Encoding() != config.EncodingDense {
		t.Fatalf("Encoding() = %v, want Dense", d.Encoding())
	}
}

func TestNegativeEncodingKeysOnCaptureState(t *testing.T) {
	n := New(config.EncodingNegative, 2, 10, nil, false, logging.Nop())
	n.Mark(0, 3, "capA")
	if n.IsMarked(0, 3, "capB") {
		t.Fatal("different capture keys must be distinguished")
	}
	if !n.IsMarked(0, 3, "capA") {
		t.Fatal("expected marked for the same capture key")
	}
}

func TestNegativeDuplicateMarkIsNotFatal(t *testing.T) {
	n := New(config.EncodingNegative, 1, 4, nil, false, logging.Nop())
	n.Mark(0, 0, "")
	n.Mark(0, 0, "") // must not panic
	if !n.IsMarked(0, 0, "") {
		t.Fatal("expected marked")
	}
}

func TestRLEEncodingTunedUsesVisitInterval(t *testing.T) {
	tbl := New(config.EncodingRLE, 1, 10, []int{4}, true, logging.Nop())
	rt := tbl.(*rleTable)
	if rt.vectors[0].RunSize() != 4 {
		t.Fatalf("RunSize() = %d, want 4 (tuned)", rt.vectors[0].RunSize())
	}
}

func TestRLEEncodingUntunedDefaultsToOne(t *testing.T) {
	tbl := New(config.EncodingRLE, 1, 10, []int{4}, false, logging.Nop())
	rt := tbl.(*rleTable)
	if rt.vectors[0].RunSize() != 1 {
		t.Fatalf("RunSize() = %d, want 1 (untuned)", rt.vectors[0].RunSize())
	}
}

func TestMemoryBytesPerVertexGrowsWithMarks(t *testing.T) {
	for _, enc := range []config.MemoEncoding{config.EncodingDense, config.EncodingNegative, config.EncodingRLE} {
		tbl := New(enc, 2, 10, []int{1, 1}, false, logging.Nop())
		before := tbl.MemoryBytesPerVertex()
		if len(before) != 2 {
			t.Fatalf("%v: MemoryBytesPerVertex() len = %d, want 2", enc, len(before))
		}
		tbl.Mark(0, 3, "")
		after := tbl.MemoryBytesPerVertex()
		if enc != config.EncodingDense && after[0] <= before[0] {
			t.Fatalf("%v: expected vertex 0's byte count to grow after a mark, got %d -> %d", enc, before[0], after[0])
		}
		if after[1] != before[1] {
			t.Fatalf("%v: expected vertex 1's byte count to stay unchanged, got %d -> %d", enc, before[1], after[1])
		}
	}
}
