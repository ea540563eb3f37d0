package rle

import "testing"

func TestSetGetRunLength1(t *testing.T) {
	v := New(1, true)
	for _, i := range []int{5, 7, 6} {
		v.Set(i)
	}
	for _, i := range []int{5, 6, 7} {
		if !v.Get(i) {
			t.Errorf("Get(%d) = false, want true", i)
		}
	}
	if v.Get(4) || v.Get(8) {
		t.Error("unset positions reported as set")
	}
	// 5,6,7 is one contiguous run once 6 is set between 5 and 7.
	if got := v.CurrSize(); got != 1 {
		t.Fatalf("CurrSize() = %d, want 1 after cascading merge", got)
	}
}

func TestSetPanicsOnDuplicate(t *testing.T) {
	v := New(1, false)
	v.Set(3)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate Set")
		}
	}()
	v.Set(3)
}

func TestRunSizeParameterized(t *testing.T) {
	v := New(4, true)
	v.Set(0)
	v.Set(1)
	v.Set(2)
	v.Set(3)
	if v.CurrSize() != 1 {
		t.Fatalf("CurrSize() = %d, want 1 (one run of width 4)", v.CurrSize())
	}
	if !v.Get(2) {
		t.Error("Get(2) = false, want true")
	}
	if v.Get(4) {
		t.Error("Get(4) = true, want false")
	}
}

func TestMaxObservedSizeTracksHistoricalPeak(t *testing.T) {
	v := New(1, false)
	v.Set(0)
	v.Set(10)
	v.Set(20)
	if v.MaxObservedSize() < 3 {
		t.Fatalf("MaxObservedSize() = %d, want >= 3", v.MaxObservedSize())
	}
	v.Set(5) // a fourth, separate run: 5 abuts neither 0 nor 10
	if v.MaxObservedSize() < 3 {
		t.Fatalf("MaxObservedSize() should never decrease, got %d", v.MaxObservedSize())
	}
}

func TestInvalidRunLengthFallsBackToOne(t *testing.T) {
	v := New(0, false)
	if v.RunSize() != 1 {
		t.Fatalf("RunSize() = %d, want 1 for invalid k", v.RunSize())
	}
	v2 := New(1000, false)
	if v2.RunSize() != 1 {
		t.Fatalf("RunSize() = %d, want 1 for out-of-range k", v2.RunSize())
	}
}
