package ast

import (
	"reflect"
	"sort"
	"testing"
)

func sortedValues(s LengthSet) []int {
	v := s.Values()
	sort.Ints(v)
	return v
}

func TestAnalyzeLiteralConcat(t *testing.T) {
	// "ab"
	n := NewConcat(NewLiteral('a'), NewLiteral('b'))
	Analyze(n)
	if got := sortedValues(n.Lengths); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("Lengths = %v, want [2]", got)
	}
}

func TestAnalyzeStarIncludesZero(t *testing.T) {
	// a*
	n := NewStar(NewLiteral('a'), false)
	Analyze(n)
	got := sortedValues(n.Lengths)
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("Lengths = %v, want [0 1]", got)
	}
}

func TestAnalyzeAltUnion(t *testing.T) {
	// ab|c
	n := NewAlt(NewConcat(NewLiteral('a'), NewLiteral('b')), NewLiteral('c'))
	Analyze(n)
	got := sortedValues(n.Lengths)
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("Lengths = %v, want [1 2]", got)
	}
}

func TestLengthSetOverflow(t *testing.T) {
	var s LengthSet
	for i := 0; i < 20; i++ {
		s.insert(i)
	}
	if !s.TooMany {
		t.Fatal("expected TooMany after inserting more than capacity")
	}
	if sup(s) != 2 {
		t.Fatalf("sup(overflowed set) = %d, want 2 (sentinel)", sup(s))
	}
}

func TestSUP(t *testing.T) {
	tests := []struct {
		vals []int
		want int
	}{
		{[]int{1}, 1},
		{[]int{2, 3}, 6},
		{[]int{0, 1}, 1},
		{[]int{4, 6}, 12},
	}
	for _, tt := range tests {
		s := lengthSetOf(tt.vals...)
		if got := sup(s); got != tt.want {
			t.Errorf("sup(%v) = %d, want %d", tt.vals, got, tt.want)
		}
	}
}

func TestVisitIntervalPlus(t *testing.T) {
	// (ab)+
	n := NewPlus(NewConcat(NewLiteral('a'), NewLiteral('b')), false)
	Analyze(n)
	if n.VisitInterval != 2 {
		t.Fatalf("VisitInterval = %d, want 2", n.VisitInterval)
	}
}
