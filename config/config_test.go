package config

import "testing"

func TestParseMemoMode(t *testing.T) {
	tests := map[string]MemoMode{
		"none":          MemoNone,
		"full":          MemoFull,
		"in-degree-gt1": MemoInDegreeGT1,
		"loop-dest":     MemoLoopDest,
	}
	for s, want := range tests {
		got, err := ParseMemoMode(s)
		if err != nil {
			t.Errorf("ParseMemoMode(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseMemoMode(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseMemoMode("bogus"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestEffectiveEncodingForcesNegativeWhenBackrefAware(t *testing.T) {
	c := Config{MemoEncoding: EncodingDense, BackrefAware: true}
	if got := c.EffectiveEncoding(); got != EncodingNegative {
		t.Fatalf("EffectiveEncoding() = %v, want Negative", got)
	}
	c.BackrefAware = false
	if got := c.EffectiveEncoding(); got != EncodingDense {
		t.Fatalf("EffectiveEncoding() = %v, want Dense", got)
	}
}

func TestDefaultIsNoopPosture(t *testing.T) {
	c := Default()
	if c.MemoMode != MemoNone {
		t.Fatalf("Default().MemoMode = %v, want MemoNone", c.MemoMode)
	}
}
