package subcap

import "testing"

func TestNewInitializesUnset(t *testing.T) {
	p := NewPool()
	s := p.New(4)
	for i := 0; i < 4; i++ {
		if s.Sub[i] != -1 {
			t.Errorf("Sub[%d] = %d, want -1", i, s.Sub[i])
		}
	}
	if s.Ref() != 1 {
		t.Fatalf("Ref() = %d, want 1", s.Ref())
	}
}

func TestUpdateSharedVsExclusive(t *testing.T) {
	p := NewPool()
	s := p.New(2)
	same := p.Update(s, 0, 5)
	if same != s {
		t.Fatal("Update on ref==1 should mutate in place")
	}

	shared := Incref(s)
	if shared.Ref() != 2 {
		t.Fatalf("Ref() = %d, want 2 after Incref", shared.Ref())
	}
	clone := p.Update(s, 1, 9)
	if clone == s {
		t.Fatal("Update on ref>1 should return a fresh clone")
	}
	if clone.Sub[0] != 5 || clone.Sub[1] != 9 {
		t.Fatalf("clone.Sub = %v, want [5 9]", clone.Sub[:2])
	}
	if s.Ref() != 1 {
		t.Fatalf("original Ref() = %d, want 1 after Update decremented it", s.Ref())
	}
}

func TestDecrefReleasesToFreeList(t *testing.T) {
	p := NewPool()
	s := p.New(2)
	p.Decref(s)
	if len(p.free) != 1 {
		t.Fatalf("free list len = %d, want 1", len(p.free))
	}
	reused := p.New(2)
	if reused != s {
		t.Fatal("New should reuse the released record from the free list")
	}
}

func TestIsGroupSet(t *testing.T) {
	p := NewPool()
	s := p.New(4)
	if IsGroupSet(s, 1) {
		t.Fatal("group should be unset initially")
	}
	s = p.Update(s, 2, 3)
	s = p.Update(s, 3, 7)
	if !IsGroupSet(s, 1) {
		t.Fatal("group 1 (slots 2,3) should be set")
	}
}
