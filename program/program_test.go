package program

import "testing"

func TestInsertReplaceDelete(t *testing.T) {
	p := New()
	p.Put(10, []byte("A"))
	p.Put(30, []byte("C"))
	p.Put(20, []byte("B"))

	if got, want := p.Lines(), []uint16{10, 20, 30}; !eqSlice(got, want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}

	p.Put(20, nil) // empty body deletes
	if got, want := p.Lines(), []uint16{10, 30}; !eqSlice(got, want) {
		t.Fatalf("after delete, Lines() = %v, want %v", got, want)
	}

	p.Put(10, []byte("A2"))
	b, _ := p.Get(10)
	if string(b) != "A2" {
		t.Fatalf("replace failed: got %q", b)
	}
	if got, want := p.Lines(), []uint16{10, 30}; !eqSlice(got, want) {
		t.Fatalf("no duplicates expected: %v vs %v", got, want)
	}
}

func TestNextAndFirst(t *testing.T) {
	p := New()
	p.Put(10, []byte("A"))
	p.Put(20, []byte("B"))
	p.Put(30, []byte("C"))

	if n, ok := p.First(); !ok || n != 10 {
		t.Fatalf("First() = (%d,%v), want (10,true)", n, ok)
	}
	if n, ok := p.Next(10); !ok || n != 20 {
		t.Fatalf("Next(10) = (%d,%v), want (20,true)", n, ok)
	}
	if _, ok := p.Next(30); ok {
		t.Fatalf("Next(30) should have no successor")
	}
}

func eqSlice(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
