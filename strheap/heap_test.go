package strheap

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/jmchacon/basic/memimg"
)

func TestPutAndBytes(t *testing.T) {
	img := memimg.New(1024)
	if err := img.SetStrend(100); err != nil {
		t.Fatal(err)
	}
	h := New(img)
	noRoots := func() []*Descriptor { return nil }

	d, err := h.Put([]byte("HELLO"), noRoots)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got, want := h.Bytes(d), []byte("HELLO"); string(got) != string(want) {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}
	if img.Fretop() >= 1024 {
		t.Fatalf("Fretop did not decrease: %d", img.Fretop())
	}
}

func TestAllocOutOfMemoryAfterGC(t *testing.T) {
	img := memimg.New(64)
	if err := img.SetStrend(60); err != nil {
		t.Fatal(err)
	}
	h := New(img)
	noRoots := func() []*Descriptor { return nil }
	if _, err := h.Alloc(100, noRoots); err == nil {
		t.Fatalf("expected OM error for an allocation too large even after GC")
	}
}

func TestCollectPacksLiveStringsAndPreservesContent(t *testing.T) {
	img := memimg.New(40)
	if err := img.SetStrend(4); err != nil {
		t.Fatal(err)
	}
	h := New(img)

	var live []*Descriptor
	roots := func() []*Descriptor { return live }

	a, err := h.Put([]byte("AAAA"), roots)
	if err != nil {
		t.Fatal(err)
	}
	live = append(live, &a)
	b, err := h.Put([]byte("BBBB"), roots)
	if err != nil {
		t.Fatal(err)
	}
	live = append(live, &b)
	// Drop a's liveness: only b remains live. This leaves a gap that GC
	// must reclaim (the invariant: after any successful allocation,
	// FRETOP >= STREND).
	live = []*Descriptor{&b}

	c, err := h.Put([]byte("CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"), roots) // 32 bytes, forces a collect
	if err != nil {
		t.Fatalf("Put after implicit GC: %v", err)
	}
	live = append(live, &c)

	if got, want := h.Bytes(b), []byte("BBBB"); string(got) != string(want) {
		t.Fatalf("b payload corrupted by GC: got %q want %q", got, want)
	}
	if got, want := h.Bytes(c), []byte("CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"); string(got) != string(want) {
		t.Fatalf("c payload wrong: got %q want %q", got, want)
	}
	if img.Fretop() < img.Strend() {
		t.Fatalf("FRETOP %d dropped below STREND %d", img.Fretop(), img.Strend())
	}

	// No two live descriptors should overlap.
	type span struct{ lo, hi uint16 }
	spans := []span{
		{b.Ptr, b.Ptr + uint16(b.Length)},
		{c.Ptr, c.Ptr + uint16(c.Length)},
	}
	if spans[0].hi > spans[1].lo && spans[1].hi > spans[0].lo {
		t.Fatalf("live descriptors overlap: %v", spans)
	}
	if diff := deep.Equal([]byte("BBBB"), h.Bytes(b)); diff != nil {
		t.Fatalf("deep diff on b payload: %v", diff)
	}
}
