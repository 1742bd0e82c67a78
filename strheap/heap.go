// Package strheap implements the downward-growing string heap described
// in the data model: payloads live in [FRETOP, MEMSIZ) of the memory
// image, allocation decrements FRETOP, and a mark-compact collector packs
// live payloads against MEMSIZ when the gap to STREND runs out. Grounded
// on memory.Bank's block-oriented access plus the explicit mark-compact
// algorithm in the spec, rather than a general-purpose GC design.
package strheap

import (
	"sort"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/memimg"
)

// Descriptor is a handle into the heap: a (length, ptr) pair. length==0
// or ptr==0 denotes the empty string, which is never relocated.
type Descriptor struct {
	Length byte
	Ptr    uint16
}

// Empty reports whether d denotes the empty string.
func (d Descriptor) Empty() bool {
	return d.Length == 0 || d.Ptr == 0
}

// Heap manages string payload storage inside an *memimg.Image.
type Heap struct {
	img *memimg.Image
}

// New returns a Heap operating over img.
func New(img *memimg.Image) *Heap {
	return &Heap{img: img}
}

// Bytes returns a copy of the length bytes referenced by d.
func (h *Heap) Bytes(d Descriptor) []byte {
	if d.Empty() {
		return nil
	}
	out := make([]byte, d.Length)
	for i := 0; i < int(d.Length); i++ {
		out[i] = h.img.ReadByte(d.Ptr + uint16(i))
	}
	return out
}

// Roots is supplied by the caller (the interpreter) on every Collect:
// every Descriptor currently reachable from scalar variables and array
// elements. strheap holds no
// registry of its own, per the design note that GC roots are found by
// explicit enumeration passes rather than global registration.
type Roots func() []*Descriptor

// Alloc reserves n bytes at the top of the free gap, triggering
// Collect(roots) if the gap is too small, and returns the pointer to the
// newly reserved region (its highest-addressed byte is one below FRETOP
// as it stood before this call, so MEMSIZ-1 the first time). Returns OM if even
// after collection there isn't room.
func (h *Heap) Alloc(n int, roots Roots) (uint16, error) {
	if n == 0 {
		return 0, nil
	}
	if int(h.img.Fretop())-n < int(h.img.Strend()) {
		h.Collect(roots())
		if int(h.img.Fretop())-n < int(h.img.Strend()) {
			return 0, basicerr.New(basicerr.OutOfMemory)
		}
	}
	ptr := h.img.Fretop() - uint16(n)
	if err := h.img.SetFretop(ptr); err != nil {
		return 0, basicerr.New(basicerr.OutOfMemory)
	}
	return ptr, nil
}

// Put allocates space for data and copies it in, returning the resulting
// descriptor. Empty data returns the empty descriptor without touching
// FRETOP.
func (h *Heap) Put(data []byte, roots Roots) (Descriptor, error) {
	if len(data) == 0 {
		return Descriptor{}, nil
	}
	ptr, err := h.Alloc(len(data), roots)
	if err != nil {
		return Descriptor{}, err
	}
	for i, b := range data {
		h.img.WriteByte(ptr+uint16(i), b)
	}
	return Descriptor{Length: byte(len(data)), Ptr: ptr}, nil
}

// Collect performs the mark-compact pass: live descriptors are sorted by
// current Ptr descending and packed against MEMSIZ in that order,
// rewriting each descriptor's Ptr as it is relocated. Descriptors with
// Length==0 are skipped (never relocated). After the scan FRETOP is set
// to the start address of the last relocated payload (or MEMSIZ if
// nothing was live).
func (h *Heap) Collect(roots []*Descriptor) {
	live := make([]*Descriptor, 0, len(roots))
	for _, d := range roots {
		if d != nil && !d.Empty() {
			live = append(live, d)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Ptr > live[j].Ptr
	})

	dst := h.img.Memsiz()
	for _, d := range live {
		n := uint16(d.Length)
		newPtr := dst - n
		if newPtr != d.Ptr {
			h.img.Copy(newPtr, d.Ptr, n)
		}
		d.Ptr = newPtr
		dst = newPtr
	}
	// SetFretop cannot fail here: dst only ever decreases from MEMSIZ and
	// live payloads were already within [STREND, MEMSIZ) before packing.
	_ = h.img.SetFretop(dst)
}
