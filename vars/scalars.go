package vars

import (
	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/strheap"
	"github.com/jmchacon/basic/value"
)

// Scalars holds scalar variable state: numbers stored directly, strings
// stored as heap descriptors. A name not yet seen is zero-initialized on
// first read per spec §4.3. String descriptors are stored by pointer so
// that GC, which mutates a Descriptor's Ptr in place during Collect,
// updates the canonical copy directly rather than a throwaway one.
type Scalars struct {
	heap *strheap.Heap
	nums map[string]float64
	strs map[string]*strheap.Descriptor
	seen map[string]bool
}

// NewScalars returns an empty scalar table backed by heap for string
// payloads.
func NewScalars(heap *strheap.Heap) *Scalars {
	return &Scalars{
		heap: heap,
		nums: map[string]float64{},
		strs: map[string]*strheap.Descriptor{},
		seen: map[string]bool{},
	}
}

// Get returns the current value of a canonical name, creating a
// zero-initialized entry of the implied kind (from the $ suffix) on
// first reference.
func (s *Scalars) Get(name string) value.Value {
	isString := len(name) > 0 && name[len(name)-1] == '$'
	if !s.seen[name] {
		s.seen[name] = true
		if isString {
			s.strs[name] = &strheap.Descriptor{}
		} else {
			s.nums[name] = 0
		}
	}
	if isString {
		return value.String(s.heap.Bytes(*s.strs[name]))
	}
	return value.Number(s.nums[name])
}

// Set stores v under name, raising TypeMismatch if the name's implied
// kind (by its $ suffix) doesn't match v's kind. roots is invoked only if
// the heap needs to collect to make room.
func (s *Scalars) Set(name string, v value.Value, roots strheap.Roots) error {
	isString := len(name) > 0 && name[len(name)-1] == '$'
	if isString != v.IsString() {
		return basicerr.New(basicerr.TypeMismatch)
	}
	s.seen[name] = true
	if isString {
		d, err := s.heap.Put(v.Str, roots)
		if err != nil {
			return err
		}
		if s.strs[name] == nil {
			s.strs[name] = &strheap.Descriptor{}
		}
		*s.strs[name] = d
		return nil
	}
	s.nums[name] = v.Num
	return nil
}

// Names returns every scalar name currently tracked, in no particular
// order.
func (s *Scalars) Names() []string {
	out := make([]string, 0, len(s.seen))
	for n := range s.seen {
		out = append(out, n)
	}
	return out
}

// StringRoots returns every live string descriptor held by scalar
// variables, for the GC root enumeration pass. Collect mutates these in
// place, so the scalar table sees the relocation immediately.
func (s *Scalars) StringRoots() []*strheap.Descriptor {
	out := make([]*strheap.Descriptor, 0, len(s.strs))
	for _, d := range s.strs {
		out = append(out, d)
	}
	return out
}
