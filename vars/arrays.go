package vars

import (
	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/strheap"
	"github.com/jmchacon/basic/value"
)

// DefaultDim is the implicit dimension bound (0..10 inclusive, 11
// elements) used when an array is first referenced by a subscript
// without a prior DIM.
const DefaultDim = 10

// Array is one DIM'd (or implicitly created) array: a flat element slice
// addressed by the row-major stride arithmetic of spec §4.3.
type Array struct {
	Name     string
	IsString bool
	Dims     []uint16 // inclusive upper bound per dimension
	nums     []float64
	strs     []*strheap.Descriptor
}

func newArray(name string, isString bool, dims []uint16) *Array {
	count := 1
	for _, d := range dims {
		count *= int(d) + 1
	}
	a := &Array{Name: name, IsString: isString, Dims: append([]uint16(nil), dims...)}
	if isString {
		a.strs = make([]*strheap.Descriptor, count)
		for i := range a.strs {
			a.strs[i] = &strheap.Descriptor{}
		}
	} else {
		a.nums = make([]float64, count)
	}
	return a
}

// index computes the flat offset for a multi-dimensional subscript list,
// per spec §4.3: base + sum(index_i * product(dim_j+1 for j>i)).
func (a *Array) index(subs []int) (int, error) {
	if len(subs) != len(a.Dims) {
		return 0, basicerr.New(basicerr.SyntaxError)
	}
	offset := 0
	for i, idx := range subs {
		if idx < 0 || idx > int(a.Dims[i]) {
			return 0, basicerr.New(basicerr.SubscriptOutOfRange)
		}
		stride := 1
		for j := i + 1; j < len(a.Dims); j++ {
			stride *= int(a.Dims[j]) + 1
		}
		offset += idx * stride
	}
	return offset, nil
}

// Arrays holds every DIM'd (or implicitly created) array, keyed by
// canonical name.
type Arrays struct {
	heap  *strheap.Heap
	table map[string]*Array
}

// NewArrays returns an empty array table.
func NewArrays(heap *strheap.Heap) *Arrays {
	return &Arrays{heap: heap, table: map[string]*Array{}}
}

// Dim creates an array of the given dimensions. Re-dimensioning an
// existing array raises RedimensionedArray.
func (a *Arrays) Dim(name string, isString bool, dims []uint16) error {
	if _, ok := a.table[name]; ok {
		return basicerr.New(basicerr.RedimensionedArray)
	}
	a.table[name] = newArray(name, isString, dims)
	return nil
}

// ensure returns the array for name, implicitly creating an array with
// dimCount dimensions, each DefaultDim-bound, on first subscripted
// reference if it doesn't already exist.
func (a *Arrays) ensure(name string, isString bool, dimCount int) (*Array, error) {
	if arr, ok := a.table[name]; ok {
		return arr, nil
	}
	dims := make([]uint16, dimCount)
	for i := range dims {
		dims[i] = DefaultDim
	}
	arr := newArray(name, isString, dims)
	a.table[name] = arr
	return arr, nil
}

// Get returns the element at subs for name, implicitly DIM'ing the array
// (all bounds DefaultDim) if this is the first reference.
func (a *Arrays) Get(name string, isString bool, subs []int) (value.Value, error) {
	arr, err := a.ensure(name, isString, len(subs))
	if err != nil {
		return value.Value{}, err
	}
	off, err := arr.index(subs)
	if err != nil {
		return value.Value{}, err
	}
	if isString {
		return value.String(a.heap.Bytes(*arr.strs[off])), nil
	}
	return value.Number(arr.nums[off]), nil
}

// Set stores v at subs for name, implicitly DIM'ing on first reference.
func (a *Arrays) Set(name string, subs []int, v value.Value, roots strheap.Roots) error {
	arr, err := a.ensure(name, v.IsString(), len(subs))
	if err != nil {
		return err
	}
	if arr.IsString != v.IsString() {
		return basicerr.New(basicerr.TypeMismatch)
	}
	off, err := arr.index(subs)
	if err != nil {
		return err
	}
	if v.IsString() {
		d, err := a.heap.Put(v.Str, roots)
		if err != nil {
			return err
		}
		*arr.strs[off] = d
		return nil
	}
	arr.nums[off] = v.Num
	return nil
}

// StringRoots returns every live string descriptor held by array
// elements, for the GC root enumeration pass.
func (a *Arrays) StringRoots() []*strheap.Descriptor {
	var out []*strheap.Descriptor
	for _, arr := range a.table {
		if !arr.IsString {
			continue
		}
		out = append(out, arr.strs...)
	}
	return out
}
