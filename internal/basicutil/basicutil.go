// Package basicutil holds the handful of generic slice/map operations
// the interpreter reaches for repeatedly: sorted line-number extraction
// for program storage and LIST, and live-descriptor collection for the
// string heap's GC root enumeration. These are exactly the shapes ajroetker-goat reaches for
// samber/lo generics to cover rather than hand-rolling loops, so this
// repo does the same instead of writing pre-generics-style helpers the
// teacher's own (older) code would have used.
package basicutil

import (
	"sort"

	"github.com/samber/lo"
)

// SortedUint16Keys returns the keys of m in ascending order, the
// extraction program.Program's line listing and LIST need.
func SortedUint16Keys[V any](m map[uint16]V) []uint16 {
	keys := lo.Keys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// LiveDescriptors flattens and filters out empty/nil descriptor pointers
// from several root groups (scalars, array elements) into the single
// slice strheap.Collect wants, without each caller having to hand-roll
// its own append-and-skip loop.
func LiveDescriptors[D interface{ Empty() bool }](groups ...[]*D) []*D {
	flat := lo.Flatten(groups)
	return lo.Filter(flat, func(d *D, _ int) bool {
		return d != nil && !(*d).Empty()
	})
}
