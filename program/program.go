// Package program stores the tokenized, numbered-line program as a
// sorted keyed map of line number to token body, grounded on
// c64basic.List's traversal of the same line records (there, a linked
// list baked into the memory image; here, a plain sorted Go map since
// this repo's program storage is not required to be ABI-compatible with
// the C64's in-memory linked-list layout per spec §1).
package program

import (
	"sort"

	"github.com/jmchacon/basic/internal/basicutil"
)

// Program is a sorted collection of numbered lines. Inserting replaces an
// existing line; inserting an empty body deletes it.
type Program struct {
	lines map[uint16][]byte
	order []uint16 // kept sorted; rebuilt lazily on mutation
	dirty bool
}

// New returns an empty program.
func New() *Program {
	return &Program{lines: map[uint16][]byte{}}
}

// Put stores body under line number n. An empty body deletes the line,
// matching direct-mode "entering a bare line number deletes it".
func (p *Program) Put(n uint16, body []byte) {
	if len(body) == 0 {
		p.Delete(n)
		return
	}
	if _, ok := p.lines[n]; !ok {
		p.dirty = true
	}
	p.lines[n] = body
}

// Delete removes line n, if present.
func (p *Program) Delete(n uint16) {
	if _, ok := p.lines[n]; ok {
		delete(p.lines, n)
		p.dirty = true
	}
}

// Get returns the token body for line n, and whether it exists.
func (p *Program) Get(n uint16) ([]byte, bool) {
	b, ok := p.lines[n]
	return b, ok
}

// Clear removes every line (used by NEW).
func (p *Program) Clear() {
	p.lines = map[uint16][]byte{}
	p.order = nil
	p.dirty = false
}

func (p *Program) reindex() {
	if !p.dirty && p.order != nil {
		return
	}
	p.order = basicutil.SortedUint16Keys(p.lines)
	p.dirty = false
}

// Lines returns every line number present, in ascending order.
func (p *Program) Lines() []uint16 {
	p.reindex()
	out := make([]uint16, len(p.order))
	copy(out, p.order)
	return out
}

// First returns the lowest line number, and whether the program is
// non-empty.
func (p *Program) First() (uint16, bool) {
	p.reindex()
	if len(p.order) == 0 {
		return 0, false
	}
	return p.order[0], true
}

// Next returns the smallest line number strictly greater than after, and
// whether one exists. Used by the program-mode stepper to fall through
// to the next stored line at end-of-line.
func (p *Program) Next(after uint16) (uint16, bool) {
	p.reindex()
	i := sort.Search(len(p.order), func(i int) bool { return p.order[i] > after })
	if i >= len(p.order) {
		return 0, false
	}
	return p.order[i], true
}

// Len reports how many lines are stored.
func (p *Program) Len() int {
	return len(p.lines)
}
