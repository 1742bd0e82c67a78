// Package vars implements the three flavors of named storage the
// interpreter keeps alongside the program: scalar variables, DIM'd
// arrays, and DEF FN user functions. String-valued entries are held as
// strheap.Descriptor handles rather than raw bytes, so the string heap's
// mark-compact GC has something concrete to relocate and this package's
// StringRoots methods are exactly the enumeration passes the GC needs.
package vars

import "strings"

// CanonicalName reduces a raw identifier (as scanned by the evaluator,
// already uppercased) to the two-character-plus-optional-$ key the spec
// defines: first char must be a letter, optional second char (letter or
// digit), optional trailing $ for string type. Names beyond two
// characters truncate silently, and the type suffix is part of the key.
func CanonicalName(raw string) (name string, isString bool) {
	s := strings.ToUpper(raw)
	isString = strings.HasSuffix(s, "$")
	if isString {
		s = s[:len(s)-1]
	}
	if len(s) > 2 {
		s = s[:2]
	}
	if isString {
		s += "$"
	}
	return s, isString
}
